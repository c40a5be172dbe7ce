package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/require"
)

// qrSize and qrCanvas describe the layout of generated QR fixtures: a
// qrSize QR code pasted at (qrOffset, qrOffset) on a white qrCanvas square.
const (
	qrSize   = 200
	qrCanvas = 260
	qrOffset = 30
)

// CreateTestImage returns a uniformly colored image.
func CreateTestImage(width, height int, backgroundColor color.Color) image.Image {
	return imaging.New(width, height, backgroundColor)
}

// EncodeQRCode encodes content as a size x size QR code image.
func EncodeQRCode(content string, size int) (image.Image, error) {
	matrix, err := qrcode.NewQRCodeWriter().Encode(content, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return matrix, nil
}

// GenerateQRCode encodes content as a size x size QR code image.
func GenerateQRCode(t *testing.T, content string, size int) image.Image {
	t.Helper()

	img, err := EncodeQRCode(content, size)
	require.NoError(t, err)
	return img
}

// GenerateCode128 encodes content as a width x height Code 128 image.
func GenerateCode128(t *testing.T, content string, width, height int) image.Image {
	t.Helper()

	matrix, err := oned.NewCode128Writer().Encode(content, gozxing.BarcodeFormat_CODE_128, width, height, nil)
	require.NoError(t, err, "Failed to encode Code 128")
	return matrix
}

// PlaceOnCanvas pastes img onto a white canvas at the given offset.
func PlaceOnCanvas(img image.Image, canvasW, canvasH, offsetX, offsetY int) image.Image {
	canvas := imaging.New(canvasW, canvasH, color.White)
	return imaging.Paste(canvas, img, image.Pt(offsetX, offsetY))
}

// WritePNG encodes img as PNG at path, creating parent directories.
func WritePNG(img image.Image, path string) (err error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	file, err := os.Create(path) //nolint:gosec // G304: Test file creation with controlled path
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	return png.Encode(file, img)
}

// SaveImage saves an image as PNG to the specified path.
func SaveImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	require.NoError(t, WritePNG(img, path), "Failed to write PNG %s", path)
}

// WriteQRCodeFile writes a QR code fixture for content to path.
func WriteQRCodeFile(path, content string) error {
	qr, err := EncodeQRCode(content, qrSize)
	if err != nil {
		return err
	}
	return WritePNG(PlaceOnCanvas(qr, qrCanvas, qrCanvas, qrOffset, qrOffset), path)
}

// WriteBlankFile writes a white image without any code to path.
func WriteBlankFile(path string) error {
	return WritePNG(CreateTestImage(120, 120, color.White), path)
}

// WriteQRCodePNG writes a QR code image for content into dir/name and
// returns the full path.
func WriteQRCodePNG(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, WriteQRCodeFile(path, content))
	return path
}

// WriteBlankPNG writes a white image without any code into dir/name.
func WriteBlankPNG(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, WriteBlankFile(path))
	return path
}
