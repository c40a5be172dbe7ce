package testutil

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
)

// Fixture transforms applied after rendering.
const (
	TransformNone     = ""
	TransformRotate90 = "rotate90"
	TransformInvert   = "invert"
)

// BarcodeFixture describes one generated test image and the code it holds.
type BarcodeFixture struct {
	Name      string `json:"name"`
	File      string `json:"file"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	Transform string `json:"transform,omitempty"`
}

// DefaultBarcodeFixtures is the fixture set written by generate-test-data.
func DefaultBarcodeFixtures() []BarcodeFixture {
	return []BarcodeFixture{
		{Name: "qr_hello", File: "qr_hello.png", Type: "QR_CODE", Data: "HELLO"},
		{Name: "qr_url", File: "qr_url.png", Type: "QR_CODE", Data: "https://example.com/items/42?lot=7"},
		{Name: "qr_inverted", File: "qr_inverted.png", Type: "QR_CODE", Data: "INVERTED", Transform: TransformInvert},
		{Name: "code128", File: "code128.png", Type: "CODE_128", Data: "BARDEC-128"},
		{Name: "code128_rotated", File: "code128_rotated.png", Type: "CODE_128", Data: "ROTATED-128", Transform: TransformRotate90},
		{Name: "ean13", File: "ean13.png", Type: "EAN_13", Data: "4006381333931"},
	}
}

// RenderFixture draws the fixture's code on a white canvas and applies its
// transform.
func RenderFixture(f BarcodeFixture) (image.Image, error) {
	var (
		img image.Image
		err error
	)

	switch f.Type {
	case "QR_CODE":
		img, err = EncodeQRCode(f.Data, qrSize)
		if err == nil {
			img = PlaceOnCanvas(img, qrCanvas, qrCanvas, qrOffset, qrOffset)
		}
	case "CODE_128":
		img, err = encodeLinear(oned.NewCode128Writer(), gozxing.BarcodeFormat_CODE_128, f.Data)
	case "EAN_13":
		img, err = encodeLinear(oned.NewEAN13Writer(), gozxing.BarcodeFormat_EAN_13, f.Data)
	default:
		return nil, fmt.Errorf("unsupported fixture type %s", f.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render fixture %s: %w", f.Name, err)
	}

	switch f.Transform {
	case TransformNone:
	case TransformRotate90:
		img = imaging.Rotate90(img)
	case TransformInvert:
		img = imaging.Invert(img)
	default:
		return nil, fmt.Errorf("unknown transform %q for fixture %s", f.Transform, f.Name)
	}
	return img, nil
}

func encodeLinear(w gozxing.Writer, format gozxing.BarcodeFormat, data string) (image.Image, error) {
	matrix, err := w.Encode(data, format, 320, 100, nil)
	if err != nil {
		return nil, err
	}
	return PlaceOnCanvas(matrix, 400, 160, 40, 30), nil
}

// WriteBarcodeFixtures renders every fixture into dir and writes a
// manifest.json describing them.
func WriteBarcodeFixtures(dir string, fixtures []BarcodeFixture) error {
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("failed to create fixture directory: %w", err)
	}

	for _, f := range fixtures {
		img, err := RenderFixture(f)
		if err != nil {
			return err
		}
		if err := WritePNG(img, filepath.Join(dir, f.File)); err != nil {
			return fmt.Errorf("failed to write fixture %s: %w", f.Name, err)
		}
	}

	data, err := json.MarshalIndent(fixtures, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "manifest.json"), data, 0o600)
}
