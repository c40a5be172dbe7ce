package barcode

import (
	"context"
	"errors"
	"image"
)

// ErrCropOutOfBounds reports a crop rectangle that does not fit inside the image.
var ErrCropOutOfBounds = errors.New("barcode: crop rectangle outside image bounds")

// Options controls backend decoding behavior. It is built once before
// decoding starts and shared read-only by every worker.
type Options struct {
	// Crop optionally restricts decoding to a sub-rectangle of the image,
	// expressed relative to the image's top-left corner. Nil means full image.
	Crop *image.Rectangle

	// Formats constrains the set of symbologies to search. Empty means all.
	Formats []Format

	// TryHarder enables more exhaustive search (slower but more robust).
	TryHarder bool

	// AutoRotate retries decoding on images rotated by 90, 180 and 270 degrees.
	AutoRotate bool

	// AlsoInverted retries decoding on the color-inverted image.
	AlsoInverted bool

	// CharacterSet is a hint for byte-mode payloads (e.g. "UTF-8", "Shift_JIS").
	CharacterSet string
}

// Point is a point in image coordinates.
type Point struct {
	X float64
	Y float64
}

// Result represents one decoded code.
type Result struct {
	Format Format
	Text   string
	Points []Point // Finder or key points in backend order

	// Orientation is the rotation in degrees that was needed to decode the
	// code, nil when unknown.
	Orientation *int
}

// Backend is a pluggable barcode decoder implementation.
//
// Decode returns every code found in img. An image without codes yields an
// empty slice and a nil error; errors are reserved for backend failures.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error)
}

// NewBackend returns the default backend: gozxing with rotation and
// inversion retries.
func NewBackend() (Backend, error) {
	return NewVariantBackend(newGozxingBackend()), nil
}
