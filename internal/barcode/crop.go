package barcode

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
)

// ParseCrop parses a "left,top,width,height" crop rectangle.
// An empty string means no crop and returns nil.
func ParseCrop(value string) (*image.Rectangle, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid crop %q: expected left,top,width,height", value)
	}

	var vals [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid crop %q: %w", value, err)
		}
		vals[i] = v
	}

	left, top, width, height := vals[0], vals[1], vals[2], vals[3]
	if left < 0 || top < 0 {
		return nil, fmt.Errorf("invalid crop %q: left and top must be >= 0", value)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid crop %q: width and height must be > 0", value)
	}

	r := image.Rect(left, top, left+width, top+height)
	return &r, nil
}

// FormatCrop renders a crop rectangle back into its flag form.
func FormatCrop(r *image.Rectangle) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
}

// ApplyCrop returns the region of img selected by opts.Crop, or img itself
// when no crop is configured. A rectangle that does not fit entirely inside
// the image yields ErrCropOutOfBounds.
func ApplyCrop(img image.Image, opts Options) (image.Image, error) {
	if opts.Crop == nil {
		return img, nil
	}
	b := img.Bounds()
	r := opts.Crop.Add(b.Min)
	if !r.In(b) {
		return nil, fmt.Errorf("%w: crop %s, image %dx%d", ErrCropOutOfBounds, FormatCrop(opts.Crop), b.Dx(), b.Dy())
	}
	return imaging.Crop(img, r), nil
}
