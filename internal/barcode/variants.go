package barcode

import (
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// variantBackend retries an inner backend on rotated and inverted copies of
// the image when the straight pass finds nothing.
type variantBackend struct {
	inner Backend
}

// NewVariantBackend wraps inner with auto-rotate and inverted-image retries,
// driven by Options.AutoRotate and Options.AlsoInverted.
func NewVariantBackend(inner Backend) Backend {
	return &variantBackend{inner: inner}
}

// variant is one transformed view of the source image.
type variant struct {
	degrees int // counter-clockwise rotation applied to the source
	invert  bool
}

func (v *variantBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	results, err := v.inner.Decode(ctx, img, opts)
	if err != nil || len(results) > 0 {
		return results, err
	}

	for _, vr := range variantsFor(opts) {
		view := transform(img, vr)
		results, err = v.inner.Decode(ctx, view, opts)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			continue
		}
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		for i := range results {
			results[i].Points = unrotatePoints(results[i].Points, vr.degrees, w, h)
			if results[i].Orientation == nil && vr.degrees != 0 {
				deg := vr.degrees
				results[i].Orientation = &deg
			}
		}
		return results, nil
	}
	return nil, nil
}

func variantsFor(opts Options) []variant {
	var out []variant
	if opts.AutoRotate {
		out = append(out, variant{degrees: 90}, variant{degrees: 180}, variant{degrees: 270})
	}
	if opts.AlsoInverted {
		out = append(out, variant{invert: true})
	}
	return out
}

func transform(img image.Image, vr variant) image.Image {
	var out image.Image = img
	switch vr.degrees {
	case 90:
		out = imaging.Rotate90(out)
	case 180:
		out = imaging.Rotate180(out)
	case 270:
		out = imaging.Rotate270(out)
	}
	if vr.invert {
		out = imaging.Invert(out)
	}
	return out
}

// unrotatePoints maps points found on a counter-clockwise rotated view of a
// w x h image back into source coordinates.
func unrotatePoints(pts []Point, degrees, w, h int) []Point {
	if degrees == 0 || len(pts) == 0 {
		return pts
	}
	fw, fh := float64(w-1), float64(h-1)
	out := make([]Point, len(pts))
	for i, p := range pts {
		switch degrees {
		case 90:
			out[i] = Point{X: fw - p.Y, Y: p.X}
		case 180:
			out[i] = Point{X: fw - p.X, Y: fh - p.Y}
		case 270:
			out[i] = Point{X: p.Y, Y: fh - p.X}
		default:
			out[i] = p
		}
	}
	return out
}
