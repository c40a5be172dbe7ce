package barcode

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend returns a fixed result whenever match accepts the image.
type fakeBackend struct {
	match  func(img image.Image) bool
	result Result
	err    error
	calls  int
}

func (f *fakeBackend) Decode(_ context.Context, img image.Image, _ Options) ([]Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.match(img) {
		r := f.result
		r.Points = append([]Point(nil), f.result.Points...)
		return []Result{r}, nil
	}
	return nil, nil
}

func isPortrait(img image.Image) bool { return img.Bounds().Dy() > img.Bounds().Dx() }

func isDarkCorner(img image.Image) bool {
	r, _, _, _ := img.At(img.Bounds().Min.X, img.Bounds().Min.Y).RGBA()
	return r < 0x8000
}

func TestVariantBackend_StraightHitSkipsVariants(t *testing.T) {
	fake := &fakeBackend{match: func(image.Image) bool { return true }, result: Result{Format: FormatQR, Text: "A"}}
	b := NewVariantBackend(fake)

	res, err := b.Decode(context.Background(), imaging.New(10, 10, color.White), Options{AutoRotate: true, AlsoInverted: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Nil(t, res[0].Orientation)
	assert.Equal(t, 1, fake.calls)
}

func TestVariantBackend_AutoRotate(t *testing.T) {
	fake := &fakeBackend{
		match:  isPortrait,
		result: Result{Format: FormatCode128, Text: "ROT", Points: []Point{{X: 10, Y: 20}}},
	}
	b := NewVariantBackend(fake)

	res, err := b.Decode(context.Background(), imaging.New(100, 50, color.White), Options{AutoRotate: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.NotNil(t, res[0].Orientation)
	assert.Equal(t, 90, *res[0].Orientation)
	assert.Equal(t, []Point{{X: 79, Y: 10}}, res[0].Points)
	assert.Equal(t, 2, fake.calls)
}

func TestVariantBackend_AlsoInverted(t *testing.T) {
	fake := &fakeBackend{match: isDarkCorner, result: Result{Format: FormatQR, Text: "INV"}}
	b := NewVariantBackend(fake)

	res, err := b.Decode(context.Background(), imaging.New(20, 20, color.White), Options{AlsoInverted: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "INV", res[0].Text)
	assert.Nil(t, res[0].Orientation)
}

func TestVariantBackend_NoVariantsConfigured(t *testing.T) {
	fake := &fakeBackend{match: isPortrait, result: Result{Text: "X"}}
	b := NewVariantBackend(fake)

	res, err := b.Decode(context.Background(), imaging.New(100, 50, color.White), Options{})
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, 1, fake.calls)
}

func TestVariantBackend_KeepsBackendOrientation(t *testing.T) {
	own := 180
	fake := &fakeBackend{match: isPortrait, result: Result{Text: "O", Orientation: &own}}
	b := NewVariantBackend(fake)

	res, err := b.Decode(context.Background(), imaging.New(100, 50, color.White), Options{AutoRotate: true})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 180, *res[0].Orientation)
}

func TestVariantBackend_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	b := NewVariantBackend(&fakeBackend{err: boom})

	_, err := b.Decode(context.Background(), imaging.New(10, 10, color.White), Options{AutoRotate: true})
	assert.ErrorIs(t, err, boom)
}

func TestUnrotatePoints(t *testing.T) {
	pts := []Point{{X: 10, Y: 20}}

	assert.Equal(t, pts, unrotatePoints(pts, 0, 100, 50))
	assert.Equal(t, []Point{{X: 79, Y: 10}}, unrotatePoints(pts, 90, 100, 50))
	assert.Equal(t, []Point{{X: 89, Y: 29}}, unrotatePoints(pts, 180, 100, 50))
	assert.Equal(t, []Point{{X: 20, Y: 39}}, unrotatePoints(pts, 270, 100, 50))
	assert.Nil(t, unrotatePoints(nil, 90, 100, 50))
}
