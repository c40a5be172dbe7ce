package barcode

import (
	"github.com/makiuchi-d/gozxing"
)

const (
	// minRegionSize is the smallest leftover strip worth searching again.
	minRegionSize  = 100
	maxRegionDepth = 4
)

// regionReader finds several codes in one image with a single-code reader.
// After each hit it searches the strips left, above, right and below the
// code's bounding box.
type regionReader struct {
	delegate gozxing.Reader
}

// decodeMultiple appends every new code to found and returns it. Codes
// already present in found (same format and text) are skipped.
func (r *regionReader) decodeMultiple(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, found []*gozxing.Result) []*gozxing.Result {
	return r.search(bmp, hints, found, 0, 0, 0)
}

func (r *regionReader) search(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, found []*gozxing.Result, xOffset, yOffset, depth int) []*gozxing.Result {
	if depth > maxRegionDepth {
		return found
	}

	res, err := r.delegate.Decode(bmp, hints)
	if err != nil || res == nil {
		return found
	}
	if !containsResult(found, res) {
		found = append(found, translateResult(res, xOffset, yOffset))
	}

	points := res.GetResultPoints()
	if len(points) == 0 || !bmp.IsCropSupported() {
		return found
	}

	width, height := bmp.GetWidth(), bmp.GetHeight()
	minX, minY := float64(width), float64(height)
	maxX, maxY := 0.0, 0.0
	for _, p := range points {
		if p == nil {
			continue
		}
		x, y := p.GetX(), p.GetY()
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}

	if minX > minRegionSize {
		found = r.searchRegion(bmp, hints, found, 0, 0, int(minX), height, xOffset, yOffset, depth)
	}
	if minY > minRegionSize {
		found = r.searchRegion(bmp, hints, found, 0, 0, width, int(minY), xOffset, yOffset, depth)
	}
	if maxX < float64(width-minRegionSize) {
		found = r.searchRegion(bmp, hints, found, int(maxX), 0, width-int(maxX), height, xOffset, yOffset, depth)
	}
	if maxY < float64(height-minRegionSize) {
		found = r.searchRegion(bmp, hints, found, 0, int(maxY), width, height-int(maxY), xOffset, yOffset, depth)
	}
	return found
}

func (r *regionReader) searchRegion(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}, found []*gozxing.Result,
	left, top, width, height, xOffset, yOffset, depth int,
) []*gozxing.Result {
	sub, err := bmp.Crop(left, top, width, height)
	if err != nil {
		return found
	}
	return r.search(sub, hints, found, xOffset+left, yOffset+top, depth+1)
}

func containsResult(found []*gozxing.Result, res *gozxing.Result) bool {
	for _, f := range found {
		if f.GetBarcodeFormat() == res.GetBarcodeFormat() && f.GetText() == res.GetText() {
			return true
		}
	}
	return false
}

// translateResult moves the result points of a code found in a sub-region
// back into the coordinates of the full image.
func translateResult(res *gozxing.Result, xOffset, yOffset int) *gozxing.Result {
	if xOffset == 0 && yOffset == 0 {
		return res
	}
	src := res.GetResultPoints()
	points := make([]gozxing.ResultPoint, 0, len(src))
	for _, p := range src {
		if p == nil {
			continue
		}
		points = append(points, gozxing.NewResultPoint(p.GetX()+float64(xOffset), p.GetY()+float64(yOffset)))
	}
	out := gozxing.NewResult(res.GetText(), res.GetRawBytes(), points, res.GetBarcodeFormat())
	out.PutAllMetadata(res.GetResultMetadata())
	return out
}
