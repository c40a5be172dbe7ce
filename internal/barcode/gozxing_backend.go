package barcode

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/oned/rss"
	"github.com/makiuchi-d/gozxing/qrcode"
)

type gozxingBackend struct{}

func newGozxingBackend() Backend { return &gozxingBackend{} }

// Decode finds every code in img. QR codes go through the multi-QR detector;
// all enabled formats (QR included, for codes the multi detector misses)
// then go through a region-splitting pass that decodes one code at a time.
func (b *gozxingBackend) Decode(ctx context.Context, img image.Image, opts Options) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, errors.New("barcode: nil image")
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("barcode: binarize: %w", err)
	}

	formats := enabledFormats(opts)
	hints := buildHints(formats, opts)

	var found []*gozxing.Result
	if containsFormat(formats, FormatQR) {
		qrs, err := multiqr.NewQRCodeMultiReader().DecodeMultiple(bmp, hints)
		if err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("barcode: decode: %w", err)
		}
		found = append(found, qrs...)
	}

	// Readers are stateful; build a fresh set per call so workers never share one.
	regions := &regionReader{delegate: newFormatReader(formats)}
	found = regions.decodeMultiple(bmp, hints, found)

	out := make([]Result, 0, len(found))
	for _, r := range found {
		out = append(out, convertResult(r))
	}
	return out, nil
}

func containsFormat(formats []Format, f Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

func buildHints(formats []Format, opts Options) map[gozxing.DecodeHintType]interface{} {
	hints := make(map[gozxing.DecodeHintType]interface{})
	zx := make([]gozxing.BarcodeFormat, 0, len(formats))
	for _, f := range formats {
		if bf, ok := mapFormatToZXing(f); ok {
			zx = append(zx, bf)
		}
	}
	if len(zx) > 0 {
		hints[gozxing.DecodeHintType_POSSIBLE_FORMATS] = zx
	}
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	if opts.CharacterSet != "" {
		hints[gozxing.DecodeHintType_CHARACTER_SET] = opts.CharacterSet
	}
	return hints
}

// isNotFound reports the reader outcomes that mean "no code here" rather
// than a backend failure.
func isNotFound(err error) bool {
	var nf gozxing.NotFoundException
	var ce gozxing.ChecksumException
	var fe gozxing.FormatException
	return errors.As(err, &nf) || errors.As(err, &ce) || errors.As(err, &fe)
}

func convertResult(r *gozxing.Result) Result {
	res := Result{
		Format: mapFormatFromZXing(r.GetBarcodeFormat()),
		Text:   r.GetText(),
	}
	if pts := r.GetResultPoints(); len(pts) > 0 {
		res.Points = make([]Point, 0, len(pts))
		for _, p := range pts {
			if p == nil {
				continue
			}
			res.Points = append(res.Points, Point{X: p.GetX(), Y: p.GetY()})
		}
	}
	if md := r.GetResultMetadata(); md != nil {
		if v, ok := md[gozxing.ResultMetadataType_ORIENTATION].(int); ok {
			deg := v
			res.Orientation = &deg
		}
	}
	return res
}

// formatReader tries one reader per enabled symbology and returns the
// first hit.
type formatReader struct {
	readers []gozxing.Reader
}

func newFormatReader(formats []Format) *formatReader {
	r := &formatReader{}
	for _, f := range formats {
		if rd := readerFor(f); rd != nil {
			r.readers = append(r.readers, rd)
		}
	}
	return r
}

func (r *formatReader) DecodeWithoutHints(bmp *gozxing.BinaryBitmap) (*gozxing.Result, error) {
	return r.Decode(bmp, nil)
}

func (r *formatReader) Decode(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) (*gozxing.Result, error) {
	for _, rd := range r.readers {
		res, err := rd.Decode(bmp, hints)
		if err == nil && res != nil {
			return res, nil
		}
	}
	return nil, gozxing.NewNotFoundException("no enabled reader matched")
}

func (r *formatReader) Reset() {
	for _, rd := range r.readers {
		rd.Reset()
	}
}

func readerFor(f Format) gozxing.Reader {
	switch f {
	case FormatQR:
		return qrcode.NewQRCodeReader()
	case FormatDataMatrix:
		return datamatrix.NewDataMatrixReader()
	case FormatAztec:
		return aztec.NewAztecReader()
	case FormatCode128:
		return oned.NewCode128Reader()
	case FormatCode39:
		return oned.NewCode39Reader()
	case FormatCode93:
		return oned.NewCode93Reader()
	case FormatEAN8:
		return oned.NewEAN8Reader()
	case FormatEAN13:
		return oned.NewEAN13Reader()
	case FormatUPCA:
		return oned.NewUPCAReader()
	case FormatUPCE:
		return oned.NewUPCEReader()
	case FormatITF:
		return oned.NewITFReader()
	case FormatCodabar:
		return oned.NewCodaBarReader()
	case FormatRSS14:
		return rss.NewRSS14Reader()
	default:
		return nil
	}
}

func mapFormatToZXing(f Format) (gozxing.BarcodeFormat, bool) {
	switch f {
	case FormatQR:
		return gozxing.BarcodeFormat_QR_CODE, true
	case FormatDataMatrix:
		return gozxing.BarcodeFormat_DATA_MATRIX, true
	case FormatAztec:
		return gozxing.BarcodeFormat_AZTEC, true
	case FormatCode128:
		return gozxing.BarcodeFormat_CODE_128, true
	case FormatCode39:
		return gozxing.BarcodeFormat_CODE_39, true
	case FormatCode93:
		return gozxing.BarcodeFormat_CODE_93, true
	case FormatEAN8:
		return gozxing.BarcodeFormat_EAN_8, true
	case FormatEAN13:
		return gozxing.BarcodeFormat_EAN_13, true
	case FormatUPCA:
		return gozxing.BarcodeFormat_UPC_A, true
	case FormatUPCE:
		return gozxing.BarcodeFormat_UPC_E, true
	case FormatITF:
		return gozxing.BarcodeFormat_ITF, true
	case FormatCodabar:
		return gozxing.BarcodeFormat_CODABAR, true
	case FormatRSS14:
		return gozxing.BarcodeFormat_RSS_14, true
	default:
		return 0, false
	}
}

func mapFormatFromZXing(bf gozxing.BarcodeFormat) Format {
	switch bf {
	case gozxing.BarcodeFormat_QR_CODE:
		return FormatQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return FormatDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return FormatAztec
	case gozxing.BarcodeFormat_CODE_128:
		return FormatCode128
	case gozxing.BarcodeFormat_CODE_39:
		return FormatCode39
	case gozxing.BarcodeFormat_CODE_93:
		return FormatCode93
	case gozxing.BarcodeFormat_EAN_8:
		return FormatEAN8
	case gozxing.BarcodeFormat_EAN_13:
		return FormatEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return FormatUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return FormatUPCE
	case gozxing.BarcodeFormat_ITF:
		return FormatITF
	case gozxing.BarcodeFormat_CODABAR:
		return FormatCodabar
	case gozxing.BarcodeFormat_RSS_14:
		return FormatRSS14
	default:
		return FormatUnknown
	}
}
