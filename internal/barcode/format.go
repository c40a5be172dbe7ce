package barcode

import (
	"fmt"
	"strings"
)

// Format represents a barcode symbology.
type Format int

const (
	FormatUnknown Format = iota
	FormatQR
	FormatDataMatrix
	FormatAztec
	FormatCode128
	FormatCode39
	FormatCode93
	FormatEAN8
	FormatEAN13
	FormatUPCA
	FormatUPCE
	FormatITF
	FormatCodabar
	FormatRSS14
)

// AllFormats lists every symbology the default backend can decode.
func AllFormats() []Format {
	return []Format{
		FormatQR,
		FormatDataMatrix,
		FormatAztec,
		FormatCode128,
		FormatCode39,
		FormatCode93,
		FormatEAN8,
		FormatEAN13,
		FormatUPCA,
		FormatUPCE,
		FormatITF,
		FormatCodabar,
		FormatRSS14,
	}
}

// String returns the symbology name used in reports (ZXing naming).
func (f Format) String() string {
	switch f {
	case FormatQR:
		return "QR_CODE"
	case FormatDataMatrix:
		return "DATA_MATRIX"
	case FormatAztec:
		return "AZTEC"
	case FormatCode128:
		return "CODE_128"
	case FormatCode39:
		return "CODE_39"
	case FormatCode93:
		return "CODE_93"
	case FormatEAN8:
		return "EAN_8"
	case FormatEAN13:
		return "EAN_13"
	case FormatUPCA:
		return "UPC_A"
	case FormatUPCE:
		return "UPC_E"
	case FormatITF:
		return "ITF"
	case FormatCodabar:
		return "CODABAR"
	case FormatRSS14:
		return "RSS_14"
	default:
		return "UNKNOWN"
	}
}

// ParseFormat maps a user-supplied symbology name to a Format.
// Both short names ("qr", "ean13") and report names ("QR_CODE") are accepted.
func ParseFormat(s string) (Format, bool) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "-")
	switch name {
	case "qr", "qrcode", "qr-code":
		return FormatQR, true
	case "datamatrix", "data-matrix":
		return FormatDataMatrix, true
	case "aztec":
		return FormatAztec, true
	case "code128", "code-128":
		return FormatCode128, true
	case "code39", "code-39":
		return FormatCode39, true
	case "code93", "code-93":
		return FormatCode93, true
	case "ean8", "ean-8":
		return FormatEAN8, true
	case "ean13", "ean-13":
		return FormatEAN13, true
	case "upca", "upc-a":
		return FormatUPCA, true
	case "upce", "upc-e":
		return FormatUPCE, true
	case "itf", "interleaved2of5", "i2/5":
		return FormatITF, true
	case "codabar":
		return FormatCodabar, true
	case "rss14", "rss-14", "databar":
		return FormatRSS14, true
	default:
		return FormatUnknown, false
	}
}

// ParseFormats parses a list of symbology names. Duplicates are dropped and
// blank entries ignored; an unknown name is an error.
func ParseFormats(names []string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		f, ok := ParseFormat(n)
		if !ok {
			return nil, fmt.Errorf("unknown barcode format: %q", n)
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats, nil
}

// enabledFormats returns the formats to search for, all formats when the
// allowlist is empty.
func enabledFormats(opts Options) []Format {
	if len(opts.Formats) == 0 {
		return AllFormats()
	}
	return opts.Formats
}
