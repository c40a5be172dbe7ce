package barcode

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText applies Unicode NFC normalization to decoded text.
func NormalizeText(s string) string {
	if s == "" {
		return s
	}
	return norm.NFC.String(s)
}

// CanonicalCharset validates a character-set hint and returns its IANA
// name. An empty name is returned unchanged.
func CanonicalCharset(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return "", fmt.Errorf("unsupported character set %q: %w", name, err)
	}
	if enc == nil {
		return "", fmt.Errorf("unsupported character set %q", name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		return "", fmt.Errorf("unsupported character set %q: %w", name, err)
	}
	return canonical, nil
}
