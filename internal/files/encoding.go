package files

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Encoding names the character encoding of delimited input.
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingLatin1      Encoding = "latin1"
	EncodingWindows1252 Encoding = "windows-1252"
)

// ParseEncoding accepts the supported encoding names and their common aliases.
// The empty string means UTF-8.
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return EncodingUTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1, nil
	case "windows-1252", "cp1252", "windows1252":
		return EncodingWindows1252, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", name)
}

// NewDecodingReader converts r from enc to UTF-8. For UTF-8 input a leading
// byte order mark is removed and invalid bytes become U+FFFD.
func NewDecodingReader(r io.Reader, enc Encoding) (io.Reader, error) {
	var dec *encoding.Decoder
	switch enc {
	case "", EncodingUTF8:
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case EncodingLatin1:
		dec = charmap.ISO8859_1.NewDecoder()
	case EncodingWindows1252:
		dec = charmap.Windows1252.NewDecoder()
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
	return dec.Reader(r), nil
}
