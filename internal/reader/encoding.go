package reader

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// fallbackEncodings are tried in order when the content is not valid UTF-8.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// decodeText converts raw file bytes to UTF-8.
//
// Detection order:
//  1. UTF-16 with a byte order mark
//  2. UTF-8 (any UTF-8 BOM is already stripped by BOMSkippingReader)
//  3. Windows-1252, then ISO-8859-1
func decodeText(data []byte) ([]byte, string, error) {
	if hasUTF16BOM(data) {
		dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		out, err := decodeWith(dec, data)
		if err != nil {
			return nil, "", fmt.Errorf("%w: utf-16: %v", ErrEncoding, err)
		}
		return out, "utf-16", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	for _, fb := range fallbackEncodings {
		out, err := decodeWith(fb.enc.NewDecoder(), data)
		if err == nil && utf8.Valid(out) {
			return out, fb.name, nil
		}
	}

	return nil, "", ErrEncoding
}

func decodeWith(t transform.Transformer, data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(t, data)
	return out, err
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, []byte{0xFF, 0xFE}) || bytes.HasPrefix(data, []byte{0xFE, 0xFF})
}
