package loader

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultEncodings is the decode order used when none is configured.
var DefaultEncodings = []string{"utf-8-sig", "utf-8", "windows-1252", "latin1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decode tries each encoding in order and returns the text of the first that
// succeeds together with its name.
func decode(data []byte, encodings []string) (string, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	for _, name := range encodings {
		text, err := decodeAs(data, name)
		if err == nil {
			return text, name, nil
		}
	}
	return "", "", fmt.Errorf("%w: tried %s", ErrUndecodable, strings.Join(encodings, ", "))
}

func decodeAs(data []byte, name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "utf-8-sig", "utf8-sig", "utf-8-bom":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8")
		}
		return decodeWith(unicode.UTF8BOM, data)
	case "utf-8", "utf8":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("invalid UTF-8")
		}
		return string(data), nil
	case "windows-1252", "cp1252":
		text, err := decodeWith(charmap.Windows1252, data)
		if err != nil {
			return "", err
		}
		// Bytes undefined in Windows-1252 decode to the replacement character.
		if strings.ContainsRune(text, utf8.RuneError) && !bytes.Contains(data, []byte(string(utf8.RuneError))) {
			return "", fmt.Errorf("undefined Windows-1252 byte")
		}
		return text, nil
	case "latin1", "latin-1", "iso-8859-1":
		return decodeWith(charmap.ISO8859_1, data)
	default:
		return "", fmt.Errorf("unknown encoding %q", name)
	}
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return string(out), nil
}
