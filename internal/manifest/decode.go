package manifest

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decode converts manifest bytes to a string, honoring BOMs. Historical
// exports arrive as UTF-8 (with or without BOM), UTF-16 with BOM, or a
// Windows single-byte code page. Without a BOM, bytes that are valid UTF-8
// pass through; anything else falls back to Windows-1252.
func decode(data []byte) (string, string, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:]), "utf-8-bom", nil
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		return decodeUTF16(data, unicode.LittleEndian)
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		return decodeUTF16(data, unicode.BigEndian)
	}
	if utf8.Valid(data) {
		return string(data), "utf-8", nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(decoded), "windows-1252", nil
}

func decodeUTF16(data []byte, endian unicode.Endianness) (string, string, error) {
	dec := unicode.UTF16(endian, unicode.ExpectBOM).NewDecoder()
	decoded, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", "", err
	}
	name := "utf-16le"
	if endian == unicode.BigEndian {
		name = "utf-16be"
	}
	return string(decoded), name, nil
}
