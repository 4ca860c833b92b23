package manifest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// splitLines splits on \n and tolerates \r\n endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// splitFields tokenizes one CSV line with RFC4180-style quoting: fields may
// be wrapped in double quotes, a doubled quote inside a quoted field is a
// literal quote, and commas inside quotes do not split. Unterminated quotes
// are tolerated; the remainder of the line becomes the final field.
func splitFields(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case inQuotes:
			if r == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
				} else {
					inQuotes = false
				}
			} else {
				field.WriteRune(r)
			}
		case r == '"' && field.Len() == 0:
			inQuotes = true
		case r == ',':
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())
	return fields
}

// isHeader detects an optional header row: first field names the file column
// or third field names the checksum column, case-insensitive.
func isHeader(fields []string) bool {
	if len(fields) < 3 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(fields[0])) {
	case "filename", "file", "name":
		return true
	}
	switch strings.ToLower(strings.TrimSpace(fields[2])) {
	case "crc32", "crc", "checksum":
		return true
	}
	return false
}

func parseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	size, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer byte count", trimmed)
	}
	if size < 0 {
		return 0, fmt.Errorf("size %d is negative", size)
	}
	return size, nil
}

// normalizePath cleans a manifest path field: trims whitespace, converts
// both separator styles to the platform separator, and treats a bare comma
// as empty. The comma shape is a known artifact of malformed historical
// exports where an empty path collapsed into the delimiter.
func normalizePath(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "," {
		return ""
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", string(filepath.Separator))
	trimmed = strings.ReplaceAll(trimmed, "/", string(filepath.Separator))
	return strings.Trim(trimmed, string(filepath.Separator))
}
