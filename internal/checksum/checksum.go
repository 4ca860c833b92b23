// Package checksum computes the CRC32 fingerprints manifests are keyed on.
// CRC32 is a legacy format requirement, not an integrity guarantee: the
// manifests being reconciled were produced by tooling that records 8-hex
// uppercase IEEE CRC32 values alongside byte sizes.
package checksum

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"strings"
)

// copyBufferSize bounds per-read memory so arbitrarily large files stream
// without loading into memory.
const copyBufferSize = 512 * 1024

// Reader streams r to completion and returns the 8-hex uppercase CRC32 and
// the number of bytes read.
func Reader(r io.Reader) (string, int64, error) {
	h := crc32.NewIEEE()
	buf := make([]byte, copyBufferSize)
	n, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", n, err
	}
	return Format(h.Sum32()), n, nil
}

// File opens path and streams it through Reader.
func File(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	sum, size, err := Reader(f)
	if err != nil {
		return "", size, fmt.Errorf("read %s: %w", path, err)
	}
	return sum, size, nil
}

// Format renders a CRC32 value in the canonical 8-hex uppercase form.
func Format(sum uint32) string {
	return fmt.Sprintf("%08X", sum)
}

// Normalize validates a manifest checksum field and returns its canonical
// uppercase form. Accepts either case; rejects anything that is not exactly
// eight hex digits.
func Normalize(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) != 8 {
		return "", false
	}
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return "", false
		}
	}
	return strings.ToUpper(trimmed), true
}

// Key serializes the composite lookup key for a checksum and size pair.
// The external representation is "CRC32:SIZE" with an uppercase checksum.
func Key(sum string, size int64) string {
	return fmt.Sprintf("%s:%d", strings.ToUpper(sum), size)
}
