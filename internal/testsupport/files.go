package testsupport

import (
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// CRC32Of returns the uppercase 8-hex CRC32 of content, as manifests and
// the index report it.
func CRC32Of(content string) string {
	return fmt.Sprintf("%08X", crc32.ChecksumIEEE([]byte(content)))
}

// ManifestRow renders one manifest CSV line for content stored under the
// given name and optional relative path.
func ManifestRow(fileName, content, relPath, comment string) string {
	return strings.Join([]string{
		fileName,
		fmt.Sprintf("%d", len(content)),
		CRC32Of(content),
		relPath,
		comment,
	}, ",")
}

// WriteManifest writes a manifest CSV assembled from rows into dir and
// returns its path.
func WriteManifest(t testing.TB, dir, name string, rows ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, strings.Join(rows, "\n")+"\n")
	return path
}
