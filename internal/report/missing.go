package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lading/internal/arbiter"
	"lading/internal/faults"
	"lading/internal/manifest"
	"lading/internal/mover"
)

// timestampLayout matches the format long-time consumers of these reports
// already parse.
const timestampLayout = "2006-01-02 15:04:05"

// MissingFilesPath returns where a manifest's missing-files report lands.
func MissingFilesPath(reportDir, manifestPath string) string {
	return filepath.Join(reportDir, manifest.Stem(manifestPath)+"_missing_files.csv")
}

// WriteMissingFiles writes the unresolved rows of a partial manifest. Each
// row carries the original manifest fields plus the destination the file
// would have had, the originating CSV, and the report timestamp.
func WriteMissingFiles(reportDir, destDir string, doc *manifest.Document, outcome arbiter.ManifestOutcome, now time.Time) (string, error) {
	path := MissingFilesPath(reportDir, doc.Path)
	f, err := os.Create(path)
	if err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "create missing-files report",
			fmt.Sprintf("unable to create %s", path), err)
	}
	defer f.Close()

	stem := manifest.Stem(doc.Path)
	ts := now.Format(timestampLayout)
	w := csv.NewWriter(f)
	header := []string{"FileName", "Size", "CRC32", "Path", "Comment", "ExpectedPath", "OriginalCSV", "TimeStamp"}
	if err := w.Write(header); err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write missing-files report", "write header", err)
	}
	for _, entry := range outcome.Missing {
		record := []string{
			entry.FileName,
			strconv.FormatInt(entry.Size, 10),
			entry.Checksum,
			entry.RelPath,
			entry.Comment,
			mover.Destination(destDir, stem, entry, outcome.MoveOnly),
			doc.Path,
			ts,
		}
		if err := w.Write(record); err != nil {
			return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write missing-files report",
				fmt.Sprintf("write row %d", entry.Row), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write missing-files report", "flush", err)
	}
	return path, nil
}
