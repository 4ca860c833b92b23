package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"lading/internal/conflict"
	"lading/internal/faults"
	"lading/internal/runstore"
)

// ConflictsPath returns where the consolidated conflict report lands.
func ConflictsPath(reportDir, runID string) string {
	return filepath.Join(reportDir, "conflicts_"+runID+".csv")
}

// WriteConflicts writes the consolidated, verified conflict records for a
// run. Size and CRC columns are blank for sides that were never measured.
func WriteConflicts(reportDir, runID string, rows []runstore.ConflictRow) (string, error) {
	path := ConflictsPath(reportDir, runID)
	f, err := os.Create(path)
	if err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "create conflict report",
			fmt.Sprintf("unable to create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"FileName", "Size", "CRC32", "Path", "Comment",
		"SourceFullPath", "DestinationPath",
		"SourceSize", "DestSize", "SizeMatch",
		"SourceCRC", "DestCRC", "CRCMatch", "Notes",
	}
	if err := w.Write(header); err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write conflict report", "write header", err)
	}
	for _, row := range rows {
		sizesKnown := row.SizesMeasured
		crcsKnown := row.SourceCRC != "" && row.DestCRC != ""
		record := []string{
			row.FileName,
			strconv.FormatInt(row.Size, 10),
			row.Checksum,
			row.RelPath,
			row.Comment,
			row.SourcePath,
			row.DestPath,
			sizeColumn(row.SourceSize, sizesKnown),
			sizeColumn(row.DestSize, sizesKnown),
			matchColumn(row.SourceSize == row.DestSize, sizesKnown),
			row.SourceCRC,
			row.DestCRC,
			matchColumn(row.SourceCRC == row.DestCRC, crcsKnown),
			conflict.NoteFor(row),
		}
		if err := w.Write(record); err != nil {
			return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write conflict report",
				fmt.Sprintf("write row for %s", row.SourcePath), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", faults.Wrap(faults.ErrManifestIO, "reporting", "write conflict report", "flush", err)
	}
	return path, nil
}

func sizeColumn(size int64, measured bool) string {
	if !measured {
		return ""
	}
	return strconv.FormatInt(size, 10)
}

func matchColumn(equal, measured bool) string {
	switch {
	case !measured:
		return ""
	case equal:
		return "Yes"
	default:
		return "No"
	}
}
