package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"lading/internal/checksum"
	"lading/internal/faults"
	"lading/internal/logging"
)

// Entry is one parsed manifest row. Immutable once parsed.
type Entry struct {
	FileName string
	Size     int64
	// Checksum is normalized to 8-hex uppercase.
	Checksum string
	// RelPath is the optional relative directory, separators normalized to
	// the platform.
	RelPath string
	Comment string
	// ManifestID is the manifest file stem this row came from.
	ManifestID string
	// Row is the 1-based non-blank line number in the manifest.
	Row int
	// Raw preserves the original CSV line for report passthrough.
	Raw string
}

// Key returns the row's composite lookup key.
func (e Entry) Key() string {
	return checksum.Key(e.Checksum, e.Size)
}

// Document is one parsed manifest.
type Document struct {
	// ID is the manifest file stem (base name without extension).
	ID   string
	Path string
	// Entries holds rows in file order.
	Entries []Entry
	// HeaderSkipped reports whether a header row was detected and discarded.
	HeaderSkipped bool
	// Dropped counts rows discarded as malformed.
	Dropped int
	// DuplicateKeys maps composite keys shared by two or more rows of this
	// manifest to the 1-based rows using them. In-manifest duplicates are a
	// warning, not an error; all rows are still arbitrated.
	DuplicateKeys map[string][]int
}

// Stem derives the manifest id from its file path.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and parses a manifest file. Read failures skip the whole
// manifest (faults.ErrManifestIO); other manifests are unaffected.
func Load(path string, logger *slog.Logger) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, faults.Wrap(faults.ErrManifestIO, "parse", "read manifest", path, err)
	}
	doc, err := Parse(Stem(path), data, logger)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Parse tokenizes manifest bytes into a Document. Rows with fewer than four
// fields, unparsable sizes, or invalid checksums are dropped with warnings.
func Parse(id string, data []byte, logger *slog.Logger) (*Document, error) {
	logger = logging.NewComponentLogger(logger, "parser").With(logging.String(logging.FieldManifest, id))

	text, encoding, err := decode(data)
	if err != nil {
		return nil, faults.Wrap(faults.ErrManifestIO, "parse", "decode manifest", id, err)
	}
	if encoding != "utf-8" {
		logger.Debug("manifest decoded from non-UTF-8 encoding", logging.String("encoding", encoding))
	}

	doc := &Document{ID: id, DuplicateKeys: map[string][]int{}}
	row := 0
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row++
		fields := splitFields(line)
		if row == 1 && isHeader(fields) {
			doc.HeaderSkipped = true
			continue
		}
		entry, ok := buildEntry(id, row, line, fields, logger)
		if !ok {
			doc.Dropped++
			continue
		}
		doc.Entries = append(doc.Entries, entry)
	}

	flagDuplicates(doc, logger)
	return doc, nil
}

func buildEntry(id string, row int, raw string, fields []string, logger *slog.Logger) (Entry, bool) {
	if len(fields) < 4 {
		warnRow(logger, row, "row has insufficient fields",
			fmt.Sprintf("found %d fields, expected at least 4", len(fields)))
		return Entry{}, false
	}

	fileName := strings.TrimSpace(fields[0])
	if fileName == "" {
		warnRow(logger, row, "row has empty file name", "FileName field is blank")
		return Entry{}, false
	}

	size, err := parseSize(fields[1])
	if err != nil {
		warnRow(logger, row, "row has invalid size", err.Error())
		return Entry{}, false
	}

	sum, ok := checksum.Normalize(fields[2])
	if !ok {
		warnRow(logger, row, "row has invalid checksum",
			fmt.Sprintf("%q is not an 8-hex-digit CRC32", strings.TrimSpace(fields[2])))
		return Entry{}, false
	}

	// Fields beyond the fifth are comment text that contained unquoted
	// commas; rejoin them.
	comment := ""
	if len(fields) >= 5 {
		comment = strings.TrimSpace(strings.Join(fields[4:], ","))
	}

	return Entry{
		FileName:   fileName,
		Size:       size,
		Checksum:   sum,
		RelPath:    normalizePath(fields[3]),
		Comment:    comment,
		ManifestID: id,
		Row:        row,
		Raw:        strings.TrimRight(raw, "\r\n"),
	}, true
}

func flagDuplicates(doc *Document, logger *slog.Logger) {
	byKey := make(map[string][]int, len(doc.Entries))
	for _, entry := range doc.Entries {
		key := entry.Key()
		byKey[key] = append(byKey[key], entry.Row)
	}
	for key, rows := range byKey {
		if len(rows) < 2 {
			continue
		}
		doc.DuplicateKeys[key] = rows
	}
	for key, rows := range doc.DuplicateKeys {
		logger.Warn("manifest contains duplicate checksum+size rows",
			logging.String(logging.FieldEventType, "duplicate_key"),
			logging.String("key", key),
			logging.String("rows", fmt.Sprint(rows)),
			logging.String(logging.FieldImpact, "at most one candidate can satisfy these rows"),
		)
	}
}

func warnRow(logger *slog.Logger, row int, msg, detail string) {
	logger.Warn(msg,
		logging.String(logging.FieldEventType, "row_dropped"),
		logging.Int(logging.FieldRow, row),
		logging.String("detail", detail),
		logging.String(logging.FieldImpact, "row excluded from reconciliation"),
	)
}
