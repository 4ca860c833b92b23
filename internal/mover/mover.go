package mover

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"lading/internal/arbiter"
	"lading/internal/conflict"
	"lading/internal/faults"
	"lading/internal/index"
	"lading/internal/logging"
	"lading/internal/manifest"
)

// Destination computes the target path for a manifest entry. Complete
// manifests nest under a directory named after the manifest stem; move-only
// manifests place files directly under the destination root.
func Destination(destDir, manifestStem string, entry manifest.Entry, moveOnly bool) string {
	parts := []string{destDir}
	if !moveOnly {
		parts = append(parts, manifestStem)
	}
	if entry.RelPath != "" {
		parts = append(parts, entry.RelPath)
	}
	parts = append(parts, entry.FileName)
	return filepath.Join(parts...)
}

// ManifestDestination is where a completed manifest's own CSV file lands.
func ManifestDestination(destDir, manifestPath string) string {
	return filepath.Join(destDir, manifest.Stem(manifestPath), filepath.Base(manifestPath))
}

// Result summarizes one manifest's move phase.
type Result struct {
	Moved     int
	Conflicts int
	Failed    int
	// ManifestRelocated is set when the manifest CSV itself was moved.
	ManifestRelocated bool
}

// Mover executes the move phase for manifests that earned one.
type Mover struct {
	idx      *index.Index
	resolver *conflict.Resolver
	destDir  string
	dryRun   bool
	logger   *slog.Logger
}

// New constructs a mover targeting destDir. In dry-run mode every decision
// is made and logged but nothing on disk changes.
func New(idx *index.Index, resolver *conflict.Resolver, destDir string, dryRun bool, logger *slog.Logger) *Mover {
	return &Mover{
		idx:      idx,
		resolver: resolver,
		destDir:  destDir,
		dryRun:   dryRun,
		logger:   logging.NewComponentLogger(logger, "mover"),
	}
}

// MoveManifest relocates every assigned candidate of the outcome. Complete
// manifests (not move-only) also relocate the manifest CSV alongside its
// files. Individual move failures are logged and counted; the phase always
// visits every assigned row.
func (m *Mover) MoveManifest(doc *manifest.Document, outcome arbiter.ManifestOutcome) Result {
	stem := manifest.Stem(doc.Path)
	var res Result
	for _, row := range outcome.Results {
		if row.Outcome != arbiter.OutcomeAssigned {
			continue
		}
		cand := m.idx.Candidate(row.CandidateID)
		if cand == nil || cand.Moved {
			continue
		}
		dest := Destination(m.destDir, stem, row.Entry, outcome.MoveOnly)
		switch err := m.moveFile(cand.Path, dest); {
		case err == nil:
			m.idx.MarkMoved(row.CandidateID)
			res.Moved++
			m.logger.Debug("moved",
				logging.String(logging.FieldManifest, doc.ID),
				logging.Int(logging.FieldRow, row.Entry.Row),
				logging.String("destination", dest),
			)
		case errors.Is(err, faults.ErrConflict):
			m.resolver.Observe(conflict.Record{
				Entry:      row.Entry,
				SourcePath: cand.Path,
				DestPath:   dest,
			})
			res.Conflicts++
		default:
			res.Failed++
			m.logger.Warn("move failed",
				logging.String(logging.FieldManifest, doc.ID),
				logging.Int(logging.FieldRow, row.Entry.Row),
				logging.String("destination", dest),
				logging.Error(err),
			)
		}
	}

	if outcome.Status == arbiter.StatusComplete && !outcome.MoveOnly {
		if err := m.relocateManifest(doc.Path); err != nil {
			res.Failed++
			m.logger.Warn("manifest relocation failed",
				logging.String(logging.FieldManifest, doc.ID),
				logging.Error(err),
			)
		} else {
			res.ManifestRelocated = true
		}
	}
	return res
}

func (m *Mover) relocateManifest(manifestPath string) error {
	dest := ManifestDestination(m.destDir, manifestPath)
	if err := m.moveFile(manifestPath, dest); err != nil {
		if errors.Is(err, faults.ErrConflict) {
			// A previous run already delivered a manifest with this name;
			// leave the source copy in place rather than guess.
			return faults.Wrap(faults.ErrMove, "moving", "relocate manifest",
				fmt.Sprintf("destination %s already exists", dest), nil)
		}
		return err
	}
	return nil
}

// moveFile performs one no-overwrite move. An existing destination returns
// ErrConflict without touching either file.
func (m *Mover) moveFile(source, dest string) error {
	if _, err := os.Lstat(dest); err == nil {
		return faults.Wrap(faults.ErrConflict, "moving", "check destination",
			fmt.Sprintf("destination %s already exists", dest), nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return faults.Wrap(faults.ErrMove, "moving", "check destination", "unable to stat destination", err)
	}

	if m.dryRun {
		m.logger.Info("dry-run: would move",
			logging.String("source", source),
			logging.String("destination", dest),
		)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return faults.Wrap(faults.ErrMove, "moving", "create destination directory", "unable to create directories", err)
	}

	renameErr := os.Rename(source, dest)
	if renameErr == nil {
		return nil
	}
	var linkErr *os.LinkError
	if errors.As(renameErr, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if copyErr := copyFile(source, dest); copyErr != nil {
			return faults.Wrap(faults.ErrMove, "moving", "copy across filesystems", "copy fallback failed", copyErr)
		}
		if err := os.Remove(source); err != nil {
			m.logger.Warn("failed to remove source after cross-device copy; duplicate remains",
				logging.String("source", source),
				logging.Error(err),
			)
		}
		return nil
	}
	return faults.Wrap(faults.ErrMove, "moving", "rename", "rename failed", renameErr)
}

// copyFile is the cross-device fallback. The copy is verified by size
// before the caller removes the source.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	srcInfo, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dst)
		return err
	}
	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("short copy: wrote %d of %d bytes", written, srcInfo.Size())
	}
	return nil
}
