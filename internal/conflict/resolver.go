package conflict

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"lading/internal/checksum"
	"lading/internal/logging"
	"lading/internal/runstore"
)

// Prompter answers yes/no questions put to the operator. The run command
// wires a stdin prompter; tests and --yes runs inject canned answers.
type Prompter interface {
	Confirm(message string) (bool, error)
}

// ConfirmFunc adapts a function to the Prompter interface.
type ConfirmFunc func(message string) (bool, error)

func (f ConfirmFunc) Confirm(message string) (bool, error) { return f(message) }

// Options configures a Resolver.
type Options struct {
	// Workers bounds the verification pool. Values below 1 mean 1.
	Workers int
	// VerifyThreshold is the backlog size above which full verification
	// needs operator confirmation. Zero means always ask when there is
	// anything to verify.
	VerifyThreshold int
	// AutoConfirm skips the prompt and always runs full verification.
	AutoConfirm bool
	Logger      *slog.Logger
}

// Resolver buffers collision records per manifest and drives the end-of-run
// verification pass against the run ledger.
type Resolver struct {
	store   *runstore.Store
	runID   string
	opts    Options
	logger  *slog.Logger
	pending []runstore.ConflictRow
}

// NewResolver constructs a resolver writing to the given run's ledger.
func NewResolver(store *runstore.Store, runID string, opts Options) *Resolver {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Resolver{
		store:  store,
		runID:  runID,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "conflict"),
	}
}

// Observe buffers one collision record.
func (r *Resolver) Observe(rec Record) {
	r.pending = append(r.pending, rec.toRow())
	r.logger.Warn("destination conflict",
		logging.String(logging.FieldManifest, rec.Entry.ManifestID),
		logging.Int(logging.FieldRow, rec.Entry.Row),
		logging.String("source", rec.SourcePath),
		logging.String("destination", rec.DestPath),
	)
}

// Pending returns the number of buffered, unflushed records.
func (r *Resolver) Pending() int { return len(r.pending) }

// Flush appends the buffered records to the ledger and clears the buffer.
// Called after each manifest so memory stays bounded by manifest size.
func (r *Resolver) Flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.AppendConflicts(ctx, r.runID, r.pending); err != nil {
		return fmt.Errorf("flush conflicts: %w", err)
	}
	r.pending = r.pending[:0]
	return nil
}

// Consolidate loads every collision recorded during the run, across all
// manifests, in observation order.
func (r *Resolver) Consolidate(ctx context.Context) ([]runstore.ConflictRow, error) {
	rows, err := r.store.LoadConflicts(ctx, r.runID)
	if err != nil {
		return nil, fmt.Errorf("consolidate conflicts: %w", err)
	}
	return rows, nil
}

// Verify settles the consolidated records. A backlog above the configured
// threshold requires operator confirmation before the expensive full pass;
// a declined prompt downgrades to a size-only comparison. The returned
// bool reports whether checksums were verified.
func (r *Resolver) Verify(ctx context.Context, rows []runstore.ConflictRow, prompter Prompter) ([]runstore.ConflictRow, bool, error) {
	if len(rows) == 0 {
		return rows, true, nil
	}

	full := true
	if !r.opts.AutoConfirm && len(rows) > r.opts.VerifyThreshold {
		if prompter == nil {
			full = false
		} else {
			ok, err := prompter.Confirm(fmt.Sprintf(
				"%d destination conflicts recorded; verify checksums on both sides?", len(rows)))
			if err != nil {
				return nil, false, fmt.Errorf("confirm verification: %w", err)
			}
			full = ok
		}
		if !full {
			r.logger.Info("full verification declined, comparing sizes only",
				logging.Int("conflicts", len(rows)))
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(r.opts.Workers)
	for i := range rows {
		row := &rows[i]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			if full {
				r.verifyRow(row)
			} else {
				r.compareSizes(row)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, full, err
	}

	for i := range rows {
		row := rows[i]
		if err := r.store.UpdateConflict(ctx, row.ID, row.State,
			row.SizesMeasured, row.SourceSize, row.DestSize, row.SourceCRC, row.DestCRC); err != nil {
			return nil, full, fmt.Errorf("update conflict %d: %w", row.ID, err)
		}
	}
	return rows, full, nil
}

// verifyRow rehashes both sides of one collision and classifies it. Rows
// whose files cannot be read stay unverified; the warning carries the cause.
func (r *Resolver) verifyRow(row *runstore.ConflictRow) {
	dstSum, dstSize, err := checksum.File(row.DestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			row.State = string(StateDestinationMissing)
			return
		}
		r.warnUnreadable(row, "destination", err)
		return
	}
	srcSum, srcSize, err := checksum.File(row.SourcePath)
	if err != nil {
		r.warnUnreadable(row, "source", err)
		return
	}

	row.SizesMeasured = true
	row.SourceSize = srcSize
	row.DestSize = dstSize
	row.SourceCRC = srcSum
	row.DestCRC = dstSum
	switch {
	case srcSize != dstSize:
		row.State = string(StateSizeDiffers)
	case srcSum != dstSum:
		row.State = string(StateChecksumDiffers)
	default:
		row.State = string(StateMatch)
	}
}

// compareSizes is the cheap pass: stat both sides and compare sizes only.
// Equal sizes stay unverified since the checksums were never computed.
func (r *Resolver) compareSizes(row *runstore.ConflictRow) {
	dst, err := os.Stat(row.DestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			row.State = string(StateDestinationMissing)
			return
		}
		r.warnUnreadable(row, "destination", err)
		return
	}
	src, err := os.Stat(row.SourcePath)
	if err != nil {
		r.warnUnreadable(row, "source", err)
		return
	}

	row.SizesMeasured = true
	row.SourceSize = src.Size()
	row.DestSize = dst.Size()
	if src.Size() != dst.Size() {
		row.State = string(StateSizeDiffers)
	}
}

func (r *Resolver) warnUnreadable(row *runstore.ConflictRow, side string, err error) {
	r.logger.Warn("conflict left unverified",
		logging.String(logging.FieldManifest, row.ManifestID),
		logging.Int(logging.FieldRow, row.Row),
		logging.String("side", side),
		logging.Error(err),
	)
}
