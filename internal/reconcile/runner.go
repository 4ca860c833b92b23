package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"lading/internal/arbiter"
	"lading/internal/checksum"
	"lading/internal/config"
	"lading/internal/conflict"
	"lading/internal/faults"
	"lading/internal/index"
	"lading/internal/logging"
	"lading/internal/manifest"
	"lading/internal/mover"
	"lading/internal/preflight"
	"lading/internal/report"
	"lading/internal/runstore"
)

// Options configures one reconciliation run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	DryRun bool
	// Prompter answers the conflict-verification confirmation. Nil declines.
	Prompter conflict.Prompter
	// Now overrides the timestamp source for reproducible reports.
	Now func() time.Time
	// RunID overrides the generated run id.
	RunID string
	// Progress, when set, receives indexing progress.
	Progress func(done, total int)
}

// ManifestReport pairs a manifest's evaluation with its move results.
type ManifestReport struct {
	Doc     *manifest.Document
	Outcome arbiter.ManifestOutcome
	Moves   mover.Result
	// MissingReport is the path of the written missing-files report, empty
	// when none was due.
	MissingReport string
	// SkipError is set when the manifest could not be read at all.
	SkipError error
}

// Summary aggregates the whole run for the CLI.
type Summary struct {
	RunID     string
	DryRun    bool
	Manifests []ManifestReport
	// Skipped counts manifests dropped by read failures.
	Skipped int
	// Conflicts holds the consolidated, verified collision records.
	Conflicts []runstore.ConflictRow
	// ConflictsVerified reports whether checksums were compared, as opposed
	// to the size-only fallback.
	ConflictsVerified bool
	// ConflictReport is the path of the written conflict report, if any.
	ConflictReport string
	// Table is the rendered per-manifest summary.
	Table string
}

// Incomplete reports whether any manifest finished short of its goal. The
// CLI maps this to the partial exit code. A move-only manifest counts only
// when rows actually went unresolved.
func (s *Summary) Incomplete() bool {
	if s.Skipped > 0 {
		return true
	}
	for _, m := range s.Manifests {
		if m.SkipError != nil {
			return true
		}
		if m.Outcome.MoveOnly {
			if len(m.Outcome.Missing) > 0 {
				return true
			}
			continue
		}
		if m.Outcome.Status != arbiter.StatusComplete {
			return true
		}
	}
	return false
}

// Run executes a full reconciliation. Configuration problems abort before
// any file is touched; per-manifest failures are isolated and reported.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "options", "no configuration provided", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx = logging.WithRunID(ctx, runID)
	lg := logging.NewComponentLogger(logger, "reconcile").With(logging.String(logging.FieldRunID, runID))

	if err := ensureRunDirectories(cfg, opts.DryRun); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "prepare directories", "unable to create run directories", err)
	}

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "acquire lock", "unable to acquire run lock", err)
	}
	if !locked {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "acquire lock",
			fmt.Sprintf("another run holds %s", cfg.LockPath()), nil)
	}
	defer func() { _ = lock.Unlock() }()

	if err := preflight.Gate(preflight.RunAll(cfg, opts.DryRun)); err != nil {
		return nil, err
	}

	manifests, err := discoverManifests(cfg.Paths.ManifestDir)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "discover manifests", cfg.Paths.ManifestDir, err)
	}
	policy := arbiter.OverridePolicy{
		ForceComplete:   cfg.Overrides.ForceComplete,
		AllowEmptyForce: cfg.Overrides.AllowEmptyForce,
		ForceMoveOnly:   cfg.Overrides.ForceMoveOnly,
	}
	// Override collisions are fatal before any manifest is processed.
	for _, path := range manifests {
		if err := policy.Check(manifest.Stem(path)); err != nil {
			return nil, err
		}
	}

	ledgerPath := cfg.LedgerPath()
	if opts.DryRun {
		ledgerPath = runstore.MemoryDSN
	}
	store, err := runstore.Open(ledgerPath)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "open ledger", ledgerPath, err)
	}
	defer store.Close()
	if err := store.BeginRun(ctx, runID, now(), opts.DryRun); err != nil {
		return nil, faults.Wrap(faults.ErrConfiguration, "run", "record run", "unable to record run start", err)
	}

	lg.Info("run started",
		logging.Bool("dry_run", opts.DryRun),
		logging.Int("manifests", len(manifests)),
	)

	idx, err := index.Build(ctx, cfg.Paths.SourceDir, index.Options{
		Workers:  cfg.Indexing.Workers,
		Logger:   logger,
		Progress: opts.Progress,
	})
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: runID, DryRun: opts.DryRun}
	arb := arbiter.New(idx, logger)
	arb.SetClock(now)

	// Phase one: arbitrate and evaluate every manifest. No file moves yet;
	// the scheduled volume feeds the free-space check first.
	for _, path := range manifests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep := arbitrateManifest(path, arb, policy, cfg, logger)
		if rep.SkipError != nil {
			summary.Skipped++
		} else if fatalErr := rep.checkFatal(); fatalErr != nil {
			return nil, fatalErr
		}
		summary.Manifests = append(summary.Manifests, rep)
	}

	if !opts.DryRun {
		scheduled := scheduledBytes(summary.Manifests)
		if err := preflight.Gate([]preflight.Result{
			preflight.CheckFreeSpace(cfg.Paths.DestDir, scheduled),
		}); err != nil {
			return nil, err
		}
	}

	// Phase two: moves, conflict collection, and per-manifest reports.
	resolver := conflict.NewResolver(store, runID, conflict.Options{
		Workers:         cfg.Indexing.Workers,
		VerifyThreshold: cfg.Conflicts.VerifyThreshold,
		AutoConfirm:     cfg.Conflicts.AutoConfirm,
		Logger:          logger,
	})
	mv := mover.New(idx, resolver, cfg.Paths.DestDir, opts.DryRun, logger)
	for i := range summary.Manifests {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rep := &summary.Manifests[i]
		if rep.SkipError != nil {
			continue
		}
		mctx := logging.WithManifest(ctx, rep.Outcome.ManifestID)

		if rep.Outcome.Status == arbiter.StatusComplete || rep.Outcome.MoveOnly {
			rep.Moves = mv.MoveManifest(rep.Doc, rep.Outcome)
		}
		if err := resolver.Flush(mctx); err != nil {
			return nil, faults.Wrap(faults.ErrConflict, "moving", "flush conflicts", rep.Outcome.ManifestID, err)
		}
		if rep.Outcome.Status == arbiter.StatusPartial {
			path, err := report.WriteMissingFiles(cfg.Paths.ReportDir, cfg.Paths.DestDir, rep.Doc, rep.Outcome, now())
			if err != nil {
				lg.Warn("missing-files report not written",
					logging.String(logging.FieldManifest, rep.Outcome.ManifestID),
					logging.Error(err),
				)
			} else {
				rep.MissingReport = path
			}
		}
		if err := store.RecordOutcome(mctx, runID, outcomeRow(rep.Outcome)); err != nil {
			lg.Warn("outcome not recorded", logging.Error(err))
		}
	}

	if err := persistClaims(ctx, store, runID, arb); err != nil {
		lg.Warn("claims not recorded", logging.Error(err))
	}

	// Phase three: consolidate and verify collisions, then write reports.
	rows, err := resolver.Consolidate(ctx)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConflict, "verifying", "consolidate", "unable to load conflict ledger", err)
	}
	rows, verified, err := resolver.Verify(ctx, rows, opts.Prompter)
	if err != nil {
		return nil, faults.Wrap(faults.ErrConflict, "verifying", "verify", "conflict verification failed", err)
	}
	summary.Conflicts = rows
	summary.ConflictsVerified = verified
	if len(rows) > 0 {
		path, err := report.WriteConflicts(cfg.Paths.ReportDir, runID, rows)
		if err != nil {
			lg.Warn("conflict report not written", logging.Error(err))
		} else {
			summary.ConflictReport = path
		}
	}

	summary.Table = report.Summary(outcomes(summary.Manifests))
	lg.Info("run finished",
		logging.Int("manifests", len(summary.Manifests)),
		logging.Int("skipped", summary.Skipped),
		logging.Int("conflicts", len(summary.Conflicts)),
		logging.Bool("incomplete", summary.Incomplete()),
	)
	return summary, nil
}

// arbitrateManifest loads one manifest and resolves every row in file
// order. Read failures skip the manifest and the run continues.
func arbitrateManifest(path string, arb *arbiter.Arbiter, policy arbiter.OverridePolicy, cfg *config.Config, logger *slog.Logger) ManifestReport {
	lg := logging.NewComponentLogger(logger, "reconcile")
	doc, err := manifest.Load(path, logger)
	if err != nil {
		logging.WarnWithContext(lg, "manifest skipped", "manifest_skipped",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "manifest not reconciled this run"),
		)
		return ManifestReport{SkipError: err}
	}

	_, moveOnly := policy.Matches(doc.ID)
	stem := manifest.Stem(doc.Path)
	results := make([]arbiter.RowResult, 0, len(doc.Entries))
	for _, entry := range doc.Entries {
		dest := mover.Destination(cfg.Paths.DestDir, stem, entry, moveOnly)
		results = append(results, arb.Resolve(entry, destinationSatisfied(dest, entry)))
	}

	outcome, err := arbiter.Evaluate(doc, results, policy)
	if err != nil {
		return ManifestReport{Doc: doc, SkipError: err}
	}
	lg.Info("manifest evaluated",
		logging.String(logging.FieldManifest, doc.ID),
		logging.Int("total", outcome.TotalEntries),
		logging.Int("matched", outcome.Matched),
		logging.Int("present", outcome.AlreadyPresent),
		logging.Int("missing", len(outcome.Missing)),
		logging.String("status", outcome.Status.String()),
	)
	return ManifestReport{Doc: doc, Outcome: outcome}
}

// destinationSatisfied reports whether a row's destination already holds the
// expected file, short-circuiting arbitration for that row. Size screens
// first; a same-size destination must also match the manifest checksum, so a
// corrupt copy leaves the row claimable and the collision gets recorded.
func destinationSatisfied(dest string, entry manifest.Entry) bool {
	info, err := os.Stat(dest)
	if err != nil || !info.Mode().IsRegular() || info.Size() != entry.Size {
		return false
	}
	sum, _, err := checksum.File(dest)
	return err == nil && sum == entry.Checksum
}

// checkFatal surfaces configuration errors hiding in a skip. Evaluate can
// only fail on override collisions, which are run-fatal.
func (r ManifestReport) checkFatal() error {
	if r.SkipError != nil && faults.Fatal(r.SkipError) {
		return r.SkipError
	}
	return nil
}

func ensureRunDirectories(cfg *config.Config, dryRun bool) error {
	if !dryRun {
		return cfg.EnsureDirectories()
	}
	// Dry runs still write reports and logs but must not create pool
	// directories.
	for _, dir := range []string{cfg.Paths.ReportDir, cfg.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

func scheduledBytes(reports []ManifestReport) int64 {
	var total int64
	for _, rep := range reports {
		if rep.SkipError != nil {
			continue
		}
		if rep.Outcome.Status != arbiter.StatusComplete && !rep.Outcome.MoveOnly {
			continue
		}
		for _, row := range rep.Outcome.Results {
			if row.Outcome == arbiter.OutcomeAssigned {
				total += row.Entry.Size
			}
		}
	}
	return total
}

func persistClaims(ctx context.Context, store *runstore.Store, runID string, arb *arbiter.Arbiter) error {
	records := arb.Claims()
	rows := make([]runstore.ClaimRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, runstore.ClaimRow{
			CandidatePath: rec.CandidatePath,
			ManifestID:    rec.ManifestID,
			Row:           rec.Row,
			ClaimedAt:     rec.At,
		})
	}
	return store.RecordClaims(ctx, runID, rows)
}

func outcomeRow(o arbiter.ManifestOutcome) runstore.OutcomeRow {
	return runstore.OutcomeRow{
		ManifestID:     o.ManifestID,
		Total:          o.TotalEntries,
		Matched:        o.Matched,
		AlreadyPresent: o.AlreadyPresent,
		Missing:        len(o.Missing),
		Status:         o.Status.String(),
		Forced:         o.Forced,
		MoveOnly:       o.MoveOnly,
	}
}

func outcomes(reports []ManifestReport) []arbiter.ManifestOutcome {
	out := make([]arbiter.ManifestOutcome, 0, len(reports))
	for _, rep := range reports {
		if rep.SkipError != nil {
			continue
		}
		out = append(out, rep.Outcome)
	}
	return out
}
