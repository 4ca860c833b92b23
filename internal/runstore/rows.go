package runstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ClaimRow is one persisted claim.
type ClaimRow struct {
	CandidatePath string
	ManifestID    string
	Row           int
	ClaimedAt     time.Time
}

// ConflictRow is one persisted destination conflict.
type ConflictRow struct {
	ID         int64
	ManifestID string
	Row        int
	FileName   string
	Size       int64
	Checksum   string
	RelPath    string
	Comment    string
	SourcePath string
	DestPath   string
	State      string
	// SizesMeasured is set once both sides were actually sized. SourceSize
	// and DestSize are meaningless while it is false; two empty files still
	// count as measured.
	SizesMeasured bool
	SourceSize    int64
	DestSize      int64
	SourceCRC     string
	DestCRC       string
}

// OutcomeRow is one persisted manifest outcome.
type OutcomeRow struct {
	ManifestID     string
	Total          int
	Matched        int
	AlreadyPresent int
	Missing        int
	Status         string
	Forced         bool
	MoveOnly       bool
}

// BeginRun records a new run.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time, dryRun bool) error {
	return s.execWithRetry(ctx,
		"INSERT INTO runs (id, started_at, dry_run) VALUES (?, ?, ?)",
		runID, startedAt.UTC().Format(time.RFC3339), boolToInt(dryRun))
}

// RecordClaims persists a batch of claims for a run in one transaction.
// Inserting two claims for the same candidate path fails the unique
// constraint, surfacing any invariant violation loudly.
func (s *Store) RecordClaims(ctx context.Context, runID string, claims []ClaimRow) error {
	if len(claims) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO claims (run_id, candidate_path, manifest_id, row, claimed_at) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, claim := range claims {
			if _, err := stmt.ExecContext(ctx,
				runID, claim.CandidatePath, claim.ManifestID, claim.Row,
				claim.ClaimedAt.UTC().Format(time.RFC3339)); err != nil {
				return fmt.Errorf("record claim %s: %w", claim.CandidatePath, err)
			}
		}
		return nil
	})
}

// CountClaims returns the number of claims recorded for a run.
func (s *Store) CountClaims(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM claims WHERE run_id = ?", runID).Scan(&count)
	return count, err
}

// AppendConflicts flushes a batch of conflict rows for a run.
func (s *Store) AppendConflicts(ctx context.Context, runID string, rows []ConflictRow) error {
	if len(rows) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO conflicts
			(run_id, manifest_id, row, file_name, size, checksum, rel_path, comment,
			 source_path, dest_path, state, sizes_measured, source_size, dest_size, source_crc, dest_crc)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, row := range rows {
			if _, err := stmt.ExecContext(ctx,
				runID, row.ManifestID, row.Row, row.FileName, row.Size, row.Checksum,
				row.RelPath, row.Comment, row.SourcePath, row.DestPath, row.State,
				boolToInt(row.SizesMeasured), row.SourceSize, row.DestSize,
				row.SourceCRC, row.DestCRC); err != nil {
				return fmt.Errorf("append conflict %s: %w", row.SourcePath, err)
			}
		}
		return nil
	})
}

// LoadConflicts returns every conflict recorded for a run, in insertion
// order. This is the end-of-run consolidation across manifests.
func (s *Store) LoadConflicts(ctx context.Context, runID string) ([]ConflictRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
			id, manifest_id, row, file_name, size, checksum, rel_path, comment,
			source_path, dest_path, state, sizes_measured, source_size, dest_size, source_crc, dest_crc
		FROM conflicts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConflictRow
	for rows.Next() {
		var row ConflictRow
		var measured int
		if err := rows.Scan(
			&row.ID, &row.ManifestID, &row.Row, &row.FileName, &row.Size, &row.Checksum,
			&row.RelPath, &row.Comment, &row.SourcePath, &row.DestPath, &row.State,
			&measured, &row.SourceSize, &row.DestSize, &row.SourceCRC, &row.DestCRC); err != nil {
			return nil, err
		}
		row.SizesMeasured = measured != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

// UpdateConflict records the verification result for one conflict.
func (s *Store) UpdateConflict(ctx context.Context, id int64, state string, sizesMeasured bool, sourceSize, destSize int64, sourceCRC, destCRC string) error {
	return s.execWithRetry(ctx, `UPDATE conflicts
		SET state = ?, sizes_measured = ?, source_size = ?, dest_size = ?, source_crc = ?, dest_crc = ?
		WHERE id = ?`,
		state, boolToInt(sizesMeasured), sourceSize, destSize, sourceCRC, destCRC, id)
}

// RecordOutcome persists a manifest-level outcome.
func (s *Store) RecordOutcome(ctx context.Context, runID string, outcome OutcomeRow) error {
	return s.execWithRetry(ctx, `INSERT INTO outcomes
		(run_id, manifest_id, total, matched, already_present, missing, status, forced, move_only)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, outcome.ManifestID, outcome.Total, outcome.Matched, outcome.AlreadyPresent,
		outcome.Missing, outcome.Status, boolToInt(outcome.Forced), boolToInt(outcome.MoveOnly))
}

// LoadOutcomes returns every manifest outcome recorded for a run.
func (s *Store) LoadOutcomes(ctx context.Context, runID string) ([]OutcomeRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
			manifest_id, total, matched, already_present, missing, status, forced, move_only
		FROM outcomes WHERE run_id = ? ORDER BY manifest_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OutcomeRow
	for rows.Next() {
		var row OutcomeRow
		var forced, moveOnly int
		if err := rows.Scan(&row.ManifestID, &row.Total, &row.Matched, &row.AlreadyPresent,
			&row.Missing, &row.Status, &forced, &moveOnly); err != nil {
			return nil, err
		}
		row.Forced = forced != 0
		row.MoveOnly = moveOnly != 0
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
