package arbiter

import (
	"log/slog"
	"time"

	"lading/internal/index"
	"lading/internal/logging"
	"lading/internal/manifest"
)

// RowOutcome classifies how a manifest row resolved.
type RowOutcome int

const (
	// OutcomeNotFound means no candidate exists for the row's composite key.
	OutcomeNotFound RowOutcome = iota
	// OutcomeAssigned means an unclaimed candidate was claimed for this row.
	OutcomeAssigned
	// OutcomeClaimedByOther means candidates exist but every one is already
	// claimed by an earlier row.
	OutcomeClaimedByOther
	// OutcomeAlreadyPresent means the row's destination file already exists;
	// the row is implicitly satisfied and no claim is attempted.
	OutcomeAlreadyPresent
)

func (o RowOutcome) String() string {
	switch o {
	case OutcomeAssigned:
		return "assigned"
	case OutcomeClaimedByOther:
		return "claimed_by_other"
	case OutcomeAlreadyPresent:
		return "already_present"
	default:
		return "not_found"
	}
}

// ClaimRecord is the write-once record of a successful claim.
type ClaimRecord struct {
	CandidatePath string
	ManifestID    string
	Row           int
	At            time.Time
}

// RowResult pairs a manifest row with its resolution.
type RowResult struct {
	Entry   manifest.Entry
	Outcome RowOutcome
	// CandidateID is the claimed arena id when Outcome is OutcomeAssigned.
	CandidateID int
	// Claimant references the holding claim when Outcome is
	// OutcomeClaimedByOther, for diagnostics.
	Claimant *ClaimRecord
}

// Arbiter holds the global claim state for one run. Not safe for concurrent
// use; rows are resolved strictly one at a time.
type Arbiter struct {
	idx    *index.Index
	claims map[int]*ClaimRecord
	order  []ClaimRecord
	logger *slog.Logger
	now    func() time.Time
}

// New constructs an arbiter over the given candidate index.
func New(idx *index.Index, logger *slog.Logger) *Arbiter {
	return &Arbiter{
		idx:    idx,
		claims: make(map[int]*ClaimRecord),
		logger: logging.NewComponentLogger(logger, "arbiter"),
		now:    time.Now,
	}
}

// SetClock overrides the claim timestamp source. Used by tests and dry runs
// that need reproducible output.
func (a *Arbiter) SetClock(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// Resolve visits one manifest row. Each row is visited exactly once per run;
// there are no retries. When alreadyPresent is true the row is implicitly
// satisfied and no claim is attempted.
func (a *Arbiter) Resolve(entry manifest.Entry, alreadyPresent bool) RowResult {
	if alreadyPresent {
		return RowResult{Entry: entry, Outcome: OutcomeAlreadyPresent}
	}

	ids := a.idx.Lookup(entry.Key())
	if len(ids) == 0 {
		return RowResult{Entry: entry, Outcome: OutcomeNotFound}
	}

	// First-available policy: scan candidates in stored (path-sorted) order
	// and claim the first one nobody holds. Deliberately not a
	// filename-similarity or best-match policy.
	for _, id := range ids {
		cand := a.idx.Candidate(id)
		if cand.Claimed() || cand.Moved {
			continue
		}
		record := ClaimRecord{
			CandidatePath: cand.Path,
			ManifestID:    entry.ManifestID,
			Row:           entry.Row,
			At:            a.now(),
		}
		cand.ClaimedBy = entry.ManifestID
		cand.ClaimedRow = entry.Row
		a.order = append(a.order, record)
		a.claims[id] = &a.order[len(a.order)-1]
		a.logger.Debug("candidate claimed",
			logging.String(logging.FieldManifest, entry.ManifestID),
			logging.Int(logging.FieldRow, entry.Row),
			logging.String("candidate", cand.RelPath),
		)
		return RowResult{Entry: entry, Outcome: OutcomeAssigned, CandidateID: id}
	}

	// Every candidate for the key is held; report the first holder so the
	// log explains who won.
	claimant := a.claims[ids[0]]
	return RowResult{Entry: entry, Outcome: OutcomeClaimedByOther, Claimant: claimant}
}

// Claims returns all claim records in claim order.
func (a *Arbiter) Claims() []ClaimRecord {
	out := make([]ClaimRecord, len(a.order))
	copy(out, a.order)
	return out
}
