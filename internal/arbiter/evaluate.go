package arbiter

import (
	"fmt"
	"path"

	"lading/internal/faults"
	"lading/internal/manifest"
)

// Status is the manifest-level completeness classification.
type Status int

const (
	// StatusZero means no entry resolved at all.
	StatusZero Status = iota
	// StatusPartial means some but not all entries resolved.
	StatusPartial
	// StatusComplete means every entry matched or was already present.
	StatusComplete
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusPartial:
		return "partial"
	default:
		return "zero"
	}
}

// OverridePolicy carries the manifest-name override lists. The two policies
// are mutually exclusive per manifest.
type OverridePolicy struct {
	ForceComplete   []string
	AllowEmptyForce bool
	ForceMoveOnly   []string
}

// Matches reports which overrides apply to a manifest id.
func (p OverridePolicy) Matches(manifestID string) (forceComplete, moveOnly bool) {
	return matchAny(p.ForceComplete, manifestID), matchAny(p.ForceMoveOnly, manifestID)
}

// Check returns a configuration error when both overrides apply to the same
// manifest. Run-fatal, checked before any manifest is processed.
func (p OverridePolicy) Check(manifestID string) error {
	forceComplete, moveOnly := p.Matches(manifestID)
	if forceComplete && moveOnly {
		return faults.Wrap(faults.ErrConfiguration, "evaluate", "overrides",
			fmt.Sprintf("manifest %q matches both force_complete and force_move_only", manifestID), nil)
	}
	return nil
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// ManifestOutcome aggregates the row results of one manifest. Computed once,
// after every row of the manifest has been resolved.
type ManifestOutcome struct {
	ManifestID     string
	TotalEntries   int
	Matched        int
	AlreadyPresent int
	// Missing holds the entries that produced no assignment, in row order.
	Missing []manifest.Entry
	Status  Status
	// Forced is set when a force-complete override promoted the status.
	Forced bool
	// MoveOnly is set when only the matched subset moves and the manifest
	// stays in place.
	MoveOnly bool
	// Results holds every row resolution in row order.
	Results []RowResult
}

// Evaluate computes the manifest-level outcome from its row results.
func Evaluate(doc *manifest.Document, results []RowResult, policy OverridePolicy) (ManifestOutcome, error) {
	if err := policy.Check(doc.ID); err != nil {
		return ManifestOutcome{}, err
	}

	outcome := ManifestOutcome{
		ManifestID:   doc.ID,
		TotalEntries: len(results),
		Results:      results,
	}
	for _, res := range results {
		switch res.Outcome {
		case OutcomeAssigned:
			outcome.Matched++
		case OutcomeAlreadyPresent:
			outcome.AlreadyPresent++
		default:
			outcome.Missing = append(outcome.Missing, res.Entry)
		}
	}

	resolved := outcome.Matched + outcome.AlreadyPresent
	switch {
	case outcome.TotalEntries > 0 && resolved == outcome.TotalEntries:
		outcome.Status = StatusComplete
	case resolved > 0:
		outcome.Status = StatusPartial
	default:
		outcome.Status = StatusZero
	}

	forceComplete, moveOnly := policy.Matches(doc.ID)
	switch {
	case moveOnly:
		outcome.MoveOnly = true
	case forceComplete && outcome.Status != StatusComplete:
		// Promotion needs an actual match; already-present rows alone do
		// not qualify unless empty force is allowed.
		if outcome.Matched > 0 || policy.AllowEmptyForce {
			outcome.Status = StatusComplete
			outcome.Forced = true
		}
	}
	return outcome, nil
}
