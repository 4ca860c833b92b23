package index

import (
	"lading/internal/checksum"
)

// Candidate is one physical file discovered during indexing. Candidates are
// owned by the index; only the arbiter sets the claim fields and only the
// mover marks a candidate moved.
type Candidate struct {
	// ID is the stable arena index of this candidate.
	ID int
	// Path is the absolute path on disk.
	Path string
	// RelPath is the path relative to the indexed root.
	RelPath string
	Size    int64
	// Checksum is the 8-hex uppercase CRC32.
	Checksum string
	// ClaimedBy is the manifest id holding the claim, empty when unclaimed.
	ClaimedBy string
	// ClaimedRow is the 1-based manifest row holding the claim.
	ClaimedRow int
	// Moved is set after the mover relocates the file, removing it from the
	// pool.
	Moved bool
}

// Key returns the candidate's composite lookup key.
func (c *Candidate) Key() string {
	return checksum.Key(c.Checksum, c.Size)
}

// Claimed reports whether the candidate is held by a manifest row.
func (c *Candidate) Claimed() bool {
	return c.ClaimedBy != ""
}

// Index maps composite keys to candidate arena ids in discovery order.
type Index struct {
	root  string
	arena []Candidate
	byKey map[string][]int
}

// Root returns the directory the index was built from.
func (x *Index) Root() string { return x.root }

// Len returns the number of indexed candidates, moved files included.
func (x *Index) Len() int { return len(x.arena) }

// Keys returns the number of distinct composite keys.
func (x *Index) Keys() int { return len(x.byKey) }

// Candidate returns the arena record for id. The pointer stays valid for the
// lifetime of the index; callers mutate claim state through it.
func (x *Index) Candidate(id int) *Candidate {
	if id < 0 || id >= len(x.arena) {
		return nil
	}
	return &x.arena[id]
}

// Lookup returns the candidate ids for a composite key in discovery order.
// The returned slice is owned by the index and must not be modified.
func (x *Index) Lookup(key string) []int {
	return x.byKey[key]
}

// MarkMoved removes a candidate from the pool after a successful move.
func (x *Index) MarkMoved(id int) {
	if c := x.Candidate(id); c != nil {
		c.Moved = true
	}
}

// Candidates returns a snapshot of all arena records in discovery order.
func (x *Index) Candidates() []Candidate {
	out := make([]Candidate, len(x.arena))
	copy(out, x.arena)
	return out
}
