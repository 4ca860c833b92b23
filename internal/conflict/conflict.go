package conflict

import (
	"lading/internal/manifest"
	"lading/internal/runstore"
)

// State classifies a recorded collision. Every record starts Unverified;
// the verification pass settles it.
type State string

const (
	StateUnverified         State = "unverified"
	StateMatch              State = "match"
	StateSizeDiffers        State = "size_differs"
	StateChecksumDiffers    State = "checksum_differs"
	StateDestinationMissing State = "destination_missing"
)

// Note returns the human-readable report annotation for the state.
func (s State) Note() string {
	switch s {
	case StateMatch:
		return "Match"
	case StateSizeDiffers:
		return "Size differs"
	case StateChecksumDiffers:
		return "CRC differs"
	case StateDestinationMissing:
		return "Destination missing"
	default:
		return "Size match (CRC not verified)"
	}
}

// NoteFor annotates a persisted record. An unverified row may only claim a
// size match when its sizes were actually measured; anything less reads as
// plainly not verified.
func NoteFor(row runstore.ConflictRow) string {
	if State(row.State) == StateUnverified && !row.SizesMeasured {
		return "Not verified"
	}
	return State(row.State).Note()
}

// Record is one observed collision: the mover wanted to place a claimed
// candidate at DestPath, but something already lives there.
type Record struct {
	Entry      manifest.Entry
	SourcePath string
	DestPath   string
}

func (r Record) toRow() runstore.ConflictRow {
	return runstore.ConflictRow{
		ManifestID: r.Entry.ManifestID,
		Row:        r.Entry.Row,
		FileName:   r.Entry.FileName,
		Size:       r.Entry.Size,
		Checksum:   r.Entry.Checksum,
		RelPath:    r.Entry.RelPath,
		Comment:    r.Entry.Comment,
		SourcePath: r.SourcePath,
		DestPath:   r.DestPath,
		State:      string(StateUnverified),
	}
}
