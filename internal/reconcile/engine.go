package reconcile

import (
	"bytes"

	"github.com/petrelhq/petrel/internal/policy"
)

// Input is everything the engine needs to classify one file. Reconciliation
// decisions are independent per file, so inputs may be processed in any
// order or in parallel.
type Input struct {
	Path         string
	Category     policy.Category
	NewContent   []byte // N: the new render
	RecordedHash string // O: hash recorded at last generation; empty if unrecorded
	DiskContent  []byte // D: current on-disk content
	OnDisk       bool   // whether the path exists on disk
}

// Decision is the engine's terminal state for one file.
type Decision struct {
	Path    string
	Action  Action
	NewHash string // hash of the new render, for the refreshed manifest

	// WritePath and WriteContent describe the single write this decision
	// requires, if any. For Write, WritePath is the output path itself;
	// for a side-file conflict it is the .incoming path; for a markers
	// conflict it is the output path with marker content.
	WritePath    string
	WriteContent []byte

	// Record is set only for conflicts.
	Record *ConflictRecord
}

// Reconcile classifies one file. The decision table for a recorded file:
//
//	D == N            → no-op (already converged)
//	D == O            → write N (fast-forward)
//	N == O            → keep D (user edited, template unchanged)
//	otherwise         → three-way conflict
//
// AlwaysUpdate files bypass the table: the new render always wins, by
// contract. The engine never merges file bodies.
func Reconcile(in Input, style ConflictStyle) Decision {
	newHash := Hash(in.NewContent)
	d := Decision{Path: in.Path, NewHash: newHash}

	if in.Category == policy.AlwaysUpdate {
		if in.OnDisk && Hash(in.DiskContent) == newHash {
			d.Action = Noop
			return d
		}
		d.Action = Write
		d.WritePath = in.Path
		d.WriteContent = in.NewContent
		return d
	}

	// ProtectedOnce from here on.

	if !in.OnDisk {
		if in.RecordedHash == "" {
			// Never generated and not present: plain create.
			d.Action = Write
			d.WritePath = in.Path
			d.WriteContent = in.NewContent
			return d
		}
		// Recorded but deleted: the user removed it on purpose.
		d.Action = Skip
		return d
	}

	diskHash := Hash(in.DiskContent)

	if in.RecordedHash == "" {
		// Present on disk but never generated by us. Unknown provenance:
		// surface as a conflict rather than overwrite.
		if diskHash == newHash {
			d.Action = Noop
			return d
		}
		return conflict(d, in, style, "", diskHash)
	}

	switch {
	case diskHash == newHash:
		d.Action = Noop
	case diskHash == in.RecordedHash:
		d.Action = Write
		d.WritePath = in.Path
		d.WriteContent = in.NewContent
	case newHash == in.RecordedHash:
		d.Action = Keep
	default:
		return conflict(d, in, style, in.RecordedHash, diskHash)
	}
	return d
}

// conflict fills in the conflict surfacing write and the record.
func conflict(d Decision, in Input, style ConflictStyle, oldHash, diskHash string) Decision {
	d.Action = Conflict
	d.Record = &ConflictRecord{
		Path:     in.Path,
		OldHash:  oldHash,
		NewHash:  d.NewHash,
		DiskHash: diskHash,
	}

	switch style {
	case Markers:
		d.WritePath = in.Path
		d.WriteContent = withMarkers(in.DiskContent, in.NewContent)
	default:
		d.WritePath = in.Path + SideFileSuffix
		d.WriteContent = in.NewContent
	}
	return d
}

// withMarkers wraps both versions in diff-style conflict markers. The
// user's content comes first, matching the convention merge tools expect.
func withMarkers(disk, newer []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("<<<<<<< local\n")
	buf.Write(ensureTrailingNewline(disk))
	buf.WriteString("=======\n")
	buf.Write(ensureTrailingNewline(newer))
	buf.WriteString(">>>>>>> template\n")
	return buf.Bytes()
}

func ensureTrailingNewline(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] == '\n' {
		return b
	}
	return append(append([]byte(nil), b...), '\n')
}
