// Package reconcile implements three-way reconciliation of generated files:
// comparing previously generated (O), newly rendered (N), and on-disk (D)
// content to decide apply, skip, or conflict, without silent data loss in
// either direction.
//
// Content is opaque bytes; all comparisons are sha256 hash comparisons, so
// the previously generated content itself never needs to be reconstructed.
package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash returns the hex-encoded sha256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// SideFileSuffix is appended to a conflicting path to hold the new render
// when conflicts surface as side files.
const SideFileSuffix = ".incoming"

// ConflictStyle selects how a three-way conflict is surfaced on disk.
type ConflictStyle int

const (
	// SideFile writes the new render next to the user's file as
	// <path>.incoming, leaving the user's content untouched.
	SideFile ConflictStyle = iota

	// Markers rewrites the file with diff-style conflict markers wrapping
	// both the user's content and the new render.
	Markers
)

// ParseConflictStyle converts a configuration string into a ConflictStyle.
func ParseConflictStyle(s string) (ConflictStyle, error) {
	switch s {
	case "", "side-file":
		return SideFile, nil
	case "markers":
		return Markers, nil
	default:
		return SideFile, fmt.Errorf("unknown conflict style %q (want side-file or markers)", s)
	}
}

// Action is a terminal reconciliation state for one file.
type Action int

const (
	// Write applies the new render to the output path.
	Write Action = iota

	// Keep leaves the user's on-disk content untouched; the template did
	// not change this file.
	Keep

	// Noop means disk already matches the new render.
	Noop

	// Skip leaves a deliberately removed protected file removed.
	Skip

	// Conflict surfaces a three-way divergence for manual resolution.
	Conflict
)

// String returns a short name for logging.
func (a Action) String() string {
	switch a {
	case Write:
		return "write"
	case Keep:
		return "keep"
	case Noop:
		return "no-op"
	case Skip:
		return "skip"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ConflictRecord names a conflicting path and the three content hashes in
// conflict. It is transient: produced during reconciliation, surfaced to the
// operator, then discarded. A conflict is an expected outcome, not an error.
type ConflictRecord struct {
	Path     string
	OldHash  string // recorded at last generation; empty if never recorded
	NewHash  string // the new render
	DiskHash string // current on-disk content
}

func (c ConflictRecord) String() string {
	return fmt.Sprintf("conflict at %s (old=%.8s new=%.8s disk=%.8s)", c.Path, c.OldHash, c.NewHash, c.DiskHash)
}
