package project

import (
	"github.com/petrelhq/petrel/internal/reconcile"
)

// Status is the overall outcome of a generation or update.
type Status int

const (
	// Success means every decision applied cleanly.
	Success Status = iota

	// SuccessWithConflicts means the run completed but left conflicts
	// for manual resolution. Conflicts are expected outcomes, not errors.
	SuccessWithConflicts

	// Failure means at least one filesystem write failed.
	Failure
)

// String returns a short name for logging.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case SuccessWithConflicts:
		return "success-with-conflicts"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the machine-readable outcome of a generation or update:
// which paths were written, skipped, or orphaned, every conflict record,
// and every per-path write failure.
type Result struct {
	Status    Status
	Written   []string // paths written (or that would be, in dry-run)
	Skipped   []string // protected paths left untouched
	Orphaned  []string // recorded paths no longer produced by the template
	Conflicts []reconcile.ConflictRecord
	Failed    map[string]error // per-path write failures
}

func newResult() *Result {
	return &Result{Failed: make(map[string]error)}
}

// finalize computes the overall status from the collected outcomes.
// Conflicts alone never produce Failure, and are never silently dropped.
func (r *Result) finalize() {
	switch {
	case len(r.Failed) > 0:
		r.Status = Failure
	case len(r.Conflicts) > 0:
		r.Status = SuccessWithConflicts
	default:
		r.Status = Success
	}
}
