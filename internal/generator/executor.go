package generator

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FilesystemError records one failed write. Failures are collected per
// path rather than aborting the run: the remaining writes are independent,
// and finishing them minimizes the cost of a re-run.
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("write failed for %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}

// ExecuteOptions configures execution behavior
type ExecuteOptions struct {
	DryRun bool
	Writer io.Writer // Where to write output (defaults to os.Stdout)
}

// Execute runs all operations and returns per-path failures. A failure on
// one operation never blocks the rest. The returned map is empty on full
// success; re-running after a partial failure is safe because writes are
// idempotent.
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) map[string]error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	failed := make(map[string]error)

	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "✓ [DRY RUN] %s\n", op.Description())
			continue
		}

		if err := op.Validate(ctx); err != nil {
			failed[op.Target()] = &FilesystemError{Path: op.Target(), Err: err}
			fmt.Fprintf(opts.Writer, "✗ %s: %v\n", op.Description(), err)
			continue
		}

		if err := op.Execute(ctx); err != nil {
			failed[op.Target()] = &FilesystemError{Path: op.Target(), Err: err}
			fmt.Fprintf(opts.Writer, "✗ %s: %v\n", op.Description(), err)
			continue
		}

		fmt.Fprintf(opts.Writer, "✓ %s\n", op.Description())
	}

	return failed
}
