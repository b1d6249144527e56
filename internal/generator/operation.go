// Package generator is the commit layer: it turns reconciliation and
// rendering decisions into filesystem writes. All writes are deferred until
// the full in-memory result set exists, so a mid-render failure never
// leaves a partial tree behind.
package generator

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Operation is a single filesystem operation that can be validated and
// executed.
//
// Validate checks whether the operation could succeed. Creating parent
// directories is an allowed (idempotent) side effect of validation.
// Execute performs the write; call it only after Validate succeeds.
// Target returns the affected path, used to attribute failures.
// Description returns a human-readable line for output.
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context) error
	Target() string
	Description() string
}

// WriteFileOp writes content to a path, creating parent directories.
// Overwrite policy was already decided upstream by classification and
// reconciliation; the commit layer does not second-guess it.
type WriteFileOp struct {
	Path    string      // Destination path
	Content []byte      // File content (can be empty, must not be nil)
	Mode    fs.FileMode // File permissions (e.g., 0644)
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}

	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}

	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(op.Path, op.Content, op.Mode)
}

func (op *WriteFileOp) Target() string {
	return op.Path
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}
