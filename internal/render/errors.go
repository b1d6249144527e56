package render

import (
	"fmt"
	"sort"
	"strings"
)

// MissingVariableError reports a render-time reference to a variable absent
// from the answer environment. It aborts the entire render set: a partially
// rendered project is worse than none.
type MissingVariableError struct {
	Var  string // The missing variable
	Path string // The entry that referenced it
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing variable %q referenced by %q", e.Var, e.Path)
}

// PathCollisionError reports two included entries rendering to the same
// output path. This is a fatal template-configuration error.
type PathCollisionError struct {
	Path    string   // The colliding output path
	Sources []string // Template entries that produced it
}

func (e *PathCollisionError) Error() string {
	sources := append([]string(nil), e.Sources...)
	sort.Strings(sources)
	return fmt.Sprintf("output path collision: %q rendered by %s", e.Path, strings.Join(sources, ", "))
}
