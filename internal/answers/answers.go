// Package answers resolves raw user answers into a complete, validated,
// immutable variable environment, including derived values.
package answers

import (
	"fmt"
	"sort"
)

// AnswerSet is the immutable variable environment for one generation or
// update. It is created once per invocation and never mutated afterward;
// every later stage reads it through this value, never through ambient
// state, which is what makes parallel rendering safe.
type AnswerSet struct {
	values map[string]any
}

// newAnswerSet snapshots the given values.
func newAnswerSet(values map[string]any) *AnswerSet {
	snapshot := make(map[string]any, len(values))
	for k, v := range values {
		snapshot[k] = v
	}
	return &AnswerSet{values: snapshot}
}

// Get returns the value for a variable.
func (a *AnswerSet) Get(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Has reports whether a variable is present.
func (a *AnswerSet) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Map returns a copy of the environment for template execution.
// Mutating the copy never affects the AnswerSet.
func (a *AnswerSet) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Names returns the sorted variable names.
func (a *AnswerSet) Names() []string {
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of variables.
func (a *AnswerSet) Len() int {
	return len(a.values)
}

// CycleError reports a cycle in variable derivations, rejected before any
// computation runs.
type CycleError struct {
	Vars []string // The variables that could not be ordered
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("variable derivation cycle involving %v", e.Vars)
}
