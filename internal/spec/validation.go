package spec

import "fmt"

// ValidationError represents a template validation error with context
type ValidationError struct {
	Field      string // Field path (e.g., "variables[2].pattern")
	Message    string // Error message
	Suggestion string // Helpful suggestion (optional)
}

// Error returns a formatted error message
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("validation error at %s: %s", e.Field, e.Message)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(". Suggestion: %s", e.Suggestion)
	}
	return msg
}

// ValidationErrors is a collection of validation errors.
// Loading and answer resolution accumulate every violation before failing,
// so the caller gets a complete correction list in one pass.
type ValidationErrors []ValidationError

// Error returns all validation errors formatted with clear separation
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	result := fmt.Sprintf("found %d validation errors:\n", len(e))
	for i, err := range e {
		result += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return result
}

// UnresolvedVariableError reports a load-time reference to a variable the
// template never declares. This is fatal before resolution even runs, so
// malformed templates fail immediately regardless of the answers supplied.
type UnresolvedVariableError struct {
	Var   string // The undeclared variable
	Where string // The condition or derivation that referenced it
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("undeclared variable %q referenced by %s", e.Var, e.Where)
}
