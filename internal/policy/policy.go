// Package policy defines the file mutability categories that govern
// first-generation and update behavior.
package policy

import "fmt"

// Category is a file's mutability classification.
type Category int

const (
	// ProtectedOnce files are written only when absent. On update an
	// untouched file is refreshed; an edited one is left alone and any
	// template change surfaces as a conflict.
	ProtectedOnce Category = iota

	// AlwaysUpdate files are unconditionally rewritten on every generation
	// or update. User edits are not preserved, by contract.
	AlwaysUpdate

	// Never files are authoring-only material and are excluded from output
	// before rendering runs.
	Never
)

// String returns the kebab-case name used in template manifests.
func (c Category) String() string {
	switch c {
	case ProtectedOnce:
		return "protected-once"
	case AlwaysUpdate:
		return "always-update"
	case Never:
		return "never"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory converts a manifest string into a Category.
// The empty string maps to ProtectedOnce, the default for unmatched paths.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "", "protected-once":
		return ProtectedOnce, nil
	case "always-update":
		return AlwaysUpdate, nil
	case "never":
		return Never, nil
	default:
		return ProtectedOnce, fmt.Errorf("unknown category %q (want protected-once, always-update, or never)", s)
	}
}

// MarshalYAML implements yaml.Marshaler.
func (c Category) MarshalYAML() (any, error) {
	return c.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Category) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
