// Package spec loads and validates template packages.
//
// A template package is a directory with a petrel.yml manifest (declared
// variables, file rules) and a template/ tree whose paths and bodies may
// contain {{ }} references. Loading fails fast on structural problems,
// accumulating every violation into one report, and rejects any condition
// or derivation that references an undeclared variable before a single
// answer is resolved.
package spec

import (
	"github.com/petrelhq/petrel/internal/condition"
	"github.com/petrelhq/petrel/internal/policy"
)

// ManifestName is the template manifest file expected at the package root.
const ManifestName = "petrel.yml"

// TemplateDirName is the directory holding the renderable file tree.
const TemplateDirName = "template"

// VarType enumerates the declared variable types.
type VarType string

const (
	TypeString VarType = "string"
	TypeBool   VarType = "bool"
	TypeInt    VarType = "int"
	TypeEnum   VarType = "enum"
)

// Variable declares one template parameter.
type Variable struct {
	Name     string   `yaml:"name"`
	Type     VarType  `yaml:"type"`
	Default  any      `yaml:"default,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`  // regexp a string answer must match
	Options  []string `yaml:"options,omitempty"`  // enum membership
	Derive   string   `yaml:"derive,omitempty"`   // template computing the value from other variables
	Prompt   string   `yaml:"prompt,omitempty"`   // interactive prompt text; defaults to the name
}

// FileRule maps a path pattern to an inclusion condition and category.
type FileRule struct {
	Match    string          `yaml:"match"`
	If       string          `yaml:"if,omitempty"`
	Category policy.Category `yaml:"category,omitempty"`
}

// FileEntry is one renderable file: a template-relative path expression, a
// content template, an optional inclusion condition, and a category.
type FileEntry struct {
	Path      string         // path expression, relative to the output root
	Content   string         // content template
	Condition condition.Expr // nil means unconditionally included
	CondSrc   string         // condition source text, for diagnostics
	Category  policy.Category
}

// Template is a fully loaded template package.
type Template struct {
	Name     string
	Revision string
	Vars     []Variable
	Entries  []FileEntry
}

// Variable looks up a declared variable by name.
func (t *Template) Variable(name string) (Variable, bool) {
	for _, v := range t.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// VarNames returns the declared variable names in declaration order.
func (t *Template) VarNames() []string {
	names := make([]string, len(t.Vars))
	for i, v := range t.Vars {
		names[i] = v.Name
	}
	return names
}
