package spec

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/petrelhq/petrel/internal/condition"
	"github.com/petrelhq/petrel/internal/render"
)

// manifest is the on-disk shape of petrel.yml.
type manifest struct {
	Name      string     `yaml:"name"`
	Revision  string     `yaml:"revision"`
	Variables []Variable `yaml:"variables"`
	Files     []FileRule `yaml:"files,omitempty"`
}

// Load reads a template package from dir.
//
// Structural problems are accumulated into ValidationErrors. Any condition
// or derivation referencing an undeclared variable is rejected here with an
// UnresolvedVariableError, before the resolver ever runs.
func Load(dir string) (*Template, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest: %w", err)
	}

	m, err := parseManifest(data)
	if err != nil {
		return nil, err
	}

	if err := validateManifest(m); err != nil {
		return nil, err
	}

	declared := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		declared[v.Name] = true
	}

	// Derivations may only reference declared variables.
	for _, v := range m.Variables {
		if v.Derive == "" {
			continue
		}
		refs, err := render.References("derive:"+v.Name, v.Derive)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation for variable %q: %w", v.Name, err)
		}
		for _, ref := range refs {
			if !declared[ref] {
				return nil, &UnresolvedVariableError{Var: ref, Where: fmt.Sprintf("derivation of %q", v.Name)}
			}
		}
	}

	rules, err := parseRules(m, declared)
	if err != nil {
		return nil, err
	}

	entries, err := collectEntries(dir, rules)
	if err != nil {
		return nil, err
	}

	return &Template{
		Name:     m.Name,
		Revision: m.Revision,
		Vars:     m.Variables,
		Entries:  entries,
	}, nil
}

func parseManifest(data []byte) (*manifest, error) {
	var m manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ManifestName, err)
	}
	return &m, nil
}

// validateManifest checks the manifest structure, accumulating all problems.
func validateManifest(m *manifest) error {
	var errs ValidationErrors

	if m.Name == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}

	if m.Revision == "" {
		errs = append(errs, ValidationError{
			Field:   "revision",
			Message: "revision is required",
		})
	} else if _, err := semver.NewVersion(m.Revision); err != nil {
		errs = append(errs, ValidationError{
			Field:      "revision",
			Message:    fmt.Sprintf("%q is not a valid semantic version", m.Revision),
			Suggestion: "use MAJOR.MINOR.PATCH, e.g. 1.0.0",
		})
	}

	if len(m.Variables) == 0 {
		errs = append(errs, ValidationError{
			Field:   "variables",
			Message: "at least one variable must be declared",
		})
	}

	seen := make(map[string]bool)
	for i, v := range m.Variables {
		field := fmt.Sprintf("variables[%d]", i)

		if v.Name == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: "name is required",
			})
		} else if seen[v.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate variable %q", v.Name),
			})
		}
		seen[v.Name] = true

		switch v.Type {
		case TypeString, TypeBool, TypeInt, TypeEnum:
		case "":
			// Untyped variables default to string.
		default:
			errs = append(errs, ValidationError{
				Field:      field + ".type",
				Message:    fmt.Sprintf("unknown type %q", v.Type),
				Suggestion: "use string, bool, int, or enum",
			})
		}

		if v.Type == TypeEnum && len(v.Options) == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".options",
				Message: "enum variables must declare options",
			})
		}
		if v.Type != TypeEnum && len(v.Options) > 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".options",
				Message: "options are only valid for enum variables",
			})
		}

		if v.Pattern != "" {
			if _, err := regexp.Compile(v.Pattern); err != nil {
				errs = append(errs, ValidationError{
					Field:   field + ".pattern",
					Message: fmt.Sprintf("invalid pattern: %v", err),
				})
			}
		}

		if v.Derive != "" && v.Required {
			errs = append(errs, ValidationError{
				Field:      field + ".derive",
				Message:    "derived variables cannot be required",
				Suggestion: "derived values are computed, never answered",
			})
		}
	}

	for i, rule := range m.Files {
		if rule.Match == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("files[%d].match", i),
				Message: "match pattern is required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// parsedRule pairs a file rule with its parsed condition.
type parsedRule struct {
	FileRule
	cond condition.Expr
}

func parseRules(m *manifest, declared map[string]bool) ([]parsedRule, error) {
	rules := make([]parsedRule, 0, len(m.Files))
	for i, rule := range m.Files {
		parsed := parsedRule{FileRule: rule}

		if rule.If != "" {
			expr, err := condition.Parse(rule.If)
			if err != nil {
				return nil, fmt.Errorf("invalid condition in files[%d]: %w", i, err)
			}
			for _, ref := range condition.Vars(expr) {
				if !declared[ref] {
					return nil, &UnresolvedVariableError{Var: ref, Where: fmt.Sprintf("condition %q", rule.If)}
				}
			}
			parsed.cond = expr
		}

		rules = append(rules, parsed)
	}
	return rules, nil
}

// collectEntries walks the template/ tree and builds a FileEntry per file,
// classified by the first matching rule. Hidden files are included: dotfiles
// like .gitignore are legitimate template content.
func collectEntries(dir string, rules []parsedRule) ([]FileEntry, error) {
	root := filepath.Join(dir, TemplateDirName)
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("template package has no %s directory: %w", TemplateDirName, err)
	}

	var entries []FileEntry
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", rel, err)
		}

		entry := FileEntry{Path: rel, Content: string(content)}
		for _, rule := range rules {
			if matchPath(rule.Match, rel) {
				entry.Condition = rule.cond
				entry.CondSrc = rule.If
				entry.Category = rule.Category
				break
			}
		}

		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// matchPath matches a slash-separated glob pattern against a relative path.
// "**" matches any number of path segments; other segments use path.Match
// semantics.
func matchPath(pattern, p string) bool {
	return matchSegments(strings.Split(pattern, "/"), strings.Split(p, "/"))
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}

	if pattern[0] == "**" {
		for skip := 0; skip <= len(segments); skip++ {
			if matchSegments(pattern[1:], segments[skip:]) {
				return true
			}
		}
		return false
	}

	if len(segments) == 0 {
		return false
	}

	matched, err := filepath.Match(pattern[0], segments[0])
	if err != nil || !matched {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}
