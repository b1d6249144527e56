package spec

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrelhq/petrel/internal/policy"
)

// writeTemplate lays out a template package in a temp dir for testing
func writeTemplate(t *testing.T, manifest string, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644)
	require.NoError(t, err)

	for rel, content := range files {
		p := filepath.Join(dir, TemplateDirName, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	return dir
}

const validManifest = `
name: go-service
revision: 1.2.0
variables:
  - name: project_name
    type: string
    required: true
    pattern: "^[a-z][a-z0-9-]*$"
  - name: include_docs
    type: bool
    default: true
  - name: license
    type: enum
    options: [mit, apache-2.0, none]
    default: mit
  - name: owner
    type: string
    default: acme
  - name: module_path
    type: string
    derive: "github.com/{{ .owner }}/{{ .project_name }}"
files:
  - match: "docs/**"
    if: "include_docs"
  - match: "**/*.draft"
    category: never
  - match: "internal/**"
    category: always-update
`

func TestLoadValid(t *testing.T) {
	dir := writeTemplate(t, validManifest, map[string]string{
		"README.md":            "# {{ .project_name }}",
		"docs/guide.md":        "guide",
		"internal/core.go":     "package internal",
		"notes.draft":          "authoring notes",
		"{{ .project_name }}/main.go": "package main",
	})

	tmpl, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "go-service", tmpl.Name)
	assert.Equal(t, "1.2.0", tmpl.Revision)
	require.Len(t, tmpl.Vars, 5)
	require.Len(t, tmpl.Entries, 5)

	byPath := make(map[string]FileEntry)
	for _, e := range tmpl.Entries {
		byPath[e.Path] = e
	}

	readme := byPath["README.md"]
	assert.Nil(t, readme.Condition)
	assert.Equal(t, policy.ProtectedOnce, readme.Category)

	guide := byPath["docs/guide.md"]
	require.NotNil(t, guide.Condition)
	assert.Equal(t, "include_docs", guide.CondSrc)
	assert.Equal(t, policy.ProtectedOnce, guide.Category)

	core := byPath["internal/core.go"]
	assert.Equal(t, policy.AlwaysUpdate, core.Category)

	draft := byPath["notes.draft"]
	assert.Equal(t, policy.Never, draft.Category)

	mainGo := byPath["{{ .project_name }}/main.go"]
	assert.Equal(t, "package main", mainGo.Content)
}

func TestLoadVariableLookup(t *testing.T) {
	dir := writeTemplate(t, validManifest, map[string]string{"a.txt": "x"})

	tmpl, err := Load(dir)
	require.NoError(t, err)

	v, ok := tmpl.Variable("license")
	require.True(t, ok)
	assert.Equal(t, TypeEnum, v.Type)
	assert.Equal(t, []string{"mit", "apache-2.0", "none"}, v.Options)

	_, ok = tmpl.Variable("nope")
	assert.False(t, ok)

	assert.Equal(t, []string{"project_name", "include_docs", "license", "owner", "module_path"}, tmpl.VarNames())
}

func TestLoadAccumulatesValidationErrors(t *testing.T) {
	manifest := `
name: ""
revision: not-a-version
variables:
  - name: a
    type: wat
  - name: a
    type: enum
  - name: b
    type: string
    pattern: "["
  - name: c
    type: string
    derive: "{{ .a }}"
    required: true
`
	dir := writeTemplate(t, manifest, map[string]string{"a.txt": "x"})

	_, err := Load(dir)
	require.Error(t, err)

	var errs ValidationErrors
	require.True(t, errors.As(err, &errs))

	// One complete correction list in one pass.
	assert.GreaterOrEqual(t, len(errs), 6)
	assert.Contains(t, err.Error(), "name is required")
	assert.Contains(t, err.Error(), "semantic version")
	assert.Contains(t, err.Error(), "unknown type")
	assert.Contains(t, err.Error(), "duplicate variable")
	assert.Contains(t, err.Error(), "enum variables must declare options")
	assert.Contains(t, err.Error(), "invalid pattern")
	assert.Contains(t, err.Error(), "derived variables cannot be required")
}

func TestLoadUndeclaredConditionVariable(t *testing.T) {
	manifest := `
name: t
revision: 1.0.0
variables:
  - name: a
    type: bool
files:
  - match: "**"
    if: "a && ghost"
`
	dir := writeTemplate(t, manifest, map[string]string{"a.txt": "x"})

	_, err := Load(dir)
	require.Error(t, err)

	var unresolved *UnresolvedVariableError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "ghost", unresolved.Var)
}

func TestLoadUndeclaredDeriveVariable(t *testing.T) {
	manifest := `
name: t
revision: 1.0.0
variables:
  - name: a
    type: string
    derive: "{{ .phantom }}"
`
	dir := writeTemplate(t, manifest, map[string]string{"a.txt": "x"})

	_, err := Load(dir)
	require.Error(t, err)

	var unresolved *UnresolvedVariableError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "phantom", unresolved.Var)
}

func TestLoadUnknownManifestField(t *testing.T) {
	manifest := `
name: t
revision: 1.0.0
variables:
  - name: a
    type: string
wibble: true
`
	dir := writeTemplate(t, manifest, map[string]string{"a.txt": "x"})

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wibble")
}

func TestLoadMissingTemplateDir(t *testing.T) {
	dir := t.TempDir()
	manifest := `
name: t
revision: 1.0.0
variables:
  - name: a
    type: string
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte(manifest), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), TemplateDirName)
}

func TestMatchPath(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"README.md", "README.md", true},
		{"README.md", "docs/README.md", false},
		{"docs/**", "docs/guide.md", true},
		{"docs/**", "docs/sub/deep.md", true},
		{"docs/**", "other/guide.md", false},
		{"**/*.draft", "notes.draft", true},
		{"**/*.draft", "a/b/notes.draft", true},
		{"**/*.draft", "notes.txt", false},
		{"**", "anything/at/all", true},
		{"internal/*.go", "internal/core.go", true},
		{"internal/*.go", "internal/sub/core.go", false},
	}

	for _, tt := range tests {
		if got := matchPath(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPath(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
