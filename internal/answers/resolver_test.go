package answers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrelhq/petrel/internal/spec"
)

func testTemplate() *spec.Template {
	return &spec.Template{
		Name:     "go-service",
		Revision: "1.0.0",
		Vars: []spec.Variable{
			{Name: "project_name", Type: spec.TypeString, Required: true, Pattern: "^[a-z][a-z0-9-]*$"},
			{Name: "owner", Type: spec.TypeString, Default: "acme"},
			{Name: "include_docs", Type: spec.TypeBool, Default: true},
			{Name: "port", Type: spec.TypeInt, Default: 8080},
			{Name: "license", Type: spec.TypeEnum, Options: []string{"mit", "apache-2.0", "none"}, Default: "mit"},
			{Name: "module_path", Type: spec.TypeString, Derive: "github.com/{{ .owner }}/{{ .project_name }}"},
			{Name: "image_name", Type: spec.TypeString, Derive: "{{ .module_path }}:latest"},
		},
	}
}

func TestResolve(t *testing.T) {
	r := NewResolver(testTemplate())

	set, err := r.Resolve(map[string]any{
		"project_name": "myapp",
		"include_docs": false,
	})
	require.NoError(t, err)

	name, ok := set.Get("project_name")
	require.True(t, ok)
	assert.Equal(t, "myapp", name)

	// Defaults fill unanswered variables.
	owner, _ := set.Get("owner")
	assert.Equal(t, "acme", owner)
	port, _ := set.Get("port")
	assert.Equal(t, 8080, port)
	license, _ := set.Get("license")
	assert.Equal(t, "mit", license)

	docs, _ := set.Get("include_docs")
	assert.Equal(t, false, docs)

	// Derived values computed in dependency order.
	module, _ := set.Get("module_path")
	assert.Equal(t, "github.com/acme/myapp", module)
	image, _ := set.Get("image_name")
	assert.Equal(t, "github.com/acme/myapp:latest", image)

	assert.Equal(t, 7, set.Len())
}

func TestResolveImmutable(t *testing.T) {
	r := NewResolver(testTemplate())

	set, err := r.Resolve(map[string]any{"project_name": "myapp"})
	require.NoError(t, err)

	m := set.Map()
	m["project_name"] = "tampered"
	m["extra"] = true

	name, _ := set.Get("project_name")
	assert.Equal(t, "myapp", name)
	assert.False(t, set.Has("extra"))
}

func TestResolveAccumulatesViolations(t *testing.T) {
	r := NewResolver(testTemplate())

	_, err := r.Resolve(map[string]any{
		"project_name": "Bad Name!",
		"include_docs": "maybe",
		"port":         "eighty",
		"license":      "gpl",
		"mystery":      1,
	})
	require.Error(t, err)

	var errs spec.ValidationErrors
	require.True(t, errors.As(err, &errs))

	// One report listing every offending field.
	fields := make(map[string]bool)
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["project_name"], "pattern violation")
	assert.True(t, fields["include_docs"], "bool violation")
	assert.True(t, fields["port"], "int violation")
	assert.True(t, fields["license"], "enum violation")
	assert.True(t, fields["mystery"], "undeclared answer")
	assert.Len(t, errs, 5)
}

func TestResolveMissingRequired(t *testing.T) {
	r := NewResolver(testTemplate())

	_, err := r.Resolve(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project_name")
	assert.Contains(t, err.Error(), "required")
}

func TestResolveCoercions(t *testing.T) {
	r := NewResolver(testTemplate())

	// String forms of bool and int answers are accepted; answer documents
	// and --set flags both arrive as strings.
	set, err := r.Resolve(map[string]any{
		"project_name": "myapp",
		"include_docs": "true",
		"port":         "9090",
	})
	require.NoError(t, err)

	docs, _ := set.Get("include_docs")
	assert.Equal(t, true, docs)
	port, _ := set.Get("port")
	assert.Equal(t, 9090, port)
}

func TestResolveDerivationCycle(t *testing.T) {
	tmpl := &spec.Template{
		Name:     "t",
		Revision: "1.0.0",
		Vars: []spec.Variable{
			{Name: "a", Type: spec.TypeString, Derive: "{{ .b }}"},
			{Name: "b", Type: spec.TypeString, Derive: "{{ .a }}"},
		},
	}

	_, err := NewResolver(tmpl).Resolve(map[string]any{})
	require.Error(t, err)

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.Contains(t, cycle.Vars, "a")
	assert.Contains(t, cycle.Vars, "b")
}

func TestResolveSelfDerivation(t *testing.T) {
	tmpl := &spec.Template{
		Name:     "t",
		Revision: "1.0.0",
		Vars: []spec.Variable{
			{Name: "a", Type: spec.TypeString, Derive: "x{{ .a }}"},
		},
	}

	_, err := NewResolver(tmpl).Resolve(map[string]any{})
	require.Error(t, err)

	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
}

func TestResolveOptionalUnanswered(t *testing.T) {
	tmpl := &spec.Template{
		Name:     "t",
		Revision: "1.0.0",
		Vars: []spec.Variable{
			{Name: "project_name", Type: spec.TypeString, Required: true},
			{Name: "tagline", Type: spec.TypeString},
			{Name: "workers", Type: spec.TypeInt},
			{Name: "fancy", Type: spec.TypeBool},
		},
	}

	set, err := NewResolver(tmpl).Resolve(map[string]any{"project_name": "x"})
	require.NoError(t, err)

	tagline, _ := set.Get("tagline")
	assert.Equal(t, "", tagline)
	workers, _ := set.Get("workers")
	assert.Equal(t, 0, workers)
	fancy, _ := set.Get("fancy")
	assert.Equal(t, false, fancy)
}
