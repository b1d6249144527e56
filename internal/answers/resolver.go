package answers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/petrelhq/petrel/internal/dag"
	"github.com/petrelhq/petrel/internal/render"
	"github.com/petrelhq/petrel/internal/spec"
)

// Resolver turns raw answers into an AnswerSet for one template.
type Resolver struct {
	tmpl     *spec.Template
	renderer *render.Renderer
}

// NewResolver creates a resolver for a loaded template.
func NewResolver(tmpl *spec.Template) *Resolver {
	return &Resolver{
		tmpl:     tmpl,
		renderer: render.NewRenderer(),
	}
}

// Resolve validates raw answers and computes derived variables.
//
// Every validation violation is accumulated rather than stopping at the
// first, so the caller gets a complete correction list in one pass. After
// raw values pass, derived variables are computed in dependency order; a
// cycle is reported as CycleError before any computation runs.
func (r *Resolver) Resolve(raw map[string]any) (*AnswerSet, error) {
	var errs spec.ValidationErrors
	values := make(map[string]any, len(r.tmpl.Vars))

	for name := range raw {
		if _, ok := r.tmpl.Variable(name); !ok {
			errs = append(errs, spec.ValidationError{
				Field:      name,
				Message:    "answer for undeclared variable",
				Suggestion: fmt.Sprintf("declared variables: %s", strings.Join(r.tmpl.VarNames(), ", ")),
			})
		}
	}

	for _, v := range r.tmpl.Vars {
		if v.Derive != "" {
			continue // computed below, never answered
		}

		rawVal, answered := raw[v.Name]
		if !answered {
			if v.Default != nil {
				rawVal = v.Default
			} else if v.Required {
				errs = append(errs, spec.ValidationError{
					Field:   v.Name,
					Message: "required variable not answered",
				})
				continue
			} else {
				values[v.Name] = zeroValue(v)
				continue
			}
		}

		val, err := coerce(v, rawVal)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		values[v.Name] = val
	}

	if len(errs) > 0 {
		return nil, errs
	}

	if err := r.derive(values); err != nil {
		return nil, err
	}

	return newAnswerSet(values), nil
}

// derive computes derived variables in topological order.
func (r *Resolver) derive(values map[string]any) error {
	graph := dag.New()
	for _, v := range r.tmpl.Vars {
		if err := graph.AddNode(v.Name); err != nil {
			return err
		}
	}

	derived := make(map[string]spec.Variable)
	for _, v := range r.tmpl.Vars {
		if v.Derive == "" {
			continue
		}
		derived[v.Name] = v

		refs, err := render.References("derive:"+v.Name, v.Derive)
		if err != nil {
			return fmt.Errorf("invalid derivation for %q: %w", v.Name, err)
		}
		for _, ref := range refs {
			if ref == v.Name {
				return &CycleError{Vars: []string{v.Name}}
			}
			if err := graph.AddEdge(v.Name, ref); err != nil {
				return err
			}
		}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		if errors.Is(err, dag.ErrCycle) {
			return &CycleError{Vars: cycleVars(derived)}
		}
		return err
	}

	for _, name := range order {
		v, isDerived := derived[name]
		if !isDerived {
			continue
		}
		out, err := r.renderer.RenderContent("derive:"+name, v.Derive, values)
		if err != nil {
			return fmt.Errorf("failed to derive %q: %w", name, err)
		}
		values[name] = string(out)
	}

	return nil
}

// cycleVars lists the derived variable names for the cycle report, sorted.
func cycleVars(derived map[string]spec.Variable) []string {
	names := make([]string, 0, len(derived))
	for name := range derived {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// zeroValue returns the neutral value for an unanswered optional variable.
func zeroValue(v spec.Variable) any {
	switch v.Type {
	case spec.TypeBool:
		return false
	case spec.TypeInt:
		return 0
	default:
		return ""
	}
}

// coerce validates a raw value against its declaration and converts it to
// the canonical Go type for its declared type.
func coerce(v spec.Variable, raw any) (any, *spec.ValidationError) {
	switch v.Type {
	case spec.TypeBool:
		switch val := raw.(type) {
		case bool:
			return val, nil
		case string:
			parsed, err := strconv.ParseBool(val)
			if err == nil {
				return parsed, nil
			}
		}
		return nil, &spec.ValidationError{
			Field:   v.Name,
			Message: fmt.Sprintf("expected a boolean, got %v", raw),
		}

	case spec.TypeInt:
		switch val := raw.(type) {
		case int:
			return val, nil
		case int64:
			return int(val), nil
		case float64:
			if val == float64(int(val)) {
				return int(val), nil
			}
		case string:
			parsed, err := strconv.Atoi(val)
			if err == nil {
				return parsed, nil
			}
		}
		return nil, &spec.ValidationError{
			Field:   v.Name,
			Message: fmt.Sprintf("expected an integer, got %v", raw),
		}

	case spec.TypeEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, &spec.ValidationError{
				Field:   v.Name,
				Message: fmt.Sprintf("expected one of %v, got %v", v.Options, raw),
			}
		}
		for _, opt := range v.Options {
			if s == opt {
				return s, nil
			}
		}
		return nil, &spec.ValidationError{
			Field:      v.Name,
			Message:    fmt.Sprintf("%q is not a valid option", s),
			Suggestion: fmt.Sprintf("use one of: %s", strings.Join(v.Options, ", ")),
		}

	default: // string
		s, ok := raw.(string)
		if !ok {
			return nil, &spec.ValidationError{
				Field:   v.Name,
				Message: fmt.Sprintf("expected a string, got %T", raw),
			}
		}
		if v.Required && s == "" {
			return nil, &spec.ValidationError{
				Field:   v.Name,
				Message: "required variable is empty",
			}
		}
		if v.Pattern != "" {
			re, err := regexp.Compile(v.Pattern)
			if err != nil {
				return nil, &spec.ValidationError{
					Field:   v.Name,
					Message: fmt.Sprintf("invalid pattern: %v", err),
				}
			}
			if !re.MatchString(s) {
				return nil, &spec.ValidationError{
					Field:      v.Name,
					Message:    fmt.Sprintf("%q does not match pattern %s", s, v.Pattern),
				}
			}
		}
		return s, nil
	}
}
