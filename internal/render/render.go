// Package render turns file entries into concrete paths and byte content.
//
// Rendering is a pure transformation of templates plus an immutable answer
// environment into in-memory results. Nothing here touches the filesystem,
// which is what makes the orchestrator's all-or-nothing commit possible.
package render

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"sync"
	"text/template"
)

// Renderer handles template parsing and rendering with caching.
// Safe for concurrent use by rendering workers.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex // Protect cache for concurrent access
}

// NewRenderer creates a renderer with built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderContent renders a content template against the answer environment.
// The name is used for caching and error messages. Any reference to a
// variable absent from data is a MissingVariableError naming both the
// variable and the offending entry.
func (r *Renderer) RenderContent(name, templateStr string, data map[string]any) ([]byte, error) {
	tmpl, err := r.parse(name, templateStr)
	if err != nil {
		return nil, err
	}

	if err := r.checkReferences(tmpl, name, data); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", name, err)
	}
	return buf.Bytes(), nil
}

// RenderPath renders a path expression into a concrete, tree-relative path.
// Rendered paths are cleaned and must not escape the output tree or collapse
// to nothing; either is a template-authoring error.
func (r *Renderer) RenderPath(expr string, data map[string]any) (string, error) {
	rendered, err := r.RenderContent("path:"+expr, expr, data)
	if err != nil {
		return "", err
	}

	cleaned := path.Clean(strings.TrimSpace(string(rendered)))
	if cleaned == "" || cleaned == "." {
		return "", fmt.Errorf("path expression %q rendered to an empty path", expr)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") || path.IsAbs(cleaned) {
		return "", fmt.Errorf("path expression %q rendered outside the output tree: %q", expr, cleaned)
	}

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == "" {
			return "", fmt.Errorf("path expression %q rendered an empty segment: %q", expr, cleaned)
		}
	}

	return cleaned, nil
}

// ClearCache clears the template cache (useful for testing).
func (r *Renderer) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*template.Template)
}

// parse returns a cached parsed template, parsing and caching on first use.
func (r *Renderer) parse(name, templateStr string) (*template.Template, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return tmpl, nil
	}
	r.mu.RUnlock()

	tmpl, err := template.New(name).Funcs(r.funcMap).Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
	}

	r.mu.Lock()
	r.cache[name] = tmpl
	r.mu.Unlock()

	return tmpl, nil
}

// checkReferences verifies every variable referenced by the template exists
// in the answer environment, so missing references fail with a precise error
// instead of a generic execution failure.
func (r *Renderer) checkReferences(tmpl *template.Template, name string, data map[string]any) error {
	for _, ref := range referencesOf(tmpl) {
		if _, ok := data[ref]; !ok {
			return &MissingVariableError{Var: ref, Path: name}
		}
	}
	return nil
}
