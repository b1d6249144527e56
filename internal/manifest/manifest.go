// Package manifest persists the record of what a generation produced and
// from what inputs, enabling future updates. The manifest is the only
// long-lived state in the system; it is created at first generation, read
// and rewritten at every update, and never consulted by the generated
// project itself.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/petrelhq/petrel/internal/policy"
)

// SchemaVersion is the current manifest schema version. Bump it when the
// reconciliation algorithm needs a migration path for older projects.
const SchemaVersion = 1

// Dir is the metadata directory inside a generated project.
const Dir = ".petrel"

// FileName is the manifest file inside Dir.
const FileName = "manifest.yml"

// FileRecord captures one output path's state at the last (re)write.
type FileRecord struct {
	Hash     string          `yaml:"hash"`     // sha256 of the content last written
	Category policy.Category `yaml:"category"` // classification at last generation
}

// Manifest records template identity, the answers snapshot used, and a
// content hash per output path.
type Manifest struct {
	SchemaVersion int                   `yaml:"schemaVersion"`
	Template      string                `yaml:"template"`
	Revision      string                `yaml:"revision"`
	Answers       map[string]any        `yaml:"answers"`
	Files         map[string]FileRecord `yaml:"files"`
}

// New creates an empty manifest for a template at a revision.
func New(template, revision string, answers map[string]any) *Manifest {
	return &Manifest{
		SchemaVersion: SchemaVersion,
		Template:      template,
		Revision:      revision,
		Answers:       answers,
		Files:         make(map[string]FileRecord),
	}
}

// Path returns the manifest location for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, Dir, FileName)
}

// Load reads the manifest of a previously generated project.
func Load(projectDir string) (*Manifest, error) {
	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read project manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse project manifest: %w", err)
	}

	if m.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("manifest schema version %d is newer than supported version %d; upgrade petrel", m.SchemaVersion, SchemaVersion)
	}
	if m.Files == nil {
		m.Files = make(map[string]FileRecord)
	}

	return &m, nil
}

// Save writes the manifest. This is the single serialized step that
// finalizes a generation or update, performed once after all per-file
// decisions are known.
func (m *Manifest) Save(projectDir string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal project manifest: %w", err)
	}

	dir := filepath.Join(projectDir, Dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	return os.WriteFile(Path(projectDir), data, 0644)
}

// IsDowngrade reports whether moving to newRevision would downgrade the
// project relative to the recorded revision. Unparsable revisions are
// never treated as downgrades.
func (m *Manifest) IsDowngrade(newRevision string) bool {
	recorded, err := semver.NewVersion(m.Revision)
	if err != nil {
		return false
	}
	next, err := semver.NewVersion(newRevision)
	if err != nil {
		return false
	}
	return next.LessThan(recorded)
}
