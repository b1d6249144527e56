// Package project orchestrates generation and update runs: load the
// template package, resolve answers, filter and render entries, reconcile
// against the project on disk, commit the writes, and persist the manifest.
//
// The pipeline is strict about ordering failures: everything up to the
// commit phase is all-or-nothing in memory, while the commit phase itself
// degrades per path and reports every failure instead of stopping at the
// first one.
package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/petrelhq/petrel/internal/answers"
	"github.com/petrelhq/petrel/internal/generator"
	"github.com/petrelhq/petrel/internal/manifest"
	"github.com/petrelhq/petrel/internal/policy"
	"github.com/petrelhq/petrel/internal/reconcile"
	"github.com/petrelhq/petrel/internal/render"
	"github.com/petrelhq/petrel/internal/spec"
)

// GenerateOptions configures a fresh generation run.
type GenerateOptions struct {
	TemplateDir string
	OutputDir   string
	Answers     map[string]any
	Workers     int
	DryRun      bool
	Out         io.Writer // progress output; defaults to os.Stdout
}

// UpdateOptions configures an update of a previously generated project.
type UpdateOptions struct {
	ProjectDir     string
	TemplateDir    string
	Answers        map[string]any // overrides and answers for newly added variables
	ConflictStyle  reconcile.ConflictStyle
	Workers        int
	DryRun         bool
	AllowDowngrade bool
	Out            io.Writer
}

// Orchestrator runs generations and updates. It is stateless between runs
// apart from the renderer's parsed-template cache.
type Orchestrator struct {
	renderer *render.Renderer
}

func New() *Orchestrator {
	return &Orchestrator{renderer: render.NewRenderer()}
}

// Generate performs a fresh generation into opts.OutputDir and writes the
// project manifest. Files already present at ProtectedOnce paths are left
// untouched and reported as skipped; such paths are not recorded in the
// manifest, because their content was never ours.
func (o *Orchestrator) Generate(ctx context.Context, opts GenerateOptions) (*Result, error) {
	tmpl, set, files, err := o.renderPhase(ctx, opts.TemplateDir, opts.Answers, opts.Workers)
	if err != nil {
		return nil, err
	}

	res := newResult()
	man := manifest.New(tmpl.Name, tmpl.Revision, set.Map())

	var ops []generator.Operation
	relOf := make(map[string]string) // write target -> manifest path
	for _, f := range files {
		target := filepath.Join(opts.OutputDir, filepath.FromSlash(f.Path))
		if f.Category == policy.ProtectedOnce {
			if _, statErr := os.Stat(target); statErr == nil {
				res.Skipped = append(res.Skipped, f.Path)
				continue
			}
		}
		ops = append(ops, &generator.WriteFileOp{Path: target, Content: f.Content, Mode: 0644})
		relOf[target] = f.Path
		man.Files[f.Path] = manifest.FileRecord{Hash: reconcile.Hash(f.Content), Category: f.Category}
	}

	failed := generator.Execute(ctx, ops, generator.ExecuteOptions{DryRun: opts.DryRun, Writer: opts.Out})
	for target, ferr := range failed {
		rel := relOf[target]
		res.Failed[rel] = ferr
		delete(man.Files, rel)
	}
	for target, rel := range relOf {
		if _, bad := failed[target]; !bad {
			res.Written = append(res.Written, rel)
		}
	}
	sort.Strings(res.Written)
	sort.Strings(res.Skipped)

	if !opts.DryRun {
		if err := man.Save(opts.OutputDir); err != nil {
			return nil, err
		}
	}

	res.finalize()
	return res, nil
}

// Update re-renders the template against a previously generated project and
// reconciles each file three ways. Conflicts are surfaced, never merged,
// and never abort the run. The manifest is rewritten once at the end from
// the per-file decisions.
func (o *Orchestrator) Update(ctx context.Context, opts UpdateOptions) (*Result, error) {
	man, err := manifest.Load(opts.ProjectDir)
	if err != nil {
		return nil, err
	}

	tmpl, err := spec.Load(opts.TemplateDir)
	if err != nil {
		return nil, err
	}
	if !opts.AllowDowngrade && man.IsDowngrade(tmpl.Revision) {
		return nil, fmt.Errorf("template revision %s is older than the project's recorded revision %s; pass --allow-downgrade to proceed", tmpl.Revision, man.Revision)
	}

	// Recorded answers seed the resolution; variables since removed from
	// the template are silently dropped rather than rejected as undeclared.
	merged := make(map[string]any)
	for name, val := range man.Answers {
		if _, ok := tmpl.Variable(name); ok {
			merged[name] = val
		}
	}
	for name, val := range opts.Answers {
		merged[name] = val
	}

	set, err := answers.NewResolver(tmpl).Resolve(merged)
	if err != nil {
		return nil, err
	}
	files, err := o.renderEntries(ctx, tmpl, set.Map(), opts.Workers)
	if err != nil {
		return nil, err
	}

	res := newResult()
	next := manifest.New(tmpl.Name, tmpl.Revision, set.Map())

	var ops []generator.Operation
	relOf := make(map[string]string)
	rendered := make(map[string]bool, len(files))

	for _, f := range files {
		rendered[f.Path] = true
		old, recorded := man.Files[f.Path]

		in := reconcile.Input{
			Path:         f.Path,
			Category:     f.Category,
			NewContent:   f.Content,
			RecordedHash: old.Hash,
		}
		target := filepath.Join(opts.ProjectDir, filepath.FromSlash(f.Path))
		if disk, readErr := os.ReadFile(target); readErr == nil {
			in.DiskContent = disk
			in.OnDisk = true
		}

		dec := reconcile.Reconcile(in, opts.ConflictStyle)

		if dec.WritePath != "" {
			wt := filepath.Join(opts.ProjectDir, filepath.FromSlash(dec.WritePath))
			ops = append(ops, &generator.WriteFileOp{Path: wt, Content: dec.WriteContent, Mode: 0644})
			relOf[wt] = f.Path
		}

		switch dec.Action {
		case reconcile.Write:
			res.Written = append(res.Written, f.Path)
			next.Files[f.Path] = manifest.FileRecord{Hash: dec.NewHash, Category: f.Category}
		case reconcile.Noop:
			next.Files[f.Path] = manifest.FileRecord{Hash: dec.NewHash, Category: f.Category}
		case reconcile.Keep:
			// User content stands; the recorded baseline must not move.
			res.Skipped = append(res.Skipped, f.Path)
			next.Files[f.Path] = manifest.FileRecord{Hash: old.Hash, Category: f.Category}
		case reconcile.Skip:
			// Deliberately deleted by the user. Keep the record so the
			// next update does not resurrect the file.
			res.Skipped = append(res.Skipped, f.Path)
			next.Files[f.Path] = old
		case reconcile.Conflict:
			res.Conflicts = append(res.Conflicts, *dec.Record)
			if recorded {
				next.Files[f.Path] = manifest.FileRecord{Hash: old.Hash, Category: f.Category}
			}
		}
	}

	// Recorded paths the template no longer produces are orphans: dropped
	// from the manifest, left on disk for the user to remove.
	for path := range man.Files {
		if !rendered[path] {
			res.Orphaned = append(res.Orphaned, path)
		}
	}
	sort.Strings(res.Orphaned)

	failed := generator.Execute(ctx, ops, generator.ExecuteOptions{DryRun: opts.DryRun, Writer: opts.Out})
	for wt, ferr := range failed {
		rel := relOf[wt]
		res.Failed[rel] = ferr
		// The write did not land, so the refreshed record is a lie;
		// fall back to the previous record if there was one.
		if old, ok := man.Files[rel]; ok {
			next.Files[rel] = old
		} else {
			delete(next.Files, rel)
		}
	}
	res.Written = pruneFailed(res.Written, res.Failed)
	sort.Strings(res.Written)
	sort.Strings(res.Skipped)

	if !opts.DryRun {
		if err := next.Save(opts.ProjectDir); err != nil {
			return nil, err
		}
	}

	res.finalize()
	return res, nil
}

// renderPhase loads a template, resolves answers, and renders every
// included entry. Nothing here touches the output directory.
func (o *Orchestrator) renderPhase(ctx context.Context, templateDir string, raw map[string]any, workers int) (*spec.Template, *answers.AnswerSet, []render.RenderedFile, error) {
	tmpl, err := spec.Load(templateDir)
	if err != nil {
		return nil, nil, nil, err
	}
	set, err := answers.NewResolver(tmpl).Resolve(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	files, err := o.renderEntries(ctx, tmpl, set.Map(), workers)
	if err != nil {
		return nil, nil, nil, err
	}
	return tmpl, set, files, nil
}

// renderEntries filters entries by condition and category, then renders
// the survivors in parallel. Never files carry no payload beyond their
// exclusion and are dropped before rendering.
func (o *Orchestrator) renderEntries(ctx context.Context, tmpl *spec.Template, env map[string]any, workers int) ([]render.RenderedFile, error) {
	var jobs []render.Job
	for _, e := range tmpl.Entries {
		if e.Category == policy.Never {
			continue
		}
		if e.Condition != nil && !e.Condition.Eval(env) {
			continue
		}
		jobs = append(jobs, render.Job{
			Source:   e.Path,
			PathExpr: e.Path,
			Content:  e.Content,
			Category: e.Category,
		})
	}
	return o.renderer.RenderAll(ctx, jobs, env, workers)
}

func pruneFailed(paths []string, failed map[string]error) []string {
	kept := paths[:0]
	for _, p := range paths {
		if _, bad := failed[p]; !bad {
			kept = append(kept, p)
		}
	}
	return kept
}
