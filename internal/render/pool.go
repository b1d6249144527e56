package render

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/petrelhq/petrel/internal/policy"
)

// Job is one file entry to render: a path expression plus a content template,
// already filtered for inclusion.
type Job struct {
	Source   string // template-relative source path, for error messages
	PathExpr string // output path expression
	Content  string // content template
	Category policy.Category
}

// RenderedFile is the in-memory result of rendering one included entry.
// It exists only in memory until the orchestrator commits.
type RenderedFile struct {
	Source   string
	Path     string
	Content  []byte
	Category policy.Category
}

type renderResult struct {
	file RenderedFile
	err  error
}

// RenderAll renders every job on a bounded worker pool. Workers only read
// the shared answer environment, so no coordination beyond the job and
// result channels is needed. Results are sorted by output path, making the
// output independent of scheduling order.
//
// Any single failure aborts the whole set: RenderAll returns the first error
// in source order and no partial results.
func (r *Renderer) RenderAll(ctx context.Context, jobs []Job, answers map[string]any, workers int) ([]RenderedFile, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobCh := make(chan Job, len(jobs))
	results := make(chan renderResult, len(jobs))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go r.renderWorker(ctx, jobCh, results, answers, &wg)
	}

	go func() {
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				close(jobCh)
				return
			case jobCh <- job:
			}
		}
		close(jobCh)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	files := make([]RenderedFile, 0, len(jobs))
	var failures []renderResult
	for res := range results {
		if res.err != nil {
			failures = append(failures, res)
			continue
		}
		files = append(files, res.file)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(failures) > 0 {
		// Deterministic error selection irrespective of scheduling.
		sort.Slice(failures, func(i, j int) bool {
			return failures[i].file.Source < failures[j].file.Source
		})
		return nil, failures[0].err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if err := checkCollisions(files); err != nil {
		return nil, err
	}

	return files, nil
}

func (r *Renderer) renderWorker(ctx context.Context, jobs <-chan Job, results chan<- renderResult, answers map[string]any, wg *sync.WaitGroup) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outPath, err := r.RenderPath(job.PathExpr, answers)
		if err != nil {
			err = retarget(err, job.Source)
			results <- renderResult{file: RenderedFile{Source: job.Source}, err: err}
			continue
		}

		content, err := r.RenderContent(job.Source, job.Content, answers)
		if err != nil {
			err = retarget(err, job.Source)
			results <- renderResult{file: RenderedFile{Source: job.Source}, err: err}
			continue
		}

		results <- renderResult{file: RenderedFile{
			Source:   job.Source,
			Path:     outPath,
			Content:  content,
			Category: job.Category,
		}}
	}
}

// retarget points a MissingVariableError at the entry's source path instead
// of the internal template cache name.
func retarget(err error, source string) error {
	if missing, ok := err.(*MissingVariableError); ok {
		return &MissingVariableError{Var: missing.Var, Path: source}
	}
	return err
}

// checkCollisions enforces output-path uniqueness across the included set.
// Files arrive sorted by path, so duplicates are adjacent.
func checkCollisions(files []RenderedFile) error {
	for i := 1; i < len(files); i++ {
		if files[i].Path == files[i-1].Path {
			sources := []string{files[i-1].Source, files[i].Source}
			for j := i + 1; j < len(files) && files[j].Path == files[i].Path; j++ {
				sources = append(sources, files[j].Source)
			}
			return &PathCollisionError{Path: files[i].Path, Sources: sources}
		}
	}
	return nil
}
