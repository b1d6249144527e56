package commands

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petrelhq/petrel/internal/input"
	"github.com/petrelhq/petrel/internal/output"
	"github.com/petrelhq/petrel/internal/project"
	"github.com/petrelhq/petrel/internal/spec"
)

// collectAnswers merges an answers file with --set overrides. --set values
// stay strings; the resolver coerces them against the declared types.
func collectAnswers(answersFile string, sets []string) (map[string]any, error) {
	answers := make(map[string]any)

	if answersFile != "" {
		data, err := os.ReadFile(answersFile)
		if err != nil {
			return nil, fmt.Errorf("reading answers file: %w", err)
		}
		if err := yaml.Unmarshal(data, &answers); err != nil {
			return nil, fmt.Errorf("parsing answers file: %w", err)
		}
	}

	for _, kv := range sets {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (want name=value)", kv)
		}
		answers[name] = value
	}

	return answers, nil
}

// promptMissing asks interactively for every non-derived variable that has
// no answer yet, no recorded answer from a previous run, and no default.
// With prompting disabled, a missing required variable is an error.
func promptMissing(tmpl *spec.Template, answers map[string]any, recorded map[string]any, noInput bool) error {
	for _, v := range tmpl.Vars {
		if v.Derive != "" {
			continue
		}
		if _, ok := answers[v.Name]; ok {
			continue
		}
		if _, ok := recorded[v.Name]; ok {
			continue
		}
		if v.Default != nil {
			continue
		}
		if noInput {
			if v.Required {
				return fmt.Errorf("no answer for required variable %q and prompts are disabled", v.Name)
			}
			continue
		}

		label := v.Prompt
		if label == "" {
			label = v.Name
		}
		switch v.Type {
		case spec.TypeBool:
			answers[v.Name] = input.Confirm(label, false)
		case spec.TypeEnum:
			answers[v.Name] = input.Select(label, v.Options, "")
		default:
			answers[v.Name] = input.Prompt(label, "")
		}
	}
	return nil
}

// reportResult prints the run outcome. Conflicts and per-path failures are
// listed individually; everything else is summarized.
func reportResult(res *project.Result, dryRun bool) {
	if dryRun {
		output.Info(fmt.Sprintf("Dry run: %d file(s) would be written, %d skipped", len(res.Written), len(res.Skipped)))
	} else {
		output.Info(fmt.Sprintf("%d file(s) written, %d skipped", len(res.Written), len(res.Skipped)))
	}

	for _, path := range res.Orphaned {
		output.Warning(fmt.Sprintf("Orphaned: %s (no longer produced by the template, left on disk)", path))
	}
	for _, c := range res.Conflicts {
		output.Warning(c.String())
	}
	for path, err := range res.Failed {
		output.Error(fmt.Sprintf("Failed: %s: %v", path, err))
	}
}
