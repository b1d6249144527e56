package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petrelhq/petrel/internal/config"
	"github.com/petrelhq/petrel/internal/diff"
	"github.com/petrelhq/petrel/internal/manifest"
	"github.com/petrelhq/petrel/internal/output"
	"github.com/petrelhq/petrel/internal/project"
	"github.com/petrelhq/petrel/internal/reconcile"
	"github.com/petrelhq/petrel/internal/spec"
)

// UpdateCmd creates and returns the 'update' command for reconciling a
// generated project with a newer template revision
func UpdateCmd() *cobra.Command {
	var (
		templateDir    string
		answersFile    string
		sets           []string
		onConflict     string
		workers        int
		dryRun         bool
		noInput        bool
		allowDowngrade bool
		showDiff       bool
	)

	cmd := &cobra.Command{
		Use:   "update [directory]",
		Short: "Update a generated project from its template",
		Long: `Re-renders the template against a previously generated project and
reconciles each file three ways: what was generated last time, what the
template produces now, and what is on disk.

Your edits are never overwritten. When both you and the template changed
a file, the divergence surfaces as a conflict: by default the new render
lands next to your file as <path>.incoming; with --on-conflict markers
the file is rewritten with diff-style conflict markers instead.

Example:
  petrel update myapp --template ./templates/webapp`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			projectDir := args[0]

			cfg := config.Load()
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Workers
			}
			if !cmd.Flags().Changed("on-conflict") {
				onConflict = cfg.OnConflict
			}

			style, err := reconcile.ParseConflictStyle(onConflict)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			answers, err := collectAnswers(answersFile, sets)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			// Prompt only for variables added since the last run.
			man, err := manifest.Load(projectDir)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			tmpl, err := spec.Load(templateDir)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if err := promptMissing(tmpl, answers, man.Answers, noInput); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			output.Verbose(fmt.Sprintf("Updating %s from %s@%s (recorded %s)", projectDir, tmpl.Name, tmpl.Revision, man.Revision))

			res, err := project.New().Update(cmd.Context(), project.UpdateOptions{
				ProjectDir:     projectDir,
				TemplateDir:    templateDir,
				Answers:        answers,
				ConflictStyle:  style,
				Workers:        workers,
				DryRun:         dryRun,
				AllowDowngrade: allowDowngrade,
			})
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			reportResult(res, dryRun)
			if showDiff && !dryRun && style == reconcile.SideFile {
				showConflictDiffs(projectDir, res)
			}

			switch res.Status {
			case project.Failure:
				os.Exit(1)
			case project.SuccessWithConflicts:
				output.Warning(fmt.Sprintf("Updated with %d conflict(s); resolve them and delete the %s files", len(res.Conflicts), reconcile.SideFileSuffix))
			default:
				if !dryRun {
					output.Success(fmt.Sprintf("Updated %s to %s@%s", projectDir, tmpl.Name, tmpl.Revision))
				}
			}
		},
	}

	cmd.Flags().StringVarP(&templateDir, "template", "t", "", "Template package directory (required)")
	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML file of variable answers")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a variable answer (name=value, repeatable)")
	cmd.Flags().StringVar(&onConflict, "on-conflict", "", "Conflict style: side-file or markers (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Render workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; fail on missing required answers")
	cmd.Flags().BoolVar(&allowDowngrade, "allow-downgrade", false, "Allow updating to an older template revision")
	cmd.Flags().BoolVar(&showDiff, "show-diff", false, "Print a unified diff for each conflict")
	cmd.MarkFlagRequired("template")

	return cmd
}

// showConflictDiffs prints local-versus-incoming diffs for side-file
// conflicts, reading both versions back from disk.
func showConflictDiffs(projectDir string, res *project.Result) {
	gen := diff.NewGenerator()
	for _, c := range res.Conflicts {
		local := filepath.Join(projectDir, filepath.FromSlash(c.Path))
		incoming := local + reconcile.SideFileSuffix

		localData, err := os.ReadFile(local)
		if err != nil {
			continue
		}
		incomingData, err := os.ReadFile(incoming)
		if err != nil {
			continue
		}
		fmt.Println(gen.Unified(c.Path, c.Path+reconcile.SideFileSuffix, localData, incomingData, nil))
	}
}
