package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrelhq/petrel/internal/config"
	"github.com/petrelhq/petrel/internal/manifest"
	"github.com/petrelhq/petrel/internal/output"
	"github.com/petrelhq/petrel/internal/project"
	"github.com/petrelhq/petrel/internal/spec"
)

// NewCmd creates and returns the 'new' command for generating projects
func NewCmd() *cobra.Command {
	var (
		templateDir string
		answersFile string
		sets        []string
		workers     int
		dryRun      bool
		noInput     bool
	)

	cmd := &cobra.Command{
		Use:   "new [directory]",
		Short: "Generate a project from a template package",
		Long: `Generates a project into [directory] from a template package.

Answers for template variables come from --answers and --set; anything
still missing is prompted for interactively. A manifest is written into
the project so it can later be updated with 'petrel update'.

Example:
  petrel new myapp --template ./templates/webapp --set project=myapp`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			outputDir := args[0]

			if !cmd.Flags().Changed("workers") {
				workers = config.Load().Workers
			}

			if _, err := os.Stat(manifest.Path(outputDir)); err == nil {
				output.Error(fmt.Sprintf("%s already holds a generated project; use 'petrel update'", outputDir))
				os.Exit(1)
			}

			answers, err := collectAnswers(answersFile, sets)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			tmpl, err := spec.Load(templateDir)
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}
			if err := promptMissing(tmpl, answers, nil, noInput); err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			output.Verbose(fmt.Sprintf("Generating %s from template %s", outputDir, tmpl.Name))

			res, err := project.New().Generate(cmd.Context(), project.GenerateOptions{
				TemplateDir: templateDir,
				OutputDir:   outputDir,
				Answers:     answers,
				Workers:     workers,
				DryRun:      dryRun,
			})
			if err != nil {
				output.Error(err.Error())
				os.Exit(1)
			}

			reportResult(res, dryRun)
			if res.Status == project.Failure {
				os.Exit(1)
			}
			if dryRun {
				return
			}

			output.Success(fmt.Sprintf("Generated %s from %s@%s", outputDir, tmpl.Name, tmpl.Revision))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("cd %s", outputDir))
			output.Step("petrel update .  # Later, after the template evolves")
		},
	}

	cmd.Flags().StringVarP(&templateDir, "template", "t", "", "Template package directory (required)")
	cmd.Flags().StringVarP(&answersFile, "answers", "a", "", "YAML file of variable answers")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Set a variable answer (name=value, repeatable)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Render workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be written without writing")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; fail on missing required answers")
	cmd.MarkFlagRequired("template")

	return cmd
}
