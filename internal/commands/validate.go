package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/petrelhq/petrel/internal/output"
	"github.com/petrelhq/petrel/internal/spec"
)

// ValidateCmd creates and returns the 'validate' command for checking a
// template package without generating anything
func ValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [template-directory]",
		Short: "Validate a template package",
		Long: `Loads a template package and reports every structural problem at once:
manifest violations, undeclared variables in conditions or derivations,
and unparsable path or content templates.

Example:
  petrel validate ./templates/webapp`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			tmpl, err := spec.Load(args[0])
			if err != nil {
				var verrs spec.ValidationErrors
				if errors.As(err, &verrs) {
					for _, v := range verrs {
						output.Error(v.Error())
					}
				} else {
					output.Error(err.Error())
				}
				os.Exit(1)
			}

			output.Success(fmt.Sprintf("%s@%s is valid: %d variable(s), %d file(s)", tmpl.Name, tmpl.Revision, len(tmpl.Vars), len(tmpl.Entries)))
		},
	}

	return cmd
}
