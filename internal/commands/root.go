package commands

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petrelhq/petrel"
	"github.com/petrelhq/petrel/internal/output"
)

var cfgFile string

// RootCmd creates and returns the root command for the Petrel CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "petrel",
		Short: "Parameterized project scaffolding with safe updates",
		Long: `Petrel generates projects from parameterized template packages and
keeps them updatable as templates evolve.

• Generate a project from a template with 'petrel new'
• Pull in template changes later with 'petrel update'
• User edits are never silently overwritten; divergence surfaces as
  explicit conflicts for you to resolve

Learn more: https://github.com/petrelhq/petrel`,
		Version: petrel.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			output.SetVerbose(verbose)
		},
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .petrel.yaml)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".petrel")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("PETREL")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
