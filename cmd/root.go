package cmd

import (
	"os"

	"github.com/josephlewis42/pipesh/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	commandLine string

	// exitCode is the status the process ends with once the root command
	// returns.
	exitCode int
)

func loadConfig() (*config.Configuration, error) {
	return config.Load(cfgPath)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pipesh [SCRIPT]",
	Short: "A small shell for pipelines of simple commands",
	Long: `pipesh reads command lines from a terminal, a script or -c and runs them
as pipelines of builtins and external programs with file redirections.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		status, err := runShell(cmd, args)
		if err != nil {
			return err
		}
		exitCode = status
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
	os.Exit(exitCode)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultDir(), "config path")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "run the given command line and exit")
}
