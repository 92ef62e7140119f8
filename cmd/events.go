package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/josephlewis42/pipesh/core/logger"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Aliases: []string{"event"},
	Short:   "Explore the shell's event log.",
}

// reportCommand summarizes the event log
var reportCommand = &cobra.Command{
	Use:   "report",
	Short: "Summarize the commands, failures and statuses in the event log.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := cfg.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		report := &logger.Report{}
		if err := logger.ReadJSONLinesLog(fd, report.Update); err != nil {
			return err
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

// catEventsCommand prints every entry in the event log
var catEventsCommand = &cobra.Command{
	Use:   "cat",
	Short: "Print the event log one entry per line.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fd, err := cfg.ReadEventLog()
		if err != nil {
			return err
		}
		defer fd.Close()

		out := cmd.OutOrStdout()
		var writeErr error
		err = logger.ReadJSONLinesLog(fd, func(le *logger.LogEntry) {
			if writeErr != nil {
				return
			}
			line, err := json.Marshal(le)
			if err != nil {
				writeErr = err
				return
			}
			_, writeErr = fmt.Fprintln(out, string(line))
		})
		if err != nil {
			return err
		}
		return writeErr
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
	eventsCmd.AddCommand(catEventsCommand)
}
