package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otasync/otasync/internal/archive"
	"github.com/otasync/otasync/internal/fetch"
	"github.com/otasync/otasync/internal/update"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

// check probes and decides without mutating anything on disk.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether an update is available, without applying it",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromViper()
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true

			updater := update.New(cfg, fetch.New(), archive.ExtractZip)
			report, err := updater.Check(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch report.Decision {
			case update.UpdateAvailable:
				fmt.Fprintf(out, "%s %s %s\n", green("Update available:"), displayLocal(report.Local), cyan(report.Remote))
			default:
				fmt.Fprintln(out, green("Already up to date"), cyan(report.Remote))
			}

			return nil
		},
	}
}
