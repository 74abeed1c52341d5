package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/otasync/otasync/internal/config"
)

func init() {
	rootCmd.AddCommand(newInitCmd())
}

// init writes the resolved flags to the config file, so later runs only
// need `otasync`.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write an OtaSync config file from the given flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			if !force {
				if existing, err := config.Load(configPath); err == nil {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, "OtaSync already initialized (use --force to overwrite)")
					printConfig(cmd, existing)
					return nil
				}
			}

			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}

			cmd.SilenceUsage = true

			if err := cfg.Save(configPath); err != nil {
				return err
			}
			cfg.Path = configPath

			fmt.Fprintln(cmd.OutOrStdout(), "OtaSync initialized")
			printConfig(cmd, cfg)
			return nil
		},
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}

func configFromFlags(cmd *cobra.Command) (*config.Config, error) {
	payloadDir, _ := cmd.Flags().GetString("target")
	markerPath, _ := cmd.Flags().GetString("marker")
	versionURL, _ := cmd.Flags().GetString("version-url")
	archiveURL, _ := cmd.Flags().GetString("archive-url")
	changelogURL, _ := cmd.Flags().GetString("changelog-url")

	cfg := &config.Config{
		PayloadDir:   payloadDir,
		MarkerPath:   markerPath,
		VersionURL:   versionURL,
		ArchiveURL:   archiveURL,
		ChangelogURL: changelogURL,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printConfig(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config Path: %s\n", green(cfg.Path))
	fmt.Fprintf(out, "Payload Dir: %s\n", cyan(cfg.PayloadDir))
	fmt.Fprintf(out, "Marker:      %s\n", cyan(cfg.MarkerPath))
	fmt.Fprintf(out, "Version URL: %s\n", cyan(cfg.VersionURL))
	fmt.Fprintf(out, "Archive URL: %s\n", cyan(cfg.ArchiveURL))
}
