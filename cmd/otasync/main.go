package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/otasync/otasync/internal/archive"
	"github.com/otasync/otasync/internal/config"
	"github.com/otasync/otasync/internal/fetch"
	"github.com/otasync/otasync/internal/update"
	"github.com/otasync/otasync/internal/version"
)

// exit codes: 0 success or up to date, 2 remote version unreachable or
// unparsable, 3 download/unpack/sync/commit failure, 1 anything else
const (
	exitOK          = 0
	exitUsage       = 1
	exitProbeFailed = 2
	exitSyncFailed  = 3
)

var (
	home, _ = os.UserHomeDir()

	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var rootCmd = &cobra.Command{
	Use:     "otasync",
	Short:   "OtaSync keeps an application payload directory in sync with a remote release",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := configFromViper()
		if err != nil {
			return err
		}

		cmd.SilenceUsage = true

		slog.Info("otasync", "version", version.Short())

		updater := update.New(cfg, fetch.New(), archive.ExtractZip)
		report, err := updater.Run(cmd.Context())
		if err != nil {
			return err
		}

		printReport(cmd, report)
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.PersistentFlags().StringP("target", "t", "", "payload directory to update")
	rootCmd.PersistentFlags().StringP("marker", "m", "", "local version marker file (default: VERSION next to the payload dir)")
	rootCmd.PersistentFlags().String("version-url", "", "remote version marker URL")
	rootCmd.PersistentFlags().String("archive-url", "", "remote release archive URL")
	rootCmd.PersistentFlags().String("changelog-url", "", "remote changelog URL (optional)")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
	rootCmd.Flags().Bool("keep-scratch", false, "keep the download scratch directory")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func main() {
	// Setup root context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(exitCode(err))
	}
}

func setupLogging() {
	level := slog.LevelInfo
	if viper.GetBool("debug") {
		level = slog.LevelDebug
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func loadConfig(cmd *cobra.Command) error {
	// config path
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".otasync"))
		viper.AddConfigPath(filepath.Join(home, ".config/otasync"))
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("payload_dir", cmd.Flags().Lookup("target"))
	viper.BindPFlag("marker_path", cmd.Flags().Lookup("marker"))
	viper.BindPFlag("version_url", cmd.Flags().Lookup("version-url"))
	viper.BindPFlag("archive_url", cmd.Flags().Lookup("archive-url"))
	viper.BindPFlag("changelog_url", cmd.Flags().Lookup("changelog-url"))
	viper.BindPFlag("debug", cmd.Flags().Lookup("debug"))
	if f := cmd.Flags().Lookup("keep-scratch"); f != nil {
		viper.BindPFlag("keep_scratch", f)
	}

	// Set up environment variables
	viper.SetEnvPrefix("OTASYNC")
	viper.AutomaticEnv()

	setupLogging()
	return nil
}

func configFromViper() (*config.Config, error) {
	cfg := &config.Config{
		Path:         viper.ConfigFileUsed(),
		PayloadDir:   viper.GetString("payload_dir"),
		MarkerPath:   viper.GetString("marker_path"),
		VersionURL:   viper.GetString("version_url"),
		ArchiveURL:   viper.GetString("archive_url"),
		ChangelogURL: viper.GetString("changelog_url"),
		KeepScratch:  viper.GetBool("keep_scratch"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func printReport(cmd *cobra.Command, report *update.Report) {
	out := cmd.OutOrStdout()

	if report.Decision == update.UpToDate {
		fmt.Fprintln(out, green("Already up to date"), cyan(report.Remote))
		return
	}

	fmt.Fprintf(out, "%s %s %s (%d files)\n", green("Updated"), displayLocal(report.Local), cyan(report.Remote), report.Copied)
	for _, line := range report.Changelog {
		fmt.Fprintln(out, " ", line)
	}
}

func displayLocal(raw string) string {
	if raw == "" {
		return "(none) ->"
	}
	return raw + " ->"
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var stage *update.StageError
	if !errors.As(err, &stage) {
		return exitUsage
	}

	switch stage.Stage {
	case update.StageProbe:
		return exitProbeFailed
	default:
		return exitSyncFailed
	}
}
