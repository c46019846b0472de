package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/helmup/helmup/pkg/helmup"
	"github.com/spf13/cobra"
)

// RootCmd is the root command for helmup
var RootCmd = &cobra.Command{
	Use:   "helmup",
	Short: "Update Helm chart dependency versions and values",
	Long: `helmup updates Helm chart dependency versions and applies version-gated
key changes to the companion values files.

It reads a configuration file that lists, per dependency: the allowed
version range, the version to update to, and a set of values.yaml changes
(add, remove, rename) that only apply once the chart has reached a given
minimum version. Chart files are discovered recursively under the
configured roots and processed one at a time.

Example:
  helmup -f ./version_changes.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("file")
		verbose, _ := cmd.Flags().GetBool("verbose")
		quiet, _ := cmd.Flags().GetBool("quiet")
		logFile, _ := cmd.Flags().GetString("log-file")

		if err := setupLogging(verbose, quiet, logFile); err != nil {
			return err
		}
		return run(configPath)
	},
	Version: helmup.Version,
}

func init() {
	RootCmd.Flags().StringP("file", "f", "./version_changes.yaml", "path of the file that contains the version changes")
	RootCmd.Flags().BoolP("verbose", "v", false, "print debug logs, overrides --quiet")
	RootCmd.Flags().BoolP("quiet", "q", false, "do not print info logs")
	RootCmd.Flags().String("log-file", "", "path to the log file, logging to file is disabled when unset")
	RootCmd.SetVersionTemplate(`{{.Version}}
`)

	RootCmd.Example = `  # Apply the default ./version_changes.yaml
  helmup

  # Apply a specific changes file with debug output
  helmup -v -f ./migrations/6.0.0.yaml

  # Show version
  helmup --version`
}

// setupLogging installs the default slog handler. Verbose wins over
// quiet; a log file tees the same handler output.
func setupLogging(verbose, quiet bool, logFile string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if quiet {
		level = slog.LevelWarn
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if logFile != "" {
		logger.Info("logging to file", "path", logFile)
	}
	return nil
}

func run(configPath string) error {
	cfg, err := helmup.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := helmup.NewRunner(cfg).Run(); err != nil {
		return fmt.Errorf("error applying changes: %w", err)
	}
	return nil
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
