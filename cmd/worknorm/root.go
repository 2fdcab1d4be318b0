package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/worknorm/internal/config"
	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/home"
	"github.com/jackzampolin/worknorm/internal/report"
	"github.com/jackzampolin/worknorm/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "worknorm",
	Short: "Correct category and emotion values in a works dataset",
	Long: `worknorm loads a JSON array of works, corrects the values of their
category and emotion arrays against a correction table, prints a report and
writes the dataset back in place.

Two passes are available:
  - fix:       exact-match table of known typos; can also remove values
  - normalize: case- and whitespace-insensitive match onto canonical names

Both passes are idempotent: running one twice changes nothing the second time.`,
	Version:      version.GitRelease,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.worknorm/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "worknorm home directory (default: ~/.worknorm)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "text", "output format: text, yaml or json",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "info", "log level: debug, info, warn or error",
	)

	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the command logger. Logs go to stderr so stdout carries only the report.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})), nil
}

// loadConfig resolves the home directory and loads configuration from it.
func loadConfig() (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, err
	}
	return mgr, h, nil
}

// render writes data to stdout in the --output format.
func render(cmd *cobra.Command, data any) error {
	format, err := report.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return report.Write(cmd.OutOrStdout(), format, data)
}

// parsePolicy accepts a command name (fix, normalize) or a policy name (exact, normalized).
func parsePolicy(s string) (correct.Policy, error) {
	switch s {
	case "fix":
		return correct.PolicyExact, nil
	case "normalize":
		return correct.PolicyNormalized, nil
	default:
		return correct.ParsePolicy(s)
	}
}
