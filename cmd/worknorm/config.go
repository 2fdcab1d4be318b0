package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/worknorm/internal/config"
	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/home"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config and table files to the home directory",
	Long: `Write config.yaml and the built-in correction tables to the home directory.

The tables are written to tables/fix.json and tables/normalize.json and the
config points at them, so they can be edited in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if h.ConfigExists() && !configForce {
			return fmt.Errorf("config already exists at %s (use --force to overwrite)", h.ConfigPath())
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}

		cfg := config.DefaultConfig()
		for _, policy := range []correct.Policy{correct.PolicyExact, correct.PolicyNormalized} {
			path := h.TableFile(policy)
			if err := correct.WriteTableFile(path, correct.DefaultTable(policy)); err != nil {
				return fmt.Errorf("failed to write %s table: %w", policy, err)
			}
		}
		cfg.Fix.TablesFile = h.TableFile(correct.PolicyExact)
		cfg.Normalize.TablesFile = h.TableFile(correct.PolicyNormalized)

		if err := config.WriteDefault(h.ConfigPath(), cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", h.ConfigPath())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		return render(cmd, mgr.Get())
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
