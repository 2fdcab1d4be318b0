package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/worknorm/internal/config"
	"github.com/jackzampolin/worknorm/internal/normalizer"
	"github.com/jackzampolin/worknorm/internal/watch"
)

var watchFlags passFlags

var watchCmd = &cobra.Command{
	Use:   "watch <fix|normalize> [dataset]",
	Short: "Re-run a pass whenever its config or table file changes",
	Long: `Run a pass once, then again every time the config file or the pass's
table file changes, until interrupted.

Passes are idempotent, so re-running after an unrelated edit leaves the
dataset as it was. A reload that fails (for example while an editor is
halfway through saving) is retried a few times before it is reported.

Examples:
  worknorm watch fix
  worknorm watch normalize data/works.json`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"fix", "normalize"},
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := parsePolicy(args[0])
		if err != nil {
			return err
		}
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}

		runner, err := watch.New(watch.Config{
			Files:           []string{mgr.Get().TablesFile(policy)},
			Logger:          logger,
			ExternalTrigger: mgr.ConfigFile() != "",
			Reload: func(ctx context.Context) error {
				cfg := watchFlags.apply(cmd, mgr.Get(), args[1:])
				rep, err := normalizer.Run(ctx, cfg, normalizer.Options{
					Policy: policy,
					DryRun: watchFlags.dryRun,
					Logger: logger,
				})
				if err != nil {
					return err
				}
				return render(cmd, rep)
			},
		})
		if err != nil {
			return err
		}

		if mgr.ConfigFile() != "" {
			mgr.OnChange(func(cfg *config.Config) {
				if err := runner.SetFiles([]string{cfg.TablesFile(policy)}); err != nil {
					logger.Warn("failed to update watched table file", "error", err)
				}
				runner.Trigger()
			})
			mgr.WatchConfig()
		}

		err = runner.Run(cmd.Context())
		if errors.Is(err, watch.ErrNothingToWatch) {
			return fmt.Errorf("%w: no config file and the built-in %s table is in use", err, policy)
		}
		return err
	},
}

func init() {
	watchFlags.register(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
