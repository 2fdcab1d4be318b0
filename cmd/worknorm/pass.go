package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/worknorm/internal/config"
	"github.com/jackzampolin/worknorm/internal/correct"
	"github.com/jackzampolin/worknorm/internal/normalizer"
)

// passFlags are the flags shared by fix, normalize and watch.
type passFlags struct {
	dryRun bool
	atomic bool
}

func (f *passFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "report changes without writing the dataset")
	cmd.Flags().BoolVar(&f.atomic, "atomic", true, "write through a temporary file and rename it over the dataset")
}

// apply returns a copy of cfg with command-line overrides applied.
func (f *passFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) *config.Config {
	out := *cfg
	if len(args) > 0 {
		out.Dataset = args[0]
	}
	if cmd.Flags().Changed("atomic") {
		out.AtomicWrite = f.atomic
	}
	return &out
}

func newPassCmd(policy correct.Policy, use, short, long string) *cobra.Command {
	var flags passFlags
	cmd := &cobra.Command{
		Use:   use + " [dataset]",
		Short: short,
		Long:  long,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			mgr, _, err := loadConfig()
			if err != nil {
				return err
			}

			cfg := flags.apply(cmd, mgr.Get(), args)
			rep, err := normalizer.Run(cmd.Context(), cfg, normalizer.Options{
				Policy: policy,
				DryRun: flags.dryRun,
				Logger: logger,
			})
			if err != nil {
				return err
			}
			return render(cmd, rep)
		},
	}
	flags.register(cmd)
	return cmd
}

var fixCmd = newPassCmd(correct.PolicyExact, "fix",
	"Fix known typos with the exact-match table",
	`Fix known typos in the category and emotion arrays of every work.

Each value is looked up literally in the fix table. A string entry replaces
the value in place; a null entry removes it from the array. Values with no
entry are left untouched. The report lists per-field counts of replacements
and removals, followed by the ten most frequent values of each field.

Examples:
  worknorm fix                        # dataset from config
  worknorm fix data/works.json        # explicit dataset
  worknorm fix --dry-run -o json      # report only, as JSON`)

var normalizeCmd = newPassCmd(correct.PolicyNormalized, "normalize",
	"Fold case and spacing variants onto canonical names",
	`Normalize category and emotion names in every work.

Each value is lowercased and trimmed before lookup in the normalize table. On
a match the value is replaced by the table's canonical form; otherwise the
original value is kept exactly as it was. The report lists every work whose
fields changed, followed by the ten most frequent values of each field.

Examples:
  worknorm normalize
  worknorm normalize --dry-run
  WORKNORM_NORMALIZE_FOLD_UNICODE=true worknorm normalize`)

func init() {
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(normalizeCmd)
}
