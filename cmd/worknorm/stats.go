package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/worknorm/internal/normalizer"
)

var statsTop int

var statsCmd = &cobra.Command{
	Use:   "stats [dataset]",
	Short: "Show the most frequent values of each field",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}

		cfg := *mgr.Get()
		if len(args) > 0 {
			cfg.Dataset = args[0]
		}
		if cmd.Flags().Changed("top") {
			cfg.TopN = statsTop
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		rep, err := normalizer.Stats(&cfg)
		if err != nil {
			return err
		}
		return render(cmd, rep)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of values to show per field")
	rootCmd.AddCommand(statsCmd)
}
