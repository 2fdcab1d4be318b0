package main

import (
	"github.com/spf13/cobra"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Correction table commands",
}

var tablesShowCmd = &cobra.Command{
	Use:   "show <fix|normalize>",
	Short: "Print the effective correction table",
	Long: `Print the correction table a pass would use: the configured tables_file
when set, otherwise the built-in table. Null values mark removals.

Examples:
  worknorm tables show fix
  worknorm tables show normalize -o json`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"fix", "normalize"},
	RunE: func(cmd *cobra.Command, args []string) error {
		policy, err := parsePolicy(args[0])
		if err != nil {
			return err
		}
		mgr, _, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := mgr.Get().Table(policy)
		if err != nil {
			return err
		}
		return render(cmd, table)
	},
}

func init() {
	tablesCmd.AddCommand(tablesShowCmd)
	rootCmd.AddCommand(tablesCmd)
}
