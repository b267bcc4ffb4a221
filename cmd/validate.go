package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jaccxc/hookline/internal/hooks"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the hook rule tables",
	Long: `Validate loads every configured hook file, parses all matcher expressions,
and checks each rule's commands. Errors are reported with their file and
rule position; a table with any invalid rule fails to load entirely.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadRuleTable()
		if err != nil {
			return err
		}

		for _, event := range hooks.AllEvents {
			if n := len(table.Hooks[event]); n > 0 {
				fmt.Fprintf(os.Stdout, "%s: %d rule(s)\n", event, n)
			}
		}
		fmt.Fprintf(os.Stdout, "configuration valid: %d rule(s) loaded\n", table.RuleCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
