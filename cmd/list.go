package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Jaccxc/hookline/internal/ui"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the merged hook rule table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadRuleTable()
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stdout, ui.NewRenderer().RuleTable(table))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
