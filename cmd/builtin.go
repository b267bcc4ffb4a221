package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Jaccxc/hookline/internal/builtin"
)

var builtinListFlag bool

var builtinCmd = &cobra.Command{
	Use:   "builtin [name]",
	Short: "Run a builtin hook program",
	Long: `Builtin runs one of the hook programs that ship with hookline. Builtins
follow the standard hook contract, so a rule table can reference them
directly:

  hooks:
    SessionStart:
      - matcher: "*"
        hooks:
          - command: hookline builtin session-start

Use --list to see what is available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := builtin.NewRegistry()

		if builtinListFlag {
			for _, hook := range registry.List() {
				fmt.Fprintf(os.Stdout, "%-16s %s\n", hook.Name, hook.Description)
			}
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("builtin requires a hook name; use --list to see available hooks")
		}

		var payload []byte
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read event payload: %w", err)
			}
			payload = data
		}

		env := builtin.NewEnv(settings.SessionDir)
		return registry.Run(cmd.Context(), args[0], env, payload)
	},
}

func init() {
	builtinCmd.Flags().BoolVar(&builtinListFlag, "list", false, "list available builtin hooks")

	rootCmd.AddCommand(builtinCmd)
}
