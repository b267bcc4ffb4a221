// Package cmd implements the hookline command line interface.
package cmd

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Jaccxc/hookline/internal/config"
	"github.com/Jaccxc/hookline/internal/hooks"
)

// Version is stamped at build time.
var Version = "dev"

var (
	viperInstance = config.NewViper()
	settings      *config.Settings

	hookFilesFlag  []string
	debugFlag      bool
	timeoutFlag    int
	transcriptFlag string
	sessionDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "hookline",
	Short: "Dispatch lifecycle hooks for AI coding agents",
	Long: `Hookline is a hook dispatcher for AI coding agents. It loads a declarative
rule table (event, matcher expression, commands) from YAML, evaluates each
rule's matcher against tool-invocation events, and runs the matched commands
with the event payload on stdin.

Matcher expressions support three forms, optionally joined with &&:

  *
  tool == "Bash"
  tool_input.file_path matches "\.py$"

Example rule table (hooks.yml):

  hooks:
    PreToolUse:
      - matcher: 'tool == "Bash" && tool_input.command matches "rm -rf"'
        description: guard dangerous shell commands
        hooks:
          - type: command
            command: ./guard.sh
            timeout: 5`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(viperInstance)
		if err != nil {
			return err
		}
		settings = loaded

		if settings.Debug {
			log.SetLevel(log.DebugLevel)
		}
		// Diagnostics stay off stdout so piped hook data is never polluted.
		log.SetOutput(os.Stderr)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringSliceVar(&hookFilesFlag, "hooks", nil, "hook rule table files, merged in order (default user then project hooks.yml)")
	flags.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	flags.IntVar(&timeoutFlag, "timeout", 0, "default per-command timeout in seconds")
	flags.StringVar(&transcriptFlag, "transcript", "", "append dispatch records to this JSONL file")
	flags.StringVar(&sessionDirFlag, "session-dir", "", "base directory for session artifacts used by builtin hooks")

	cobra.CheckErr(viperInstance.BindPFlag("hook-files", flags.Lookup("hooks")))
	cobra.CheckErr(viperInstance.BindPFlag("debug", flags.Lookup("debug")))
	cobra.CheckErr(viperInstance.BindPFlag("timeout", flags.Lookup("timeout")))
	cobra.CheckErr(viperInstance.BindPFlag("transcript", flags.Lookup("transcript")))
	cobra.CheckErr(viperInstance.BindPFlag("session-dir", flags.Lookup("session-dir")))

	rootCmd.Version = Version
}

// loadRuleTable loads and validates the configured hook files. Any
// configuration error aborts the command; a table never loads partially.
func loadRuleTable() (*hooks.HookConfig, error) {
	return hooks.LoadHooksConfig(settings.HookFiles...)
}

// Execute runs the CLI. It exits non-zero on error; a PreToolUse dispatch
// that decided "block" exits with code 2 from within the run command.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
