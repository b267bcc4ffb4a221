package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"golang.org/x/term"

	"github.com/Jaccxc/hookline/internal/hooks"
	"github.com/Jaccxc/hookline/internal/session"
	"github.com/Jaccxc/hookline/internal/ui"
)

var (
	runEventFlag    string
	runSessionFlag  string
	runJSONFlag     bool
	runNoRenderFlag bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Dispatch one tool event read from stdin",
	Long: `Run reads a JSON event payload from stdin, dispatches it against the loaded
rule table, and reports every command outcome. The event phase comes from
--event or, when omitted, from the payload's hook_event_name field.

Exit codes: 0 on success (including command failures, which are non-fatal),
1 on configuration errors, 2 when a PreToolUse dispatch decided "block".

Example:

  echo '{"tool_name":"Edit","tool_input":{"file_path":"app/models.py"}}' \
    | hookline run --event PostToolUse`,
	RunE: runDispatch,
}

func init() {
	runCmd.Flags().StringVar(&runEventFlag, "event", "", "event phase to dispatch (PreToolUse, PostToolUse, Stop, SessionStart, SessionEnd, PreCompact)")
	runCmd.Flags().StringVar(&runSessionFlag, "session-id", "", "session identifier exposed to hook commands")
	runCmd.Flags().BoolVar(&runJSONFlag, "json", false, "write the dispatch result as JSON to stdout")
	runCmd.Flags().BoolVar(&runNoRenderFlag, "quiet", false, "suppress the human-readable outcome report")

	rootCmd.AddCommand(runCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("run expects an event payload on stdin; pipe one in or see --help")
	}

	payload, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read event payload: %w", err)
	}
	if !gjson.ValidBytes(payload) {
		return fmt.Errorf("event payload is not valid JSON")
	}

	event := hooks.HookEvent(runEventFlag)
	if event == "" {
		event = hooks.HookEvent(gjson.GetBytes(payload, "hook_event_name").String())
	}
	if !event.IsValid() {
		return fmt.Errorf("unknown event phase %q; valid phases are %v", string(event), hooks.AllEvents)
	}

	sessionID := runSessionFlag
	if sessionID == "" {
		sessionID = gjson.GetBytes(payload, "session_id").String()
	}

	table, err := loadRuleTable()
	if err != nil {
		return err
	}

	executor := hooks.NewExecutor(table, sessionID, settings.TranscriptPath)
	executor.SetDefaultTimeout(settings.DefaultTimeout)

	result, err := executor.ExecuteHooks(cmd.Context(), event, json.RawMessage(payload))
	if err != nil {
		return err
	}

	if settings.TranscriptPath != "" {
		toolName := gjson.GetBytes(payload, "tool_name").String()
		record := session.NewRecord(sessionID, toolName, result, time.Now())
		if err := session.NewTranscript(settings.TranscriptPath).Append(record); err != nil {
			// Transcript trouble must not fail the dispatch.
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	if runJSONFlag {
		data, err := sonic.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode dispatch result: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
	}

	if !runNoRenderFlag {
		// The human-readable report goes to stderr so stdout stays clean
		// for --json consumers.
		fmt.Fprint(os.Stderr, ui.NewRenderer().DispatchResult(result))
	}

	if result.Blocked() {
		os.Exit(2)
	}
	return nil
}
