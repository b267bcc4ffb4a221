package hooks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// DefaultCommandTimeout bounds a single hook command when neither the entry
// nor the executor specifies a timeout.
const DefaultCommandTimeout = 10 * time.Second

// ExitBlocking is the exit code a hook command uses to signal a blocking
// decision. For PreToolUse dispatches the host must abort the guarded tool
// call; for every other phase the outcome is recorded but cannot block.
const ExitBlocking = 2

// CommandOutcome is the recorded result of one hook command execution.
// Failures are represented here rather than as errors: a command that exits
// non-zero, fails to start, or times out still yields an outcome, and
// dispatch continues to the next command.
type CommandOutcome struct {
	// RuleIndex is the declaration-order index of the rule within its event.
	RuleIndex int `json:"rule_index"`
	// Command is the shell command string as configured.
	Command string `json:"command"`
	// ExitCode is the command's exit status; -1 when it could not be started.
	ExitCode int `json:"exit_code"`
	// Stdout and Stderr are the captured output streams.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	// Duration is how long the command ran.
	Duration time.Duration `json:"duration"`
	// TimedOut is true when the command was killed by its timeout.
	TimedOut bool `json:"timed_out,omitempty"`
	// Output is the parsed JSON control output, if the command emitted one.
	Output *HookOutput `json:"output,omitempty"`
	// Err describes a start or wait failure that was not an ordinary
	// non-zero exit, for diagnostics only.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the outcome represents a failed execution.
func (o CommandOutcome) Failed() bool {
	return o.ExitCode != 0 || o.TimedOut || o.Err != ""
}

// DispatchResult is the ordered record of one dispatch call: every command
// outcome in rule declaration order, plus the merged control output.
type DispatchResult struct {
	// Event is the phase that was dispatched.
	Event HookEvent `json:"event"`
	// Outcomes lists per-command results in execution order.
	Outcomes []CommandOutcome `json:"outcomes"`
	// Output is the merged HookOutput across all commands; later commands'
	// fields override earlier ones, except that a block decision is sticky.
	Output *HookOutput `json:"output"`
}

// Blocked reports whether the dispatch produced a blocking decision for a
// phase that honors one.
func (r *DispatchResult) Blocked() bool {
	return r != nil && r.Event.CanBlock() && r.Output.IsBlocking()
}

// Executor dispatches lifecycle events against an immutable rule table. It
// holds no mutable state besides its configuration references, so a single
// Executor is safe to use concurrently for independent events. Rules are
// evaluated strictly sequentially in declaration order; there is no
// cross-rule parallelism.
type Executor struct {
	config         *HookConfig
	sessionID      string
	transcriptPath string
	defaultTimeout time.Duration
	logger         *log.Logger
}

// NewExecutor creates an executor for the given rule table. The sessionID
// and transcriptPath are exposed to hook commands through their environment.
func NewExecutor(config *HookConfig, sessionID, transcriptPath string) *Executor {
	return &Executor{
		config:         config,
		sessionID:      sessionID,
		transcriptPath: transcriptPath,
		defaultTimeout: DefaultCommandTimeout,
		logger:         log.Default(),
	}
}

// SetDefaultTimeout overrides the per-command timeout used when a hook entry
// does not declare its own.
func (e *Executor) SetDefaultTimeout(timeout time.Duration) {
	if timeout > 0 {
		e.defaultTimeout = timeout
	}
}

// SetLogger routes the executor's diagnostics through the given logger.
// Diagnostics never go to stdout; hook data and diagnostics stay on
// separate streams.
func (e *Executor) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// ExecuteHooks dispatches a single event: it selects the rules registered
// for the event's phase, evaluates each rule's matcher in declaration order,
// and runs every matched rule's commands in listed order. Command failures
// are contained per-command and recorded in the result; the only error
// returned is a failure to encode the input payload, which means no command
// was run at all.
func (e *Executor) ExecuteHooks(ctx context.Context, event HookEvent, input any) (*DispatchResult, error) {
	result := &DispatchResult{
		Event:  event,
		Output: &HookOutput{},
	}

	matchers := e.config.Hooks[event]
	if len(matchers) == 0 {
		return result, nil
	}

	payload, err := sonic.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hook payload: %w", err)
	}

	toolName := gjson.GetBytes(payload, "tool_name").String()
	var toolInput []byte
	if raw := gjson.GetBytes(payload, "tool_input"); raw.Exists() {
		toolInput = []byte(raw.Raw)
	}

	for ruleIndex := range matchers {
		matcher := &matchers[ruleIndex]

		expr, err := matcher.Expr()
		if err != nil {
			// Load-time validation should have caught this; treat it as a
			// non-match rather than aborting the dispatch.
			e.logger.Warn("skipping rule with invalid matcher",
				"event", event, "rule", ruleIndex, "err", err)
			continue
		}
		if !expr.Matches(toolName, toolInput) {
			continue
		}

		for _, entry := range matcher.Hooks {
			outcome := e.runCommand(ctx, entry, payload, ruleIndex)
			e.applyOutcome(result, event, outcome)
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}

	return result, nil
}

// applyOutcome folds one command outcome into the merged result output and
// logs failures.
func (e *Executor) applyOutcome(result *DispatchResult, event HookEvent, outcome CommandOutcome) {
	switch {
	case outcome.TimedOut:
		e.logger.Warn("hook command timed out",
			"event", event, "rule", outcome.RuleIndex, "command", outcome.Command)
	case outcome.ExitCode == ExitBlocking && event.CanBlock():
		blocked := false
		result.Output.Decision = "block"
		result.Output.Reason = outcome.Stderr
		result.Output.Continue = &blocked
	case outcome.Failed():
		e.logger.Warn("hook command failed",
			"event", event, "rule", outcome.RuleIndex, "command", outcome.Command,
			"exit", outcome.ExitCode, "stderr", strings.TrimSpace(outcome.Stderr))
	case outcome.Output != nil:
		mergeOutput(result.Output, outcome.Output)
	}
}

// runCommand executes one hook command through the shell with the event
// payload on stdin, enforcing the entry's timeout.
func (e *Executor) runCommand(ctx context.Context, entry HookEntry, payload []byte, ruleIndex int) CommandOutcome {
	outcome := CommandOutcome{
		RuleIndex: ruleIndex,
		Command:   entry.Command,
	}

	timeout := e.defaultTimeout
	if entry.Timeout > 0 {
		timeout = time.Duration(entry.Timeout) * time.Second
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", entry.Command)
	// Without WaitDelay, orphaned grandchildren that inherit the stdout and
	// stderr pipes keep Run blocked past the deadline after sh is killed.
	cmd.WaitDelay = 100 * time.Millisecond
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Env = append(os.Environ(),
		"HOOKLINE_SESSION_ID="+e.sessionID,
		"HOOKLINE_TRANSCRIPT_PATH="+e.transcriptPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	outcome.Duration = time.Since(start)
	outcome.Stdout = stdout.String()
	outcome.Stderr = stderr.String()

	if cmdCtx.Err() == context.DeadlineExceeded {
		outcome.TimedOut = true
		outcome.ExitCode = -1
		return outcome
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			outcome.ExitCode = exitErr.ExitCode()
		} else {
			outcome.ExitCode = -1
			outcome.Err = err.Error()
		}
		return outcome
	}

	outcome.ExitCode = 0
	outcome.Output = parseHookOutput(stdout.Bytes())
	return outcome
}

// parseHookOutput decodes a command's stdout as a HookOutput when it looks
// like a JSON object. Plain-text stdout is informational and yields no
// control output.
func parseHookOutput(stdout []byte) *HookOutput {
	trimmed := bytes.TrimSpace(stdout)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var output HookOutput
	if err := sonic.Unmarshal(trimmed, &output); err != nil {
		return nil
	}
	return &output
}

// mergeOutput folds src into dst. Non-empty fields of src win, a block
// decision is never downgraded, and Continue=false is sticky.
func mergeOutput(dst, src *HookOutput) {
	if src.Continue != nil && (dst.Continue == nil || *dst.Continue) {
		dst.Continue = src.Continue
	}
	if src.StopReason != "" {
		dst.StopReason = src.StopReason
	}
	if src.SuppressOutput {
		dst.SuppressOutput = true
	}
	wasBlocked := dst.Decision == "block"
	if src.Decision != "" && !wasBlocked {
		dst.Decision = src.Decision
	}
	if src.Reason != "" && !wasBlocked {
		dst.Reason = src.Reason
	}
	if src.Feedback != "" {
		dst.Feedback = src.Feedback
	}
	if src.Context != "" {
		dst.Context = src.Context
	}
	if src.SystemPrompt != "" {
		dst.SystemPrompt = src.SystemPrompt
	}
	if src.ModifyInput != "" {
		dst.ModifyInput = src.ModifyInput
	}
	if src.ModifyOutput != "" {
		dst.ModifyOutput = src.ModifyOutput
	}
}
