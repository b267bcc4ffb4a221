package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeScript creates an executable shell script in dir and returns its path.
func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to create script %s: %v", name, err)
	}
	return path
}

func preToolUseInput(tool, toolInput string) *PreToolUseInput {
	return &PreToolUseInput{
		CommonInput: CommonInput{HookEventName: PreToolUse},
		ToolName:    tool,
		ToolInput:   json.RawMessage(toolInput),
	}
}

func TestExecuteHooks(t *testing.T) {
	tmpDir := t.TempDir()

	echoScript := writeScript(t, tmpDir, "echo.sh", "cat\n")
	blockScript := writeScript(t, tmpDir, "block.sh", "echo \"Blocked by policy\" >&2\nexit 2\n")
	jsonScript := writeScript(t, tmpDir, "json.sh", "echo '{\"decision\": \"approve\", \"reason\": \"Approved by test\"}'\n")

	singleRule := func(matcher, command string, timeout int) *HookConfig {
		return &HookConfig{
			Hooks: map[HookEvent][]HookMatcher{
				PreToolUse: {{
					Matcher: matcher,
					Hooks:   []HookEntry{{Type: "command", Command: command, Timeout: timeout}},
				}},
			},
		}
	}

	tests := []struct {
		name         string
		config       *HookConfig
		event        HookEvent
		input        any
		wantOutcomes int
		wantBlocked  bool
		wantDecision string
		wantReason   string
	}{
		{
			name:         "simple command execution",
			config:       singleRule(`tool == "Bash"`, echoScript, 0),
			event:        PreToolUse,
			input:        preToolUseInput("Bash", `{"command": "ls"}`),
			wantOutcomes: 1,
		},
		{
			name:         "matcher filters non-matching tool",
			config:       singleRule(`tool == "Bash"`, echoScript, 0),
			event:        PreToolUse,
			input:        preToolUseInput("Edit", `{"file_path": "main.go"}`),
			wantOutcomes: 0,
		},
		{
			name:         "blocking hook via exit code",
			config:       singleRule(`tool == "Bash"`, blockScript, 0),
			event:        PreToolUse,
			input:        preToolUseInput("Bash", `{"command": "rm -rf /"}`),
			wantOutcomes: 1,
			wantBlocked:  true,
			wantDecision: "block",
			wantReason:   "Blocked by policy\n",
		},
		{
			name:         "JSON output parsing",
			config:       singleRule(`tool == "Bash"`, jsonScript, 0),
			event:        PreToolUse,
			input:        preToolUseInput("Bash", `{"command": "ls"}`),
			wantOutcomes: 1,
			wantDecision: "approve",
			wantReason:   "Approved by test",
		},
		{
			name:         "timeout handling",
			config:       singleRule(`tool == "Bash"`, "sleep 10", 1),
			event:        PreToolUse,
			input:        preToolUseInput("Bash", `{"command": "ls"}`),
			wantOutcomes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			executor := NewExecutor(tt.config, "test-session", "/tmp/test.jsonl")

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := executor.ExecuteHooks(ctx, tt.event, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(got.Outcomes) != tt.wantOutcomes {
				t.Fatalf("outcome count = %d, want %d", len(got.Outcomes), tt.wantOutcomes)
			}
			if got.Blocked() != tt.wantBlocked {
				t.Errorf("Blocked() = %v, want %v", got.Blocked(), tt.wantBlocked)
			}
			if got.Output.Decision != tt.wantDecision {
				t.Errorf("decision = %q, want %q", got.Output.Decision, tt.wantDecision)
			}
			if got.Output.Reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", got.Output.Reason, tt.wantReason)
			}
		})
	}
}

func TestExecuteHooksTimeoutOutcome(t *testing.T) {
	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PostToolUse: {{
				Matcher: "*",
				Hooks: []HookEntry{
					{Command: "sleep 10", Timeout: 1},
					{Command: "echo after-timeout"},
				},
			}},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	start := time.Now()
	got, err := executor.ExecuteHooks(context.Background(), PostToolUse, &PostToolUseInput{
		CommonInput: CommonInput{HookEventName: PostToolUse},
		ToolName:    "Bash",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("dispatch took %s, timeout was not enforced", elapsed)
	}

	if len(got.Outcomes) != 2 {
		t.Fatalf("outcome count = %d, want 2", len(got.Outcomes))
	}
	if !got.Outcomes[0].TimedOut {
		t.Error("first outcome should be marked timed out")
	}
	if !got.Outcomes[0].Failed() {
		t.Error("timed-out outcome should count as failed")
	}
	if got.Outcomes[1].ExitCode != 0 {
		t.Errorf("second command should still run, exit = %d", got.Outcomes[1].ExitCode)
	}
}

// A failing command must not prevent the remaining commands of the same rule
// or subsequent matching rules from executing, and outcomes must be reported
// in declaration order.
func TestExecuteHooksFailureDoesNotAbortDispatch(t *testing.T) {
	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PostToolUse: {
				{
					Matcher: "*",
					Hooks: []HookEntry{
						{Command: "echo first"},
						{Command: "exit 1"},
						{Command: "echo third"},
					},
				},
				{
					Matcher: `tool == "Edit"`,
					Hooks:   []HookEntry{{Command: "echo fourth"}},
				},
			},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	got, err := executor.ExecuteHooks(context.Background(), PostToolUse, &PostToolUseInput{
		CommonInput: CommonInput{HookEventName: PostToolUse},
		ToolName:    "Edit",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Outcomes) != 4 {
		t.Fatalf("outcome count = %d, want 4", len(got.Outcomes))
	}

	wantStdout := []string{"first\n", "", "third\n", "fourth\n"}
	wantRules := []int{0, 0, 0, 1}
	for i, outcome := range got.Outcomes {
		if outcome.Stdout != wantStdout[i] {
			t.Errorf("outcome %d stdout = %q, want %q", i, outcome.Stdout, wantStdout[i])
		}
		if outcome.RuleIndex != wantRules[i] {
			t.Errorf("outcome %d rule index = %d, want %d", i, outcome.RuleIndex, wantRules[i])
		}
	}
	if !got.Outcomes[1].Failed() {
		t.Error("exit 1 should be a failed outcome")
	}
	if got.Blocked() {
		t.Error("non-zero exit outside PreToolUse must not block")
	}
}

// Cross-phase isolation: a rule registered for one event never fires for
// another, even with a wildcard matcher.
func TestExecuteHooksPhaseIsolation(t *testing.T) {
	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PostToolUse: {{
				Matcher: "*",
				Hooks:   []HookEntry{{Command: "echo post"}},
			}},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	got, err := executor.ExecuteHooks(context.Background(), PreToolUse, preToolUseInput("Edit", `{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outcomes) != 0 {
		t.Errorf("PreToolUse dispatch ran %d PostToolUse hooks", len(got.Outcomes))
	}
}

// Exit code 2 is only a blocking signal for PreToolUse; for other phases it
// is an ordinary failure.
func TestExitTwoOnlyBlocksPreToolUse(t *testing.T) {
	tmpDir := t.TempDir()
	blockScript := writeScript(t, tmpDir, "block.sh", "echo \"nope\" >&2\nexit 2\n")

	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			Stop: {{
				Matcher: "*",
				Hooks:   []HookEntry{{Command: blockScript}},
			}},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	got, err := executor.ExecuteHooks(context.Background(), Stop, &StopInput{
		CommonInput: CommonInput{HookEventName: Stop},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Blocked() {
		t.Error("Stop dispatch must never block")
	}
	if got.Output.Decision != "" {
		t.Errorf("decision = %q, want empty", got.Output.Decision)
	}
	if len(got.Outcomes) != 1 || got.Outcomes[0].ExitCode != ExitBlocking {
		t.Fatalf("expected one outcome with exit %d, got %+v", ExitBlocking, got.Outcomes)
	}
}

// The dispatch payload arrives on the command's stdin as JSON.
func TestExecuteHooksPayloadOnStdin(t *testing.T) {
	tmpDir := t.TempDir()
	outFile := filepath.Join(tmpDir, "payload.json")
	captureScript := writeScript(t, tmpDir, "capture.sh", "cat > "+outFile+"\n")

	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PreToolUse: {{
				Matcher: `tool_input.file_path matches "\.py$"`,
				Hooks:   []HookEntry{{Command: captureScript}},
			}},
		},
	}

	executor := NewExecutor(config, "session-42", "/tmp/transcript.jsonl")

	input := preToolUseInput("Edit", `{"file_path": "app/models.py"}`)
	got, err := executor.ExecuteHooks(context.Background(), PreToolUse, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outcomes) != 1 {
		t.Fatalf("outcome count = %d, want 1", len(got.Outcomes))
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read captured payload: %v", err)
	}

	var decoded PreToolUseInput
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("captured payload is not valid JSON: %v", err)
	}
	if decoded.ToolName != "Edit" {
		t.Errorf("payload tool_name = %q, want %q", decoded.ToolName, "Edit")
	}
	if !strings.Contains(string(decoded.ToolInput), "app/models.py") {
		t.Errorf("payload tool_input = %s, missing file path", decoded.ToolInput)
	}
}

// End-to-end scenario from the documentation: a PostToolUse rule on .py
// files fires for a .py edit and stays silent for a .ts edit.
func TestExecuteHooksEndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	marker := filepath.Join(tmpDir, "ran")
	formatCheck := writeScript(t, tmpDir, "format-check.sh", "echo ran >> "+marker+"\n")

	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PostToolUse: {{
				Matcher: `tool_input.file_path matches "\.py$"`,
				Hooks:   []HookEntry{{Command: formatCheck}},
			}},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	pyInput := &PostToolUseInput{
		CommonInput: CommonInput{HookEventName: PostToolUse},
		ToolName:    "Edit",
		ToolInput:   json.RawMessage(`{"file_path": "app/models.py"}`),
	}
	got, err := executor.ExecuteHooks(context.Background(), PostToolUse, pyInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outcomes) != 1 {
		t.Fatalf("py edit: outcome count = %d, want 1", len(got.Outcomes))
	}

	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("format-check did not run: %v", err)
	}
	if strings.Count(string(data), "ran") != 1 {
		t.Errorf("format-check ran %d times, want 1", strings.Count(string(data), "ran"))
	}

	tsInput := &PostToolUseInput{
		CommonInput: CommonInput{HookEventName: PostToolUse},
		ToolName:    "Edit",
		ToolInput:   json.RawMessage(`{"file_path": "app/models.ts"}`),
	}
	got, err = executor.ExecuteHooks(context.Background(), PostToolUse, tsInput)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Outcomes) != 0 {
		t.Errorf("ts edit: outcome count = %d, want 0", len(got.Outcomes))
	}
}

func TestHookOutputMerging(t *testing.T) {
	tmpDir := t.TempDir()

	feedbackScript := writeScript(t, tmpDir, "feedback.sh",
		"echo '{\"feedback\": \"Tool execution was slow\", \"context\": \"Performance warning\", \"continue\": true}'\n")
	modifyScript := writeScript(t, tmpDir, "modify.sh",
		"echo '{\"modifyOutput\": \"{\\\"result\\\": \\\"sanitized\\\"}\", \"suppressOutput\": true}'\n")

	config := &HookConfig{
		Hooks: map[HookEvent][]HookMatcher{
			PostToolUse: {{
				Matcher: `tool == "Bash"`,
				Hooks: []HookEntry{
					{Command: feedbackScript},
					{Command: modifyScript},
				},
			}},
		},
	}

	executor := NewExecutor(config, "test-session", "")

	got, err := executor.ExecuteHooks(context.Background(), PostToolUse, &PostToolUseInput{
		CommonInput:  CommonInput{HookEventName: PostToolUse},
		ToolName:     "Bash",
		ToolResponse: json.RawMessage(`{"output": "sensitive"}`),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Output.Feedback != "Tool execution was slow" {
		t.Errorf("feedback = %q", got.Output.Feedback)
	}
	if got.Output.Context != "Performance warning" {
		t.Errorf("context = %q", got.Output.Context)
	}
	if got.Output.ModifyOutput != `{"result": "sanitized"}` {
		t.Errorf("modifyOutput = %q", got.Output.ModifyOutput)
	}
	if !got.Output.SuppressOutput {
		t.Error("suppressOutput should be set")
	}
	if got.Output.Continue == nil || !*got.Output.Continue {
		t.Error("continue should remain true")
	}
}
