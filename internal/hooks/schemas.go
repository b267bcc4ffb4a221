package hooks

import (
	"encoding/json"
)

// CommonInput contains fields common to all hook inputs, providing context
// information that is available to every hook regardless of the event type.
// These fields help hooks understand the execution environment and session state.
type CommonInput struct {
	SessionID      string    `json:"session_id"`      // Unique session identifier
	TranscriptPath string    `json:"transcript_path"` // Path to transcript file (if enabled)
	CWD            string    `json:"cwd"`             // Current working directory
	HookEventName  HookEvent `json:"hook_event_name"` // The hook event type
	Timestamp      int64     `json:"timestamp"`       // Unix timestamp when hook fired
	Model          string    `json:"model"`           // AI model being used
	Interactive    bool      `json:"interactive"`     // Whether in interactive mode
}

// PreToolUseInput is passed to PreToolUse hooks before a tool is executed.
// It contains the tool name and input parameters, allowing hooks to validate,
// modify, or block tool execution.
type PreToolUseInput struct {
	CommonInput
	ToolName  string          `json:"tool_name"`
	ToolInput json.RawMessage `json:"tool_input"`
}

// PostToolUseInput is passed to PostToolUse hooks after a tool has been executed.
// It contains the tool name, input parameters, and the tool's response, allowing
// hooks to log, analyze, or react to tool execution results.
type PostToolUseInput struct {
	CommonInput
	ToolName     string          `json:"tool_name"`
	ToolInput    json.RawMessage `json:"tool_input"`
	ToolResponse json.RawMessage `json:"tool_response"`
}

// StopInput is passed to Stop hooks when the agent finishes responding to a prompt.
// It contains the final response, completion reason, and optional metadata about
// the interaction, allowing hooks to perform cleanup or logging operations.
type StopInput struct {
	CommonInput
	StopHookActive bool            `json:"stop_hook_active"`
	Response       string          `json:"response"`       // The agent's final response
	StopReason     string          `json:"stop_reason"`    // "completed", "cancelled", "error"
	Meta           json.RawMessage `json:"meta,omitempty"` // Additional metadata (e.g., token usage, model info)
}

// SessionStartInput is passed to SessionStart hooks when a new session begins.
// Source indicates how the session came to be: "startup" for a fresh session,
// "resume" when continuing a previous one, or "clear" after a context reset.
type SessionStartInput struct {
	CommonInput
	Source string `json:"source"`
}

// SessionEndInput is passed to SessionEnd hooks when a session terminates.
type SessionEndInput struct {
	CommonInput
	Reason string `json:"reason"` // "exit", "logout", "error"
}

// PreCompactInput is passed to PreCompact hooks before the host compacts its
// conversation context. Hooks typically use it to persist state that would
// otherwise be lost in summarization.
type PreCompactInput struct {
	CommonInput
	Trigger       string `json:"trigger"` // "manual" or "auto"
	CurrentTokens int    `json:"current_tokens,omitempty"`
	TargetTokens  int    `json:"target_tokens,omitempty"`
}

// HookOutput represents the JSON output from a hook that controls host behavior.
// Hooks can decide whether to continue execution, provide reasons for stopping,
// suppress output, or block tool execution. The Decision field can be "approve",
// "block", or empty (default behavior).
type HookOutput struct {
	Continue       *bool  `json:"continue,omitempty"`
	StopReason     string `json:"stopReason,omitempty"`
	SuppressOutput bool   `json:"suppressOutput,omitempty"`
	Decision       string `json:"decision,omitempty"` // "approve", "block", or ""
	Reason         string `json:"reason,omitempty"`
	Feedback       string `json:"feedback,omitempty"`     // Feedback surfaced to the LLM
	Context        string `json:"context,omitempty"`      // Context note surfaced to the user
	SystemPrompt   string `json:"systemPrompt,omitempty"` // Additional system prompt content
	ModifyInput    string `json:"modifyInput,omitempty"`  // Replacement tool input (JSON string)
	ModifyOutput   string `json:"modifyOutput,omitempty"` // Replacement tool output (JSON string)
}

// IsBlocking returns true if the output represents a blocking decision,
// either explicitly via Decision or by setting Continue to false.
func (o *HookOutput) IsBlocking() bool {
	if o == nil {
		return false
	}
	if o.Decision == "block" {
		return true
	}
	return o.Continue != nil && !*o.Continue
}
