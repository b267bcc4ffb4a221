package hooks

// HookEvent represents a point in the host agent's lifecycle where hooks can
// be executed. Events can be tool-related (carrying a tool name and input) or
// lifecycle-related (session boundaries, agent stop, context compaction).
type HookEvent string

const (
	// PreToolUse fires before any tool execution. It is the only phase whose
	// hooks may block the guarded tool call.
	PreToolUse HookEvent = "PreToolUse"

	// PostToolUse fires after tool execution completes, allowing
	// post-processing or logging
	PostToolUse HookEvent = "PostToolUse"

	// Stop fires when the main agent finishes responding to a user prompt
	Stop HookEvent = "Stop"

	// SessionStart fires when a new agent session begins
	SessionStart HookEvent = "SessionStart"

	// SessionEnd fires when an agent session terminates
	SessionEnd HookEvent = "SessionEnd"

	// PreCompact fires before the host compacts its conversation context
	PreCompact HookEvent = "PreCompact"
)

// AllEvents lists every valid hook event in a stable order, useful for
// rendering and validation messages.
var AllEvents = []HookEvent{
	PreToolUse,
	PostToolUse,
	Stop,
	SessionStart,
	SessionEnd,
	PreCompact,
}

// IsValid returns true if the event is a valid hook event.
func (e HookEvent) IsValid() bool {
	switch e {
	case PreToolUse, PostToolUse, Stop, SessionStart, SessionEnd, PreCompact:
		return true
	}
	return false
}

// RequiresMatcher returns true if the event carries tool metadata that
// matchers can inspect. PreToolUse and PostToolUse events expose a tool name
// and tool input; other events apply globally and only accept the wildcard
// matcher, enforced at configuration load.
func (e HookEvent) RequiresMatcher() bool {
	return e == PreToolUse || e == PostToolUse
}

// CanBlock returns true if a blocking decision from a hook is honored for
// this event. Only PreToolUse hooks can abort the operation they guard; all
// other phases are informational.
func (e HookEvent) CanBlock() bool {
	return e == PreToolUse
}
