package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jaccxc/hookline/internal/hooks"
)

// Renderer formats hookline structures for terminal display.
type Renderer struct {
	styles styles
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{styles: newStyles(DefaultTheme())}
}

// RuleTable renders the merged rule table grouped by event, in the fixed
// event order, preserving each event's rule declaration order.
func (r *Renderer) RuleTable(config *hooks.HookConfig) string {
	var sb strings.Builder

	if config.RuleCount() == 0 {
		sb.WriteString(r.styles.desc.Render("no hook rules configured"))
		sb.WriteString("\n")
		return sb.String()
	}

	for _, event := range hooks.AllEvents {
		matchers := config.Hooks[event]
		if len(matchers) == 0 {
			continue
		}

		sb.WriteString(r.styles.event.Render(string(event)))
		sb.WriteString("\n")
		for i, matcher := range matchers {
			label := matcher.Matcher
			if label == "" {
				label = "*"
			}
			sb.WriteString(fmt.Sprintf("  %d. %s", i+1, r.styles.matcher.Render(label)))
			if matcher.Description != "" {
				sb.WriteString("  " + r.styles.desc.Render(matcher.Description))
			}
			sb.WriteString("\n")
			for _, entry := range matcher.Hooks {
				line := "     → " + entry.Command
				if entry.Timeout > 0 {
					line += fmt.Sprintf(" (timeout %ds)", entry.Timeout)
				}
				sb.WriteString(r.styles.command.Render(line))
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}

// DispatchResult renders the outcome list of one dispatch, one line per
// command, followed by a summary line.
func (r *Renderer) DispatchResult(result *hooks.DispatchResult) string {
	var sb strings.Builder

	for _, outcome := range result.Outcomes {
		var status string
		switch {
		case outcome.TimedOut:
			status = r.styles.failure.Render("timeout")
		case outcome.ExitCode == hooks.ExitBlocking && result.Event.CanBlock():
			status = r.styles.failure.Render("block")
		case outcome.Failed():
			status = r.styles.warning.Render(fmt.Sprintf("exit %d", outcome.ExitCode))
		default:
			status = r.styles.success.Render("ok")
		}
		sb.WriteString(fmt.Sprintf("rule %d  %-24s %s  (%s)\n",
			outcome.RuleIndex, truncate(outcome.Command, 24), status, outcome.Duration.Round(time.Millisecond)))
	}

	switch {
	case result.Blocked():
		sb.WriteString(r.styles.failure.Render("blocked"))
		if reason := strings.TrimSpace(result.Output.Reason); reason != "" {
			sb.WriteString(": " + reason)
		}
		sb.WriteString("\n")
	case len(result.Outcomes) == 0:
		sb.WriteString(r.styles.desc.Render("no rules matched"))
		sb.WriteString("\n")
	default:
		sb.WriteString(r.styles.success.Render(fmt.Sprintf("%d command(s) executed", len(result.Outcomes))))
		sb.WriteString("\n")
	}

	return sb.String()
}

// truncate shortens s to max bytes with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
