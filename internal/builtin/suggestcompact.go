package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// defaultCompactThreshold is the tool-call count at which a manual
	// /compact is first suggested. Overridable via COMPACT_THRESHOLD.
	defaultCompactThreshold = 50
	// compactReminderInterval spaces out follow-up suggestions once the
	// threshold has been passed.
	compactReminderInterval = 25
)

// suggestCompactHook counts tool calls per session and suggests compacting
// at logical intervals. Manual compaction at phase boundaries preserves
// context better than auto-compaction at arbitrary points, so this hook only
// nudges; it never blocks anything.
func suggestCompactHook() Hook {
	return Hook{
		Name:        "suggest-compact",
		Description: "suggest /compact at strategic tool-call intervals",
		Run: func(_ context.Context, env *Env, payload []byte) error {
			sessionID := shortSessionID(env, payload)
			counterFile := filepath.Join(env.TempDir, "hookline-tool-count-"+sessionID)

			threshold := defaultCompactThreshold
			if raw := env.Getenv("COMPACT_THRESHOLD"); raw != "" {
				if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
					threshold = parsed
				}
			}

			count := 1
			if data, err := os.ReadFile(counterFile); err == nil {
				if prev, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
					count = prev + 1
				}
			}

			if err := os.WriteFile(counterFile, []byte(fmt.Sprintf("%d", count)), 0644); err != nil {
				return fmt.Errorf("failed to update tool-call counter: %w", err)
			}

			if count == threshold {
				env.note("StrategicCompact", "%d tool calls reached - consider /compact if transitioning phases", threshold)
			}
			if count > threshold && count%compactReminderInterval == 0 {
				env.note("StrategicCompact", "%d tool calls - good checkpoint for /compact if context is stale", count)
			}
			return nil
		},
	}
}
