package builtin

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// preCompactHook records a compaction event before the host summarizes its
// context. It appends to a running compaction log and annotates the most
// recent session file so the summarized-away portion is discoverable later.
func preCompactHook() Hook {
	return Hook{
		Name:        "pre-compact",
		Description: "save state to the compaction log before context compaction",
		Run: func(_ context.Context, env *Env, _ []byte) error {
			sessions, err := env.sessionsDir()
			if err != nil {
				return err
			}

			now := env.Now()
			logLine := fmt.Sprintf("[%s] Context compaction triggered\n", now.Format("2006-01-02 15:04:05"))
			if err := appendToFile(filepath.Join(sessions, "compaction-log.txt"), logLine); err != nil {
				return fmt.Errorf("failed to append compaction log: %w", err)
			}

			if recent := findRecentFiles(sessions, "*-session.tmp", time.Time{}); len(recent) > 0 {
				marker := fmt.Sprintf("\n---\n**[Compaction occurred at %s]** - Context was summarized\n", now.Format("15:04"))
				if err := appendToFile(recent[0], marker); err != nil {
					return fmt.Errorf("failed to annotate session file: %w", err)
				}
			}

			env.note("PreCompact", "State saved before compaction")
			return nil
		},
	}
}
