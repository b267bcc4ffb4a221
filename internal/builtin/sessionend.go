package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/tidwall/gjson"
)

// sessionMetadata is persisted beside the session file when a session ends.
type sessionMetadata struct {
	SessionID string `json:"session_id"`
	EndedAt   string `json:"ended_at"`
	Reason    string `json:"reason,omitempty"`
	CWD       string `json:"cwd"`
}

// sessionEndHook appends an end marker to the active session file and writes
// session metadata so the next session-start can offer it as context.
func sessionEndHook() Hook {
	return Hook{
		Name:        "session-end",
		Description: "persist session metadata and mark the session file on session end",
		Run: func(_ context.Context, env *Env, payload []byte) error {
			sessions, err := env.sessionsDir()
			if err != nil {
				return err
			}

			sessionID := shortSessionID(env, payload)
			now := env.Now()
			dateStr := now.Format("2006-01-02")

			sessionFile := filepath.Join(sessions, fmt.Sprintf("%s-%s-session.tmp", dateStr, sessionID))
			if _, err := os.Stat(sessionFile); err == nil {
				marker := fmt.Sprintf("\n---\n**[Session ended at %s]**\n", now.Format("15:04"))
				if err := appendToFile(sessionFile, marker); err != nil {
					return err
				}
			}

			metadata := sessionMetadata{
				SessionID: sessionID,
				EndedAt:   now.Format(time.RFC3339),
				Reason:    gjson.GetBytes(payload, "reason").String(),
				CWD:       env.WorkDir,
			}
			data, err := sonic.ConfigDefault.MarshalIndent(metadata, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode session metadata: %w", err)
			}

			metadataFile := filepath.Join(sessions, fmt.Sprintf("%s-%s-metadata.json", dateStr, sessionID))
			if err := os.WriteFile(metadataFile, data, 0644); err != nil {
				return fmt.Errorf("failed to write session metadata: %w", err)
			}

			env.note("SessionEnd", "Session state saved to %s", sessions)
			return nil
		},
	}
}

// shortSessionID extracts the session identifier from the payload, falling
// back to the CLAUDE_SESSION_ID environment variable, trimmed to its last 8
// characters for brevity.
func shortSessionID(env *Env, payload []byte) string {
	id := gjson.GetBytes(payload, "session_id").String()
	if id == "" {
		id = env.Getenv("CLAUDE_SESSION_ID")
	}
	if id == "" {
		return "default"
	}
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

// appendToFile appends content to an existing or new file.
func appendToFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(content)
	return err
}
