// Package session records dispatched hook events to an append-only JSONL
// transcript, giving hosts and users a reviewable trail of which rules fired
// and what their commands did.
package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/Jaccxc/hookline/internal/hooks"
)

// OutcomeRecord is the persisted form of one command outcome. It keeps the
// fields worth auditing and drops the captured output, which can be large
// and may contain sensitive tool data.
type OutcomeRecord struct {
	RuleIndex  int    `json:"rule_index"`
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	TimedOut   bool   `json:"timed_out,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Record is one dispatched event appended to the transcript.
type Record struct {
	// SessionID identifies the host session the event belonged to.
	SessionID string `json:"session_id"`
	// Event is the dispatched phase.
	Event hooks.HookEvent `json:"event"`
	// ToolName is set for tool phases, empty otherwise.
	ToolName string `json:"tool_name,omitempty"`
	// Timestamp is when the dispatch completed.
	Timestamp time.Time `json:"timestamp"`
	// Blocked is true when the dispatch produced a blocking decision.
	Blocked bool `json:"blocked,omitempty"`
	// Outcomes lists the per-command results in execution order.
	Outcomes []OutcomeRecord `json:"outcomes"`
}

// NewRecord builds a transcript record from a dispatch result.
func NewRecord(sessionID, toolName string, result *hooks.DispatchResult, now time.Time) Record {
	record := Record{
		SessionID: sessionID,
		Event:     result.Event,
		ToolName:  toolName,
		Timestamp: now,
		Blocked:   result.Blocked(),
	}
	for _, outcome := range result.Outcomes {
		record.Outcomes = append(record.Outcomes, OutcomeRecord{
			RuleIndex:  outcome.RuleIndex,
			Command:    outcome.Command,
			ExitCode:   outcome.ExitCode,
			TimedOut:   outcome.TimedOut,
			DurationMS: outcome.Duration.Milliseconds(),
		})
	}
	return record
}

// Transcript appends dispatch records to a JSONL file. Appends are
// serialized with a mutex so a Transcript is safe to share across concurrent
// dispatches.
type Transcript struct {
	path  string
	mutex sync.Mutex
}

// NewTranscript creates a transcript writer for the given path. The file and
// its parent directory are created on first append.
func NewTranscript(path string) *Transcript {
	return &Transcript{path: path}
}

// Path returns the transcript file location.
func (t *Transcript) Path() string {
	return t.path
}

// Append writes a single record as one JSON line.
func (t *Transcript) Append(record Record) error {
	data, err := sonic.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode transcript record: %w", err)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append transcript record: %w", err)
	}
	return nil
}

// Read loads all records from the transcript file, oldest first. A missing
// file yields an empty slice.
func Read(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var records []Record
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1
			if len(line) == 0 {
				continue
			}
			var record Record
			if err := sonic.Unmarshal(line, &record); err != nil {
				return nil, fmt.Errorf("failed to decode transcript line: %w", err)
			}
			records = append(records, record)
		}
	}
	return records, nil
}
