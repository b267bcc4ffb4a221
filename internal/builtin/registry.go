// Package builtin provides hookline's built-in hook programs: small,
// self-contained hooks that ship with the binary and can be referenced from
// a rule table as `hookline builtin <name>`. They follow the same contract
// as external hook commands: event payload on stdin, diagnostics on stderr,
// exit code 0 unless something must be surfaced as a failure.
package builtin

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Env carries the execution environment for a builtin hook. Builtins never
// reach for globals directly so that tests can point them at temp
// directories and fixed clocks.
type Env struct {
	// Stdout receives data output; hook diagnostics never go here.
	Stdout io.Writer
	// Stderr receives diagnostic messages in "[Name] message" form.
	Stderr io.Writer
	// SessionDir is the base directory for session artifacts (~/.claude).
	SessionDir string
	// WorkDir is the directory the host agent is operating in.
	WorkDir string
	// TempDir holds transient state like the tool-call counter.
	TempDir string
	// Getenv looks up environment variables, os.Getenv by default.
	Getenv func(string) string
	// Now supplies timestamps, time.Now by default.
	Now func() time.Time
}

// NewEnv creates an environment wired to the real process: standard streams,
// the given session directory, the current working directory, and the system
// temp dir.
func NewEnv(sessionDir string) *Env {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Env{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		SessionDir: sessionDir,
		WorkDir:    wd,
		TempDir:    os.TempDir(),
		Getenv:     os.Getenv,
		Now:        time.Now,
	}
}

// sessionsDir returns the directory holding session files, created on demand.
func (e *Env) sessionsDir() (string, error) {
	dir := filepath.Join(e.SessionDir, "sessions")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return dir, nil
}

// note writes a "[Name] message" diagnostic line to stderr.
func (e *Env) note(name, format string, args ...any) {
	fmt.Fprintf(e.Stderr, "[%s] %s\n", name, fmt.Sprintf(format, args...))
}

// Hook is a builtin hook program.
type Hook struct {
	// Name identifies the hook on the command line.
	Name string
	// Description is a one-line summary for `hookline builtin --list`.
	Description string
	// Run executes the hook with the raw event payload from stdin.
	Run func(ctx context.Context, env *Env, payload []byte) error
}

// Registry holds all available builtin hooks. It provides a centralized
// lookup for running builtins by name from the CLI.
type Registry struct {
	hooks map[string]Hook
}

// NewRegistry creates a registry with every builtin hook registered.
func NewRegistry() *Registry {
	r := &Registry{hooks: make(map[string]Hook)}

	r.register(sessionStartHook())
	r.register(sessionEndHook())
	r.register(preCompactHook())
	r.register(suggestCompactHook())
	r.register(checkPrintHook())

	return r
}

func (r *Registry) register(h Hook) {
	r.hooks[h.Name] = h
}

// Get returns the builtin hook with the given name.
func (r *Registry) Get(name string) (Hook, error) {
	h, ok := r.hooks[name]
	if !ok {
		return Hook{}, fmt.Errorf("unknown builtin hook: %s", name)
	}
	return h, nil
}

// Run executes the named builtin with the given environment and payload.
func (r *Registry) Run(ctx context.Context, name string, env *Env, payload []byte) error {
	h, err := r.Get(name)
	if err != nil {
		return err
	}
	return h.Run(ctx, env, payload)
}

// List returns all builtin hooks sorted by name.
func (r *Registry) List() []Hook {
	hooks := make([]Hook, 0, len(r.hooks))
	for _, h := range r.hooks {
		hooks = append(hooks, h)
	}
	sort.Slice(hooks, func(i, j int) bool { return hooks[i].Name < hooks[j].Name })
	return hooks
}
