package hooks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Jaccxc/hookline/internal/config"
)

// HookEntry is a single command to run when a rule's matcher fires. Only
// "command" hooks exist today; the Type field is kept explicit so that the
// configuration format can grow without changing shape.
type HookEntry struct {
	Type    string `yaml:"type" json:"type"`
	Command string `yaml:"command" json:"command"`
	Timeout int    `yaml:"timeout,omitempty" json:"timeout,omitempty"` // seconds, 0 = executor default
}

// HookMatcher groups hook entries under a matcher expression. The matcher
// decides whether the entries run for a given event; Description is purely
// informational and surfaced by the CLI.
type HookMatcher struct {
	Matcher     string      `yaml:"matcher" json:"matcher"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	Hooks       []HookEntry `yaml:"hooks" json:"hooks"`

	// expr is the compiled matcher, populated by LoadHooksConfig. It is
	// never written after load, keeping the table safe to share across
	// concurrent dispatches.
	expr Expr
}

// Expr returns the compiled matcher expression. Rule tables built in code
// rather than loaded from a file have no cached expression, so the matcher
// string is parsed on each call; loaded tables always hit the cache.
func (m *HookMatcher) Expr() (Expr, error) {
	if m.expr != nil {
		return m.expr, nil
	}
	return ParseMatcher(m.Matcher)
}

// HookConfig is the loaded rule table: for each event, an ordered list of
// matchers with their commands. The table is immutable once loaded; a reload
// builds a fresh HookConfig and the caller swaps the reference.
type HookConfig struct {
	Hooks map[HookEvent][]HookMatcher `yaml:"hooks" json:"hooks"`
}

// rawHooksFile mirrors the on-disk YAML shape with string event keys, so
// that unknown event names can be rejected with a useful error instead of
// silently producing unreachable rules.
type rawHooksFile struct {
	Hooks map[string][]HookMatcher `yaml:"hooks"`
}

// LoadHooksConfig loads and merges hook configurations from one or more YAML
// files. Files are processed in the order given and rules within the same
// event are appended, so earlier files' rules dispatch first. Paths that do
// not exist are skipped, letting callers pass optional global and
// project-local locations unconditionally.
//
// Every rule is validated here: unknown event names, unparseable matcher
// expressions, and empty or non-command hook entries all fail the load. A
// table never loads partially.
func LoadHooksConfig(paths ...string) (*HookConfig, error) {
	merged := &HookConfig{
		Hooks: make(map[HookEvent][]HookMatcher),
	}

	substituter := &config.EnvSubstituter{}

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read hooks config %s: %w", path, err)
		}

		content, err := substituter.SubstituteEnvVars(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to process hooks config %s: %w", path, err)
		}

		var raw rawHooksFile
		if err := yaml.Unmarshal([]byte(content), &raw); err != nil {
			return nil, fmt.Errorf("failed to parse hooks config %s: %w", path, err)
		}
		for name, matchers := range raw.Hooks {
			event := HookEvent(name)
			if !event.IsValid() {
				return nil, fmt.Errorf("hooks config %s: unknown event type %q", path, name)
			}
			for i := range matchers {
				if err := validateMatcher(event, &matchers[i]); err != nil {
					return nil, fmt.Errorf("hooks config %s: event %s rule %d: %w", path, name, i, err)
				}
			}
			merged.Hooks[event] = append(merged.Hooks[event], matchers...)
		}
	}

	return merged, nil
}

// validateMatcher compiles the rule's matcher expression and checks its hook
// entries, caching the compiled expression on the rule.
func validateMatcher(event HookEvent, m *HookMatcher) error {
	expr, err := ParseMatcher(m.Matcher)
	if err != nil {
		return err
	}
	m.expr = expr

	// Lifecycle events carry no tool metadata, so a tool-based matcher on
	// them could never fire. Reject it at load time instead.
	if !event.RequiresMatcher() {
		if _, ok := expr.(wildcardExpr); !ok {
			return fmt.Errorf("event %s does not support matcher %q; only \"*\" or an empty matcher is allowed", event, m.Matcher)
		}
	}

	if len(m.Hooks) == 0 {
		return fmt.Errorf("no hooks defined for matcher %q", m.Matcher)
	}
	for i, entry := range m.Hooks {
		if entry.Type != "" && entry.Type != "command" {
			return fmt.Errorf("hook %d: unsupported type %q", i, entry.Type)
		}
		if entry.Command == "" {
			return fmt.Errorf("hook %d: command must not be empty", i)
		}
		if entry.Timeout < 0 {
			return fmt.Errorf("hook %d: timeout must not be negative", i)
		}
	}
	return nil
}

// RuleCount returns the total number of rules across all events.
func (c *HookConfig) RuleCount() int {
	n := 0
	for _, matchers := range c.Hooks {
		n += len(matchers)
	}
	return n
}
