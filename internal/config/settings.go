package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Settings holds hookline's application configuration, distinct from the
// hook rule tables themselves. Settings come from an optional config file,
// HOOKLINE_* environment variables, and CLI flags bound by the cmd package,
// in ascending priority.
type Settings struct {
	// HookFiles are the rule table files to load, in merge order.
	HookFiles []string
	// DefaultTimeout bounds each hook command unless the entry overrides it.
	DefaultTimeout time.Duration
	// TranscriptPath, when set, enables the JSONL dispatch transcript.
	TranscriptPath string
	// SessionDir is the base directory for session artifacts used by the
	// builtin hooks. Defaults to ~/.claude.
	SessionDir string
	// Debug enables verbose logging.
	Debug bool
}

const (
	defaultTimeoutSeconds = 10
	configName            = "hookline"
)

// NewViper creates a viper instance with hookline's defaults, environment
// binding, and config file search paths registered. The cmd package binds
// its flags onto this instance before Load is called.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "hookline"))
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("HOOKLINE")
	v.AutomaticEnv()

	v.SetDefault("hook-files", defaultHookFiles())
	v.SetDefault("timeout", defaultTimeoutSeconds)
	v.SetDefault("transcript", "")
	v.SetDefault("session-dir", defaultSessionDir())
	v.SetDefault("debug", false)

	return v
}

// Load reads the optional config file into v and materializes Settings.
// A missing config file is not an error; a malformed one is.
func Load(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	timeout := v.GetInt("timeout")
	if timeout <= 0 {
		timeout = defaultTimeoutSeconds
	}

	return &Settings{
		HookFiles:      v.GetStringSlice("hook-files"),
		DefaultTimeout: time.Duration(timeout) * time.Second,
		TranscriptPath: v.GetString("transcript"),
		SessionDir:     v.GetString("session-dir"),
		Debug:          v.GetBool("debug"),
	}, nil
}

// defaultHookFiles returns the standard rule table locations: the user-wide
// table first, then the project-local one, so project rules dispatch after
// (and can extend) global ones.
func defaultHookFiles() []string {
	var files []string
	if home, err := os.UserHomeDir(); err == nil {
		files = append(files, filepath.Join(home, ".config", "hookline", "hooks.yml"))
	}
	files = append(files, "hooks.yml")
	return files
}

// defaultSessionDir returns the session artifact directory shared with the
// host agent, ~/.claude by convention.
func defaultSessionDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return filepath.Join(home, ".claude")
}
