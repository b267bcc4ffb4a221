package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	settings, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if settings.DefaultTimeout != 10*time.Second {
		t.Errorf("DefaultTimeout = %v, want 10s", settings.DefaultTimeout)
	}
	if settings.TranscriptPath != "" {
		t.Errorf("TranscriptPath = %q, want empty", settings.TranscriptPath)
	}
	if settings.Debug {
		t.Error("Debug = true, want false")
	}
	if len(settings.HookFiles) == 0 {
		t.Fatal("HookFiles is empty, want at least the project-local hooks.yml")
	}
	if got := settings.HookFiles[len(settings.HookFiles)-1]; got != "hooks.yml" {
		t.Errorf("last hook file = %q, want hooks.yml", got)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := chdirTemp(t)

	content := `
hook-files:
  - team.yml
  - local.yml
timeout: 30
transcript: /tmp/transcript.jsonl
debug: true
`
	if err := os.WriteFile(filepath.Join(dir, "hookline.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(settings.HookFiles) != 2 || settings.HookFiles[0] != "team.yml" || settings.HookFiles[1] != "local.yml" {
		t.Errorf("HookFiles = %v, want [team.yml local.yml]", settings.HookFiles)
	}
	if settings.DefaultTimeout != 30*time.Second {
		t.Errorf("DefaultTimeout = %v, want 30s", settings.DefaultTimeout)
	}
	if settings.TranscriptPath != "/tmp/transcript.jsonl" {
		t.Errorf("TranscriptPath = %q", settings.TranscriptPath)
	}
	if !settings.Debug {
		t.Error("Debug = false, want true")
	}
}

func TestLoadInvalidTimeout(t *testing.T) {
	dir := chdirTemp(t)

	if err := os.WriteFile(filepath.Join(dir, "hookline.yaml"), []byte("timeout: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.DefaultTimeout != 10*time.Second {
		t.Errorf("DefaultTimeout = %v, want fallback 10s", settings.DefaultTimeout)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOOKLINE_TIMEOUT", "45")

	settings, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.DefaultTimeout != 45*time.Second {
		t.Errorf("DefaultTimeout = %v, want 45s", settings.DefaultTimeout)
	}
}

// chdirTemp moves the test into an empty directory and points HOME at it so
// neither a repository-local nor a user-wide hookline.yaml can leak into
// config loading.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	return dir
}
