package builtin

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// recentSessionMaxAge bounds how old a session file can be and still be
// offered as resumable context at session start.
const recentSessionMaxAge = 7 * 24 * time.Hour

// sessionStartHook reports available context when a new session begins:
// recent session files, learned skills, and the detected project type.
func sessionStartHook() Hook {
	return Hook{
		Name:        "session-start",
		Description: "report resumable sessions, learned skills, and project type at session start",
		Run: func(_ context.Context, env *Env, _ []byte) error {
			sessions, err := env.sessionsDir()
			if err != nil {
				return err
			}
			learnedDir := filepath.Join(env.SessionDir, "skills", "learned")
			if err := os.MkdirAll(learnedDir, 0755); err != nil {
				return err
			}

			recent := findRecentFiles(sessions, "*-session.tmp", env.Now().Add(-recentSessionMaxAge))
			if len(recent) > 0 {
				env.note("SessionStart", "Found %d recent session(s)", len(recent))
				env.note("SessionStart", "Latest: %s", recent[0])
			}

			learned, _ := filepath.Glob(filepath.Join(learnedDir, "*.md"))
			if len(learned) > 0 {
				env.note("SessionStart", "%d learned skill(s) available in %s", len(learned), learnedDir)
			}

			reportProjectType(env)
			return nil
		},
	}
}

// findRecentFiles returns files in dir matching pattern that were modified
// after cutoff, newest first.
func findRecentFiles(dir, pattern string, cutoff time.Time) []string {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil
	}

	type entry struct {
		path    string
		modTime time.Time
	}
	var entries []entry
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		entries = append(entries, entry{path: path, modTime: info.ModTime()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].modTime.After(entries[j].modTime) })

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.path
	}
	return paths
}

// reportProjectType inspects the working directory for well-known project
// markers and reports what it finds.
func reportProjectType(env *Env) {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(env.WorkDir, name))
		return err == nil
	}

	switch {
	case exists("pyproject.toml"):
		env.note("SessionStart", "Poetry project detected")
		if exists("poetry.lock") {
			env.note("SessionStart", "poetry.lock found - dependencies are locked")
		}
	case exists("requirements.txt"):
		env.note("SessionStart", "pip project detected (requirements.txt)")
	case exists("go.mod"):
		env.note("SessionStart", "Go module detected")
	case exists("package.json"):
		env.note("SessionStart", "Node project detected")
	}
}
