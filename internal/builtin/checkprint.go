package builtin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// checkPrintHook scans git-modified Python files for print() statements that
// look like leftover debug code and warns about each occurrence. It is meant
// for Stop rules: after a response completes, the developer gets a nudge
// before the debug output ships.
func checkPrintHook() Hook {
	return Hook{
		Name:        "check-print",
		Description: "warn about print() statements in git-modified Python files",
		Run: func(ctx context.Context, env *Env, _ []byte) error {
			if !insideGitRepo(ctx, env.WorkDir) {
				return nil
			}

			files, err := modifiedPythonFiles(ctx, env.WorkDir)
			if err != nil {
				// Git trouble is never worth failing a Stop hook over.
				return nil
			}

			found := false
			for _, file := range files {
				for _, hit := range findPrintStatements(filepath.Join(env.WorkDir, file)) {
					env.note("Hook", "WARNING: print() found in %s:%d", file, hit)
					found = true
				}
			}

			if found {
				env.note("Hook", "Consider removing print() statements or using logger before committing")
			}
			return nil
		},
	}
}

// insideGitRepo reports whether dir is inside a git work tree.
func insideGitRepo(ctx context.Context, dir string) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--git-dir")
	cmd.Dir = dir
	return cmd.Run() == nil
}

// modifiedPythonFiles lists .py files changed relative to HEAD.
func modifiedPythonFiles(ctx context.Context, dir string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if !strings.HasSuffix(line, ".py") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, line)); err != nil {
			continue
		}
		files = append(files, line)
	}
	return files, nil
}

// findPrintStatements returns the 1-based line numbers of likely debug
// print() calls in a Python source file. Comment lines and lines that are
// part of docstring markers are skipped; this is a heuristic, not a parser.
func findPrintStatements(path string) []int {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var hits []int
	for i, line := range strings.Split(string(content), "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "#") {
			continue
		}
		if strings.Contains(line, `"""`) || strings.Contains(line, "'''") {
			continue
		}
		if strings.Contains(line, "print(") {
			hits = append(hits, i+1)
		}
	}
	return hits
}
