// Package gitops snapshots the output directory into a local git repository.
package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if _, err := git(dir, nil, "init", "--quiet"); err != nil {
		return err
	}
	return nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Dirty reports whether dir has uncommitted or untracked changes.
func Dirty(dir string) (bool, error) {
	out, err := git(dir, nil, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message, authorName, authorEmail string) (string, error) {
	env := []string{
		"GIT_AUTHOR_NAME=" + authorName,
		"GIT_AUTHOR_EMAIL=" + authorEmail,
		"GIT_COMMITTER_NAME=" + authorName,
		"GIT_COMMITTER_EMAIL=" + authorEmail,
	}

	if _, err := git(dir, nil, "add", "-A"); err != nil {
		return "", err
	}
	if _, err := git(dir, env, "commit", "--quiet", "-m", message); err != nil {
		return "", err
	}
	out, err := git(dir, nil, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Snapshot commits every change under dir, initializing the repository first
// if needed. Paths matching ignore are added to dir/.gitignore and never
// committed. When nothing changed it returns committed=false and no error.
func Snapshot(dir, message, authorName, authorEmail string, ignore ...string) (hash string, committed bool, err error) {
	if !IsRepo(dir) {
		if err := Init(dir); err != nil {
			return "", false, err
		}
	}
	if err := EnsureIgnored(dir, ignore...); err != nil {
		return "", false, err
	}

	dirty, err := Dirty(dir)
	if err != nil || !dirty {
		return "", false, err
	}

	hash, err = CommitAll(dir, message, authorName, authorEmail)
	if err != nil {
		return "", false, err
	}
	return hash, true, nil
}

// EnsureIgnored appends each missing pattern to dir/.gitignore.
func EnsureIgnored(dir string, patterns ...string) error {
	if len(patterns) == 0 {
		return nil
	}
	path := filepath.Join(dir, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(data), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, p := range patterns {
		if !present[p] {
			missing = append(missing, p)
			present[p] = true
		}
	}
	if len(missing) == 0 {
		return nil
	}

	content := string(data)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}

func git(dir string, env []string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
