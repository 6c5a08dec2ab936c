package source

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"guppi/internal/logger"
)

// ErrGitMissing signals that the git binary itself is not installed, as
// opposed to a git command failing.
var ErrGitMissing = errors.New("'git' command not found")

// runGit is the single choke point for git subprocess calls, swappable in
// tests. Output is combined stdout+stderr, the way git reports progress.
var runGit = func(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// gitClone clones url into dest.
func gitClone(url, dest string) error {
	output, err := runGit("clone", url, dest)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrGitMissing
		}
		return fmt.Errorf("git clone %s failed: %v\n%s", url, err, strings.TrimSpace(output))
	}
	return nil
}

// gitPull updates the clone at dir. The updated return is false when the
// clone was already current, detected from git's own output the same way a
// user would read it.
func gitPull(dir string) (updated bool, err error) {
	output, err := runGit("-C", dir, "pull")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return false, ErrGitMissing
		}
		return false, fmt.Errorf("git pull failed: %v\n%s", err, strings.TrimSpace(output))
	}
	return !strings.Contains(output, "Already up to date"), nil
}

// gitRemoteURL reports the origin URL of the clone at dir, used to display
// where a source came from when the registry predates the url field.
func gitRemoteURL(dir string) (string, error) {
	output, err := runGit("-C", dir, "remote", "get-url", "origin")
	if err != nil {
		return "", fmt.Errorf("git remote get-url failed: %v", err)
	}
	return strings.TrimSpace(output), nil
}

// gitInit creates a fresh repository at dir, used by the init scaffolding.
func gitInit(dir string) error {
	output, err := runGit("init", dir)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return ErrGitMissing
		}
		return fmt.Errorf("git init failed: %v\n%s", err, strings.TrimSpace(output))
	}
	return nil
}

// GitInit is the exported face of gitInit for the scaffolding commands.
func GitInit(dir string) error {
	return gitInit(dir)
}
