// Package installer wraps the external package installer (uv) that actually
// installs, lists, and removes tool executables.
//
// guppi never touches artifacts itself: every install path funnels into a uv
// invocation and the package's job is argument construction, output capture,
// and error classification. All calls are synchronous with no timeout; a
// hung uv hangs the invocation, which is an accepted limitation.
package installer

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"guppi/internal/logger"
	"guppi/internal/router"
)

// ErrUVMissing signals that the uv binary is not installed at all, which
// callers report with an install hint rather than a raw exec error.
var ErrUVMissing = errors.New("'uv' command not found. Please install uv first")

// selfPackage is what guppi itself is published as; self-update and
// self-uninstall operate on this name.
const selfPackage = "guppi"

// runUV is the single choke point for uv subprocess calls, swappable in
// tests. Output is combined stdout+stderr because uv splits its reporting
// across both.
var runUV = func(args ...string) (string, error) {
	cmd := exec.Command("uv", args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// uv runs a uv subcommand and classifies failure: missing binary vs failed
// invocation. The captured output rides along either way so callers can show
// uv's own diagnostics.
func uv(args ...string) (string, error) {
	output, err := runUV(args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrUVMissing
		}
		return output, fmt.Errorf("uv %s failed: %v\n%s",
			strings.Join(args, " "), err, strings.TrimSpace(output))
	}
	return output, nil
}

// InstallTool installs a tool from a path or git URL. An existing local
// directory is installed editable, so source checkouts stay live; anything
// else is assumed to be a git URL. Returns uv's output for display.
func InstallTool(fromPath string) (string, error) {
	if info, err := os.Stat(fromPath); err == nil && info.IsDir() {
		return uv("tool", "install", "--editable", fromPath)
	}
	return uv("tool", "install", "git+"+fromPath)
}

// InstalledPackages lists the uv-managed packages matching the guppi naming
// convention, as a set of tool names (prefix stripped). Used by uninstall to
// refuse work on tools uv does not know about.
func InstalledPackages() (map[string]bool, error) {
	output, err := uv("tool", "list")
	if err != nil {
		return nil, err
	}

	installed := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.HasPrefix(fields[0], router.Prefix) {
			continue
		}
		installed[strings.TrimPrefix(fields[0], router.Prefix)] = true
	}
	return installed, nil
}

// UninstallTool removes a tool's uv-managed package.
func UninstallTool(name string) (string, error) {
	return uv("tool", "uninstall", router.CommandName(name))
}

// SelfUpgrade upgrades the guppi CLI itself. upToDate reports that uv found
// nothing to do, detected from its output the same way a user would read it.
func SelfUpgrade() (output string, upToDate bool, err error) {
	output, err = uv("tool", "upgrade", selfPackage)
	if err != nil {
		return output, false, err
	}
	return output, strings.Contains(output, "Nothing to upgrade"), nil
}

// SelfUninstall removes the guppi CLI, leaving ~/.guppi and every installed
// tool in place.
func SelfUninstall() (string, error) {
	return uv("tool", "uninstall", selfPackage)
}
