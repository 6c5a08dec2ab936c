package router

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// InstalledTool is one guppi-prefixed executable found on PATH.
type InstalledTool struct {
	Name string `json:"name"` // tool name with the guppi- prefix stripped
	Path string `json:"path"` // absolute path of the executable
}

// InstalledTools scans every PATH directory for executables matching the
// naming convention and returns them sorted by tool name. The first hit per
// name wins, mirroring how the shell would resolve the executable; later
// shadowed copies are ignored. Unreadable PATH entries are skipped.
func InstalledTools() []InstalledTool {
	return installedToolsIn(filepath.SplitList(os.Getenv("PATH")))
}

func installedToolsIn(dirs []string) []InstalledTool {
	var installed []InstalledTool
	seen := make(map[string]bool)

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !strings.HasPrefix(entry.Name(), Prefix) {
				continue
			}
			full := filepath.Join(dir, entry.Name())

			// Stat (not entry.Info) so symlinked executables count.
			info, err := os.Stat(full)
			if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
				continue
			}

			name := strings.TrimPrefix(entry.Name(), Prefix)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			installed = append(installed, InstalledTool{Name: name, Path: full})
		}
	}

	sort.Slice(installed, func(i, j int) bool { return installed[i].Name < installed[j].Name })
	return installed
}
