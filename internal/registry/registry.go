// Package registry persists the list of registered tool sources as a small
// TOML file under the guppi home directory.
//
// The registry is the authoritative record of which sources exist and what
// kind they are; the sources directory next to it holds the actual clones
// and symlinks. It is loaded in full at the start of a command and rewritten
// in full after a mutation — there is no incremental update and no locking,
// under the single-interactive-user assumption.
package registry

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"

	"guppi/internal/logger"
)

// Kind distinguishes how a source arrived on disk.
type Kind string

const (
	// KindLocal is a symlink to a directory elsewhere on the machine. Local
	// sources are live references and are never updated or copied.
	KindLocal Kind = "local"

	// KindGit is a cloned repository, updated with `git pull`.
	KindGit Kind = "git"
)

// Source is one registered tool source.
type Source struct {
	Type Kind   `toml:"type" json:"type"`
	URL  string `toml:"url,omitempty" json:"url,omitempty"` // clone URL, git sources only
	Path string `toml:"path" json:"path"`                   // on-disk location under the sources dir
}

// Registry maps source names to their records.
type Registry struct {
	Sources map[string]Source `toml:"sources"`
}

// Load reads the registry file. A missing file is a fresh registry, and a
// malformed one is downgraded to a warning plus a fresh registry so a damaged
// file never bricks the CLI; the next successful mutation rewrites it.
func Load(path string) *Registry {
	reg := &Registry{Sources: make(map[string]Source)}

	raw, err := os.ReadFile(path)
	if err != nil {
		return reg
	}
	if err := toml.Unmarshal(raw, reg); err != nil {
		logger.Warn("[WARN] Ignoring malformed registry %s: %v\n", path, err)
		return &Registry{Sources: make(map[string]Source)}
	}
	if reg.Sources == nil {
		reg.Sources = make(map[string]Source)
	}
	return reg
}

// Save rewrites the registry file wholesale.
func Save(path string, reg *Registry) error {
	raw, err := toml.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	logger.Debug("[DEBUG] Writing registry to %s:\n%s", path, raw)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("write registry %s: %w", path, err)
	}
	return nil
}

// Names returns the registered source names in sorted order, for stable
// listings and update sweeps.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
