// Package source manages registered tool sources: the registry records, the
// clones and symlinks under the sources directory, and the git calls that
// keep them current.
//
// This is where the strictness asymmetry lives. Passive discovery tolerates
// any directory, but adding a source is an explicit act of intent, so Add
// validates the descriptor hard and rolls the materialized source back on
// failure.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"guppi/internal/discovery"
	"guppi/internal/logger"
	"guppi/internal/registry"
)

var (
	// ErrExists rejects a duplicate source name on add.
	ErrExists = errors.New("source already exists")

	// ErrNotFound reports an unknown source name on remove or update.
	ErrNotFound = errors.New("source not found")

	// ErrInvalid rejects a directory lacking [tool.guppi.source] metadata
	// during explicit registration.
	ErrInvalid = errors.New("not a valid GUPPI tool source")
)

// Manager operates on one registry file and one sources directory, both
// passed in explicitly so tests can run against temp directories.
type Manager struct {
	SourcesDir   string
	RegistryPath string
}

// Record pairs a source name with its registry entry for listing.
type Record struct {
	Name string `json:"name"`
	registry.Source
}

// Add registers a new source. A URL naming an existing local directory is
// symlinked in place (a live reference, never copied); anything else is
// treated as a git URL and cloned. The materialized directory must then pass
// source validation — carry a descriptor with [tool.guppi.source] — or the
// whole add is rolled back. A schema version other than the supported one is
// only a warning.
func (m *Manager) Add(name, url string) (*Record, error) {
	reg := registry.Load(m.RegistryPath)
	if _, ok := reg.Sources[name]; ok {
		return nil, fmt.Errorf("%w: '%s'", ErrExists, name)
	}

	dest := filepath.Join(m.SourcesDir, name)
	if _, err := os.Lstat(dest); err == nil {
		return nil, fmt.Errorf("%w: '%s' at %s", ErrExists, name, dest)
	}

	record := Record{Name: name}
	if info, err := os.Stat(url); err == nil && info.IsDir() {
		abs, err := filepath.Abs(url)
		if err != nil {
			return nil, err
		}
		if err := os.Symlink(abs, dest); err != nil {
			return nil, fmt.Errorf("link local source: %w", err)
		}
		record.Source = registry.Source{Type: registry.KindLocal, Path: abs}
		logger.Debug("[DEBUG] Linked local source '%s' -> %s\n", name, abs)
	} else {
		if err := gitClone(url, dest); err != nil {
			return nil, err
		}
		record.Source = registry.Source{Type: registry.KindGit, URL: url, Path: dest}
		logger.Debug("[DEBUG] Cloned source '%s' to %s\n", name, dest)
	}

	// Strict-on-intent: the directory we just materialized has to identify
	// itself as a source, otherwise undo everything.
	ok, meta := discovery.IsValidSource(dest)
	if !ok {
		m.rollback(dest)
		return nil, fmt.Errorf("%w: %s has no [tool.guppi.source] metadata in %s",
			ErrInvalid, url, discovery.DescriptorFile)
	}
	if !discovery.CompatibleSchema(meta.Version) {
		logger.Warn("[WARN] Source '%s' declares schema version %s (supported: %s); continuing anyway\n",
			name, meta.Version, discovery.SchemaVersion)
	}

	reg.Sources[name] = record.Source
	if err := registry.Save(m.RegistryPath, reg); err != nil {
		m.rollback(dest)
		return nil, err
	}
	return &record, nil
}

// rollback removes a just-materialized source after a failed add. RemoveAll
// deletes a symlink itself, not its target, so local sources stay untouched.
func (m *Manager) rollback(dest string) {
	if err := os.RemoveAll(dest); err != nil {
		logger.Error("[ERROR] Failed to clean up %s: %v\n", dest, err)
	}
}

// Remove unregisters a source and deletes its clone or symlink.
func (m *Manager) Remove(name string) error {
	reg := registry.Load(m.RegistryPath)
	src, ok := reg.Sources[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrNotFound, name)
	}

	dest := filepath.Join(m.SourcesDir, name)
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("remove %s: %w", dest, err)
	}
	if src.Type == registry.KindLocal {
		logger.Debug("[DEBUG] Removed link to local source '%s' (target %s untouched)\n", name, src.Path)
	}

	delete(reg.Sources, name)
	return registry.Save(m.RegistryPath, reg)
}

// List returns the registered sources sorted by name. Git sources that
// predate the url field get their origin URL backfilled for display.
func (m *Manager) List() []Record {
	reg := registry.Load(m.RegistryPath)

	records := make([]Record, 0, len(reg.Sources))
	for _, name := range reg.Names() {
		src := reg.Sources[name]
		if src.Type == registry.KindGit && src.URL == "" {
			if url, err := gitRemoteURL(filepath.Join(m.SourcesDir, name)); err == nil {
				src.URL = url
			}
		}
		records = append(records, Record{Name: name, Source: src})
	}
	return records
}

// UpdateSummary counts the outcome of an update sweep.
type UpdateSummary struct {
	Updated int
	Skipped int
	Errors  int
}

// Update pulls git sources. With a name it updates just that source (unknown
// names are ErrNotFound); with an empty name it sweeps every registered
// source. Local sources are live references and are skipped, as is anything
// without a .git directory. Individual pull failures are counted and logged
// but do not stop the sweep.
func (m *Manager) Update(name string) (UpdateSummary, error) {
	reg := registry.Load(m.RegistryPath)

	var names []string
	if name != "" {
		if _, ok := reg.Sources[name]; !ok {
			return UpdateSummary{}, fmt.Errorf("%w: '%s'", ErrNotFound, name)
		}
		names = []string{name}
	} else {
		names = reg.Names()
	}

	var summary UpdateSummary
	for _, n := range names {
		src := reg.Sources[n]
		path := filepath.Join(m.SourcesDir, n)

		if src.Type == registry.KindLocal {
			logger.Info("Skipping '%s' (local source)\n", n)
			summary.Skipped++
			continue
		}
		if _, err := os.Stat(filepath.Join(path, ".git")); err != nil {
			logger.Info("Skipping '%s' (not a git repository)\n", n)
			summary.Skipped++
			continue
		}

		logger.Info("Updating '%s'...\n", n)
		updated, err := gitPull(path)
		if err != nil {
			logger.Error("  Error: %v\n", err)
			summary.Errors++
			continue
		}
		if updated {
			logger.Info("  Updated\n")
		} else {
			logger.Info("  Already up to date\n")
		}
		summary.Updated++
	}
	return summary, nil
}
