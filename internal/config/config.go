package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"guppi/internal/logger"
)

// Paths collects every filesystem location guppi touches under the user's
// home directory. Commands resolve one Paths value at startup and pass it
// down explicitly; nothing below the cmd layer reads ambient state.
type Paths struct {
	Home     string // ~/.guppi
	Sources  string // ~/.guppi/sources (clones and symlinks of tool sources)
	Registry string // ~/.guppi/registry.toml (source records)
	Settings string // ~/.guppi/config.yaml (optional CLI settings)
}

// Settings are optional user preferences read from ~/.guppi/config.yaml.
// The file is entirely optional; a missing or malformed file falls back to
// defaults with at most a warning.
type Settings struct {
	SourcesDir  string `yaml:"sources_dir"`  // override for the sources directory
	NoColor     bool   `yaml:"no_color"`     // disable colored output
	DefaultJSON bool   `yaml:"default_json"` // behave as if --json was always passed
}

// DefaultPaths resolves the guppi home layout, creating the home and sources
// directories if they do not exist yet.
func DefaultPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}
	return PathsIn(filepath.Join(home, ".guppi"))
}

// PathsIn builds the standard layout rooted at the given guppi home. Split
// out from DefaultPaths so tests can run against a temp directory.
func PathsIn(guppiHome string) (Paths, error) {
	p := Paths{
		Home:     guppiHome,
		Sources:  filepath.Join(guppiHome, "sources"),
		Registry: filepath.Join(guppiHome, "registry.toml"),
		Settings: filepath.Join(guppiHome, "config.yaml"),
	}
	if err := os.MkdirAll(p.Sources, 0755); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// LoadSettings reads the optional settings file. A missing file yields zero
// settings; a malformed file is logged as a warning and likewise yields zero
// settings, because preferences must never block the CLI.
func LoadSettings(path string) Settings {
	var s Settings
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		logger.Warn("[WARN] Ignoring malformed settings file %s: %v\n", path, err)
		return Settings{}
	}
	return s
}

// Apply folds settings overrides into the resolved paths.
func (s Settings) Apply(p Paths) Paths {
	if s.SourcesDir != "" {
		p.Sources = s.SourcesDir
	}
	return p
}
