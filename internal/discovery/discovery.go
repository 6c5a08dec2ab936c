// Package discovery classifies directories as guppi tools or tool sources by
// reading their pyproject.toml descriptor.
//
// Discovery runs speculatively against arbitrary directories, so it is
// deliberately forgiving: a missing or malformed descriptor simply yields no
// record, never an error. Strict validation only happens on explicit
// registration (source add / init), which lives in the source package.
package discovery

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// SchemaVersion is the only source schema version this CLI knows about.
// Compatibility is a plain string comparison; an unknown version is accepted
// with a warning rather than rejected, so newer sources keep working with
// older CLIs.
const SchemaVersion = "1.0.0"

// DescriptorFile is the per-directory descriptor read by discovery. Tools
// declare themselves in its [tool.guppi] table, sources in
// [tool.guppi.source]; a single-tool source may carry both.
const DescriptorFile = "pyproject.toml"

// defaultDescription fills in for tools that do not describe themselves.
const defaultDescription = "No description"

// Tool is one discoverable tool record. Records are built fresh on every
// scan and never mutated.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version,omitempty"`
	Path        string `json:"path"`             // directory the descriptor was found in
	Source      string `json:"source,omitempty"` // name of the containing source, if known
}

// SourceMeta is the parsed [tool.guppi.source] table of a source root.
type SourceMeta struct {
	Name        string
	Description string
	Version     string // schema version, defaulted to SchemaVersion when absent
}

// ReadDescriptor reads and parses dir's descriptor file, returning the
// [tool.guppi] table. The second return is false when the file is missing,
// unparseable, or carries no guppi metadata; no error is ever surfaced
// because discovery must tolerate unrelated directories.
func ReadDescriptor(dir string) (map[string]any, bool) {
	raw, err := os.ReadFile(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return nil, false
	}
	var data map[string]any
	if err := toml.Unmarshal(raw, &data); err != nil {
		return nil, false
	}
	tool, ok := data["tool"].(map[string]any)
	if !ok {
		return nil, false
	}
	guppi, ok := tool["guppi"].(map[string]any)
	if !ok || len(guppi) == 0 {
		return nil, false
	}
	return guppi, true
}

// IsValidSource reports whether dir carries valid source metadata, i.e. a
// descriptor with a non-empty [tool.guppi.source] table. The returned
// metadata has Version defaulted to SchemaVersion when the source does not
// declare one. Callers decide what a schema mismatch means; this check never
// fails on one.
func IsValidSource(dir string) (bool, *SourceMeta) {
	guppi, ok := ReadDescriptor(dir)
	if !ok {
		return false, nil
	}
	src, ok := guppi["source"].(map[string]any)
	if !ok || len(src) == 0 {
		return false, nil
	}
	meta := &SourceMeta{
		Name:        stringKey(src, "name"),
		Description: stringKey(src, "description"),
		Version:     SchemaVersion,
	}
	if v := stringKey(src, "version"); v != "" {
		meta.Version = v
	}
	return true, meta
}

// CompatibleSchema reports whether a source schema version matches the one
// this CLI supports. Only "1.0.0" exists today, so this is exact equality;
// range semantics for future versions are intentionally not guessed at.
func CompatibleSchema(version string) bool {
	return version == SchemaVersion
}

// DiscoverInPath scans the immediate child directories of root for tool
// descriptors and returns the records in directory iteration order. There is
// no recursion. A nonexistent root yields an empty result, as do children
// with missing, malformed, or tool-free descriptors.
//
// A descriptor carrying a source sub-table but no name key is a source root
// encountered one level too deep (self-describing single-source layouts) and
// is skipped; a descriptor with both is a single-tool source and counts as a
// tool.
func DiscoverInPath(root, sourceName string) []Tool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	var tools []Tool
	for _, entry := range entries {
		dir := filepath.Join(root, entry.Name())

		// os.Stat rather than entry.IsDir: local sources are symlinked into
		// the sources directory and must still count as directories.
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			continue
		}

		guppi, ok := ReadDescriptor(dir)
		if !ok {
			continue
		}
		if _, hasSource := guppi["source"]; hasSource {
			if _, hasName := guppi["name"]; !hasName {
				continue
			}
		}

		tool := Tool{
			Name:        entry.Name(),
			Description: defaultDescription,
			Version:     stringKey(guppi, "version"),
			Path:        dir,
			Source:      sourceName,
		}
		if name := stringKey(guppi, "name"); name != "" {
			tool.Name = name
		}
		if desc := stringKey(guppi, "description"); desc != "" {
			tool.Description = desc
		}
		tools = append(tools, tool)
	}
	return tools
}

// DiscoverAll scans every source directory under sourcesDir and returns the
// union of their tools, ordered by source then directory iteration order.
// Tools are not de-duplicated across sources; disambiguation belongs to the
// caller.
func DiscoverAll(sourcesDir string) []Tool {
	entries, err := os.ReadDir(sourcesDir)
	if err != nil {
		return nil
	}

	var all []Tool
	for _, entry := range entries {
		path := filepath.Join(sourcesDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		all = append(all, DiscoverInPath(path, entry.Name())...)
	}
	return all
}

// FindAllTools returns every discovered tool whose name matches exactly.
func FindAllTools(sourcesDir, name string) []Tool {
	var matches []Tool
	for _, tool := range DiscoverAll(sourcesDir) {
		if tool.Name == name {
			matches = append(matches, tool)
		}
	}
	return matches
}

// FindTool locates a single tool by name, optionally filtered to one source.
// It returns nil when the tool is absent, and also when the name matches in
// several sources and no source filter was given; ambiguity is the caller's
// problem to present.
func FindTool(sourcesDir, name, source string) *Tool {
	matches := FindAllTools(sourcesDir, name)
	if source != "" {
		filtered := matches[:0]
		for _, tool := range matches {
			if tool.Source == source {
				filtered = append(filtered, tool)
			}
		}
		matches = filtered
	}
	if len(matches) == 0 {
		return nil
	}
	if source == "" && len(matches) > 1 {
		return nil
	}
	return &matches[0]
}

// stringKey pulls a string value out of a decoded TOML table, tolerating
// absent keys and wrong types.
func stringKey(table map[string]any, key string) string {
	s, _ := table[key].(string)
	return s
}
