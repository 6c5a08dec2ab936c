// Package scaffold renders the embedded skeletons behind `guppi tool init`
// and `guppi tool source init`.
//
// The generated layout is a uv-installable Python package whose pyproject
// carries the guppi descriptor tables, so a freshly scaffolded tool is
// immediately discoverable and installable.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"guppi/internal/discovery"
)

//go:embed templates
var templatesFS embed.FS

// TemplateMinimal and TemplateExample select the CLI skeleton flavor for
// tool init.
const (
	TemplateMinimal = "minimal"
	TemplateExample = "example"
)

// DefaultToolDescription fills in when tool init gets no --description.
const DefaultToolDescription = "A GUPPI tool"

// DefaultSourceDescription fills in when source init gets no --description.
const DefaultSourceDescription = "A GUPPI tool source"

var nameRuns = regexp.MustCompile(`[^a-z0-9]+`)

// SanitizeName normalizes a user-supplied tool or source name: lowercase,
// every run of characters outside [a-z0-9] collapsed to a single dash, and
// leading/trailing dashes trimmed. May return "" for names with no usable
// characters; callers treat that as invalid.
func SanitizeName(raw string) string {
	return strings.Trim(nameRuns.ReplaceAllString(strings.ToLower(raw), "-"), "-")
}

// PackageName derives the Python package name for a tool, e.g. "my-tool"
// becomes "guppi_my_tool".
func PackageName(name string) string {
	return "guppi_" + strings.ReplaceAll(name, "-", "_")
}

// ToolOptions parameterizes a tool scaffold. Name must already be sanitized.
type ToolOptions struct {
	SourceDir   string // existing, validated source directory to create the tool in
	Name        string
	Description string
	Template    string // TemplateMinimal (default) or TemplateExample
}

// InitTool renders a new tool skeleton under SourceDir/Name:
//
//	pyproject.toml  [project] + [tool.guppi] metadata
//	README.md, .gitignore
//	src/guppi_<name>/__init__.py
//	src/guppi_<name>/cli.py
//
// The tool directory must not exist yet. Returns the created directory.
func InitTool(opts ToolOptions) (string, error) {
	if opts.Description == "" {
		opts.Description = DefaultToolDescription
	}

	cliTemplate := "cli_minimal.py.tmpl"
	switch opts.Template {
	case "", TemplateMinimal:
	case TemplateExample:
		cliTemplate = "cli_example.py.tmpl"
	default:
		return "", fmt.Errorf("unknown template '%s' (expected %s or %s)",
			opts.Template, TemplateMinimal, TemplateExample)
	}

	toolDir := filepath.Join(opts.SourceDir, opts.Name)
	if _, err := os.Lstat(toolDir); err == nil {
		return "", fmt.Errorf("tool directory already exists: %s", toolDir)
	}

	pkg := PackageName(opts.Name)
	data := map[string]string{
		"Name":        opts.Name,
		"Description": opts.Description,
		"Package":     pkg,
	}

	pkgDir := filepath.Join(toolDir, "src", pkg)
	if err := os.MkdirAll(pkgDir, 0755); err != nil {
		return "", err
	}

	files := map[string]string{
		filepath.Join(toolDir, discovery.DescriptorFile): "templates/tool/pyproject.toml.tmpl",
		filepath.Join(toolDir, "README.md"):              "templates/tool/README.md.tmpl",
		filepath.Join(toolDir, ".gitignore"):             "templates/tool/gitignore.tmpl",
		filepath.Join(pkgDir, "__init__.py"):             "templates/tool/init.py.tmpl",
		filepath.Join(pkgDir, "cli.py"):                  "templates/tool/" + cliTemplate,
	}
	if err := renderAll(files, data); err != nil {
		// Leave nothing half-built behind.
		_ = os.RemoveAll(toolDir)
		return "", err
	}
	return toolDir, nil
}

// SourceOptions parameterizes a source scaffold. Name must already be
// sanitized.
type SourceOptions struct {
	Dir         string // existing directory to initialize in place
	Name        string
	Description string
}

// InitSource writes the source marker files (pyproject.toml with
// [tool.guppi.source], README.md, .gitignore) directly into Dir. The caller
// is responsible for refusing directories that are already valid sources and
// for confirming non-empty ones.
func InitSource(opts SourceOptions) error {
	if opts.Description == "" {
		opts.Description = DefaultSourceDescription
	}
	data := map[string]string{
		"Name":          opts.Name,
		"Description":   opts.Description,
		"SchemaVersion": discovery.SchemaVersion,
	}
	files := map[string]string{
		filepath.Join(opts.Dir, discovery.DescriptorFile): "templates/source/pyproject.toml.tmpl",
		filepath.Join(opts.Dir, "README.md"):              "templates/source/README.md.tmpl",
		filepath.Join(opts.Dir, ".gitignore"):             "templates/source/gitignore.tmpl",
	}
	return renderAll(files, data)
}

// renderAll renders each embedded template to its destination path.
func renderAll(files map[string]string, data map[string]string) error {
	for dest, src := range files {
		if err := renderFile(dest, src, data); err != nil {
			return err
		}
	}
	return nil
}

func renderFile(dest, templatePath string, data map[string]string) error {
	raw, err := templatesFS.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("load template %s: %w", templatePath, err)
	}
	tmpl, err := template.New(filepath.Base(templatePath)).Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", templatePath, err)
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return fmt.Errorf("render template %s: %w", templatePath, err)
	}
	if err := os.WriteFile(dest, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return nil
}
