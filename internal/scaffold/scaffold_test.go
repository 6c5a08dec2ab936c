package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guppi/internal/discovery"
)

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"my-tool":          "my-tool",
		"My Tool Name!":    "my-tool-name",
		"my tools & stuff": "my-tools-stuff",
		"API_Service":      "api-service",
		"@@@":              "",
		"  spaced  ":       "spaced",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, SanitizeName(input), "input %q", input)
	}
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "guppi_my_tool", PackageName("my-tool"))
	assert.Equal(t, "guppi_api_service", PackageName("api-service"))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(raw)
}

func TestInitToolMinimal(t *testing.T) {
	srcDir := t.TempDir()

	toolDir, err := InitTool(ToolOptions{
		SourceDir:   srcDir,
		Name:        "my-tool",
		Description: "My test tool",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(srcDir, "my-tool"), toolDir)

	pyproject := readFile(t, filepath.Join(toolDir, "pyproject.toml"))
	assert.Contains(t, pyproject, `name = "guppi-my-tool"`)
	assert.Contains(t, pyproject, `description = "My test tool"`)
	assert.Contains(t, pyproject, `guppi-my-tool = "guppi_my_tool.cli:app"`)
	assert.Contains(t, pyproject, "[tool.guppi]")
	assert.Contains(t, pyproject, `name = "my-tool"`)

	cli := readFile(t, filepath.Join(toolDir, "src", "guppi_my_tool", "cli.py"))
	assert.Contains(t, cli, "import typer")
	assert.Contains(t, cli, `app = typer.Typer(help="My test tool")`)
	assert.Contains(t, cli, "def hello")

	initPy := readFile(t, filepath.Join(toolDir, "src", "guppi_my_tool", "__init__.py"))
	assert.Contains(t, initPy, `__version__ = "0.1.0"`)
	assert.Contains(t, initPy, "GUPPI my-tool tool")

	readme := readFile(t, filepath.Join(toolDir, "README.md"))
	assert.Contains(t, readme, "# GUPPI my-tool")
	assert.Contains(t, readme, "My test tool")
	assert.Contains(t, readme, "## Installation")
	assert.Contains(t, readme, "## Usage")
	assert.Contains(t, readme, "guppi my-tool --help")

	assert.Contains(t, readFile(t, filepath.Join(toolDir, ".gitignore")), "__pycache__/")

	// The scaffolded tool is immediately discoverable.
	tools := discovery.DiscoverInPath(srcDir, "test")
	require.Len(t, tools, 1)
	assert.Equal(t, "my-tool", tools[0].Name)
	assert.Equal(t, "My test tool", tools[0].Description)
}

func TestInitToolExampleTemplate(t *testing.T) {
	srcDir := t.TempDir()

	toolDir, err := InitTool(ToolOptions{
		SourceDir:   srcDir,
		Name:        "example-tool",
		Description: "Example with features",
		Template:    TemplateExample,
	})
	require.NoError(t, err)

	cli := readFile(t, filepath.Join(toolDir, "src", "guppi_example_tool", "cli.py"))
	assert.Contains(t, cli, "from typing_extensions import Annotated")
	assert.Contains(t, cli, "def hello")
	assert.Contains(t, cli, "def info")
	assert.Contains(t, cli, "--excited")
}

func TestInitToolDefaultDescription(t *testing.T) {
	srcDir := t.TempDir()

	toolDir, err := InitTool(ToolOptions{SourceDir: srcDir, Name: "test-tool"})
	require.NoError(t, err)

	pyproject := readFile(t, filepath.Join(toolDir, "pyproject.toml"))
	assert.Contains(t, pyproject, `description = "A GUPPI tool"`)
}

func TestInitToolExistingDirectory(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(srcDir, "existing-tool"), 0755))

	_, err := InitTool(ToolOptions{SourceDir: srcDir, Name: "existing-tool"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestInitToolUnknownTemplate(t *testing.T) {
	_, err := InitTool(ToolOptions{SourceDir: t.TempDir(), Name: "x", Template: "fancy"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown template")
}

func TestInitSource(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, InitSource(SourceOptions{
		Dir:         dir,
		Name:        "my-tools",
		Description: "My personal tools",
	}))

	pyproject := readFile(t, filepath.Join(dir, "pyproject.toml"))
	assert.Contains(t, pyproject, "[tool.guppi.source]")
	assert.Contains(t, pyproject, `name = "my-tools"`)
	assert.Contains(t, pyproject, `description = "My personal tools"`)
	assert.Contains(t, pyproject, `version = "1.0.0"`)

	assert.FileExists(t, filepath.Join(dir, "README.md"))
	assert.FileExists(t, filepath.Join(dir, ".gitignore"))

	// The freshly initialized directory passes source validation.
	ok, meta := discovery.IsValidSource(dir)
	require.True(t, ok)
	assert.Equal(t, "my-tools", meta.Name)
	assert.Equal(t, discovery.SchemaVersion, meta.Version)
}
