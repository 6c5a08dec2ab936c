package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guppi/internal/registry"
)

const sourceDescriptor = "[tool.guppi.source]\nname = \"test-source\"\nversion = \"1.0.0\"\n"

func newManager(t *testing.T) *Manager {
	t.Helper()
	home := t.TempDir()
	sources := filepath.Join(home, "sources")
	require.NoError(t, os.MkdirAll(sources, 0755))
	return &Manager{
		SourcesDir:   sources,
		RegistryPath: filepath.Join(home, "registry.toml"),
	}
}

func makeSourceDir(t *testing.T, descriptor string) string {
	t.Helper()
	dir := t.TempDir()
	if descriptor != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(descriptor), 0644))
	}
	return dir
}

// stubGit replaces the git seam. The handler gets the argv and may touch the
// filesystem the way the real git would (e.g. create a clone directory).
func stubGit(t *testing.T, handler func(args []string) (string, error)) *[][]string {
	t.Helper()
	orig := runGit
	var calls [][]string
	runGit = func(args ...string) (string, error) {
		calls = append(calls, args)
		return handler(args)
	}
	t.Cleanup(func() { runGit = orig })
	return &calls
}

func TestAddLocalSource(t *testing.T) {
	mgr := newManager(t)
	target := makeSourceDir(t, sourceDescriptor)

	rec, err := mgr.Add("local-tools", target)
	require.NoError(t, err)
	assert.Equal(t, registry.KindLocal, rec.Type)
	assert.Equal(t, target, rec.Path)

	// A symlink, not a copy: the registered location is a live reference.
	link := filepath.Join(mgr.SourcesDir, "local-tools")
	resolved, err := filepath.EvalSymlinks(link)
	require.NoError(t, err)
	expected, _ := filepath.EvalSymlinks(target)
	assert.Equal(t, expected, resolved)

	reg := registry.Load(mgr.RegistryPath)
	assert.Contains(t, reg.Sources, "local-tools")
	assert.Equal(t, registry.KindLocal, reg.Sources["local-tools"].Type)
}

func TestAddDuplicateNameRejected(t *testing.T) {
	mgr := newManager(t)
	target := makeSourceDir(t, sourceDescriptor)

	_, err := mgr.Add("dup", target)
	require.NoError(t, err)

	_, err = mgr.Add("dup", target)
	assert.ErrorIs(t, err, ErrExists)
}

func TestAddInvalidSourceRollsBack(t *testing.T) {
	mgr := newManager(t)
	target := makeSourceDir(t, "") // no descriptor at all

	_, err := mgr.Add("bad", target)
	assert.ErrorIs(t, err, ErrInvalid)

	// The symlink is gone, the target untouched, the registry empty.
	_, lerr := os.Lstat(filepath.Join(mgr.SourcesDir, "bad"))
	assert.True(t, os.IsNotExist(lerr))
	_, serr := os.Stat(target)
	assert.NoError(t, serr)
	assert.Empty(t, registry.Load(mgr.RegistryPath).Sources)
}

func TestAddToleratesSchemaMismatch(t *testing.T) {
	mgr := newManager(t)
	target := makeSourceDir(t, "[tool.guppi.source]\nname = \"future\"\nversion = \"9.9.9\"\n")

	// Forward compatibility: unknown schema versions warn but do not fail.
	_, err := mgr.Add("future", target)
	assert.NoError(t, err)
}

func TestAddGitSource(t *testing.T) {
	mgr := newManager(t)
	url := "https://example.com/guppi-tools.git"

	calls := stubGit(t, func(args []string) (string, error) {
		if args[0] == "clone" {
			dest := args[2]
			if err := os.MkdirAll(dest, 0755); err != nil {
				return "", err
			}
			return "Cloning into...", os.WriteFile(
				filepath.Join(dest, "pyproject.toml"), []byte(sourceDescriptor), 0644)
		}
		return "", nil
	})

	rec, err := mgr.Add("guppi-tools", url)
	require.NoError(t, err)
	assert.Equal(t, registry.KindGit, rec.Type)
	assert.Equal(t, url, rec.URL)

	require.NotEmpty(t, *calls)
	assert.Equal(t, []string{"clone", url, filepath.Join(mgr.SourcesDir, "guppi-tools")}, (*calls)[0])
}

func TestAddGitCloneFailure(t *testing.T) {
	mgr := newManager(t)
	stubGit(t, func(args []string) (string, error) {
		return "fatal: repository not found", fmt.Errorf("exit status 128")
	})

	_, err := mgr.Add("nope", "https://example.com/missing.git")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git clone")
	assert.Empty(t, registry.Load(mgr.RegistryPath).Sources)
}

func TestRemoveSource(t *testing.T) {
	mgr := newManager(t)
	target := makeSourceDir(t, sourceDescriptor)

	_, err := mgr.Add("gone", target)
	require.NoError(t, err)

	require.NoError(t, mgr.Remove("gone"))

	_, lerr := os.Lstat(filepath.Join(mgr.SourcesDir, "gone"))
	assert.True(t, os.IsNotExist(lerr))
	// The local target survives removal of the link.
	_, serr := os.Stat(filepath.Join(target, "pyproject.toml"))
	assert.NoError(t, serr)
	assert.Empty(t, registry.Load(mgr.RegistryPath).Sources)
}

func TestRemoveUnknownSource(t *testing.T) {
	mgr := newManager(t)
	assert.ErrorIs(t, mgr.Remove("ghost"), ErrNotFound)
}

func TestListBackfillsGitURL(t *testing.T) {
	mgr := newManager(t)

	reg := registry.Load(mgr.RegistryPath)
	reg.Sources["old"] = registry.Source{Type: registry.KindGit, Path: filepath.Join(mgr.SourcesDir, "old")}
	reg.Sources["loc"] = registry.Source{Type: registry.KindLocal, Path: "/somewhere"}
	require.NoError(t, registry.Save(mgr.RegistryPath, reg))

	stubGit(t, func(args []string) (string, error) {
		if len(args) >= 3 && args[2] == "remote" {
			return "https://example.com/old.git\n", nil
		}
		return "", nil
	})

	records := mgr.List()
	require.Len(t, records, 2)
	assert.Equal(t, "loc", records[0].Name) // sorted
	assert.Equal(t, "old", records[1].Name)
	assert.Equal(t, "https://example.com/old.git", records[1].URL)
}

func TestUpdateSkipsLocalAndPullsGit(t *testing.T) {
	mgr := newManager(t)

	// One local source.
	local := makeSourceDir(t, sourceDescriptor)
	_, err := mgr.Add("loc", local)
	require.NoError(t, err)

	// One git source with a .git directory, registered directly.
	gitPath := filepath.Join(mgr.SourcesDir, "git-src")
	require.NoError(t, os.MkdirAll(filepath.Join(gitPath, ".git"), 0755))
	reg := registry.Load(mgr.RegistryPath)
	reg.Sources["git-src"] = registry.Source{Type: registry.KindGit, Path: gitPath}
	require.NoError(t, registry.Save(mgr.RegistryPath, reg))

	// One registered git source whose clone lost its .git directory.
	barePath := filepath.Join(mgr.SourcesDir, "bare")
	require.NoError(t, os.MkdirAll(barePath, 0755))
	reg = registry.Load(mgr.RegistryPath)
	reg.Sources["bare"] = registry.Source{Type: registry.KindGit, Path: barePath}
	require.NoError(t, registry.Save(mgr.RegistryPath, reg))

	calls := stubGit(t, func(args []string) (string, error) {
		return "Already up to date.\n", nil
	})

	summary, err := mgr.Update("")
	require.NoError(t, err)
	assert.Equal(t, UpdateSummary{Updated: 1, Skipped: 2, Errors: 0}, summary)

	require.Len(t, *calls, 1)
	assert.Equal(t, []string{"-C", gitPath, "pull"}, (*calls)[0])
}

func TestUpdateCountsErrors(t *testing.T) {
	mgr := newManager(t)

	gitPath := filepath.Join(mgr.SourcesDir, "broken")
	require.NoError(t, os.MkdirAll(filepath.Join(gitPath, ".git"), 0755))
	reg := registry.Load(mgr.RegistryPath)
	reg.Sources["broken"] = registry.Source{Type: registry.KindGit, Path: gitPath}
	require.NoError(t, registry.Save(mgr.RegistryPath, reg))

	stubGit(t, func(args []string) (string, error) {
		return "error: could not fetch", fmt.Errorf("exit status 1")
	})

	summary, err := mgr.Update("")
	require.NoError(t, err)
	assert.Equal(t, UpdateSummary{Errors: 1}, summary)
}

func TestUpdateUnknownSource(t *testing.T) {
	mgr := newManager(t)
	_, err := mgr.Update("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGitPullDetectsUpToDate(t *testing.T) {
	stubGit(t, func(args []string) (string, error) {
		if strings.Contains(strings.Join(args, " "), "pull") {
			return "Already up to date.\n", nil
		}
		return "", nil
	})

	updated, err := gitPull("/anywhere")
	require.NoError(t, err)
	assert.False(t, updated)
}
