package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"guppi/internal/discovery"
	"guppi/internal/exitcode"
	"guppi/internal/installer"
	"guppi/internal/logger"
	"guppi/internal/router"
	"guppi/internal/scaffold"
	"guppi/internal/source"
	"guppi/internal/ui"
)

// Flags for the tool subcommands.
var (
	installFrom   string
	installSource string
	uninstallYes  bool
	initDesc      string
	initTemplate  string
	initNoGit     bool
)

// toolCmd groups the tool lifecycle commands.
var toolCmd = &cobra.Command{
	Use:   "tool",
	Short: "Manage GUPPI tools",
}

// toolInstallCmd installs a tool, either from an explicit path/URL or by
// looking it up in the registered sources.
var toolInstallCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a GUPPI tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		// --from bypasses discovery entirely.
		if installFrom != "" {
			return installToolFrom(name, installFrom)
		}

		logger.Info("Looking for '%s' in sources...\n", name)

		matches := discovery.FindAllTools(paths.Sources, name)
		if len(matches) == 0 {
			return fail(exitcode.NotFound,
				"Tool '%s' not found in any source\nTry: guppi tool search\nOr: guppi tool install %s --from <path>",
				name, name)
		}
		if len(matches) > 1 && installSource == "" {
			var candidates []string
			for _, m := range matches {
				candidates = append(candidates, "  - "+m.Source)
			}
			return fail(exitcode.Validation,
				"Tool '%s' found in multiple sources:\n%s\nPlease specify a source:\n  guppi tool install %s --source <source-name>",
				name, strings.Join(candidates, "\n"), name)
		}

		tool := discovery.FindTool(paths.Sources, name, installSource)
		if tool == nil {
			if installSource != "" {
				return fail(exitcode.NotFound, "Tool '%s' not found in source '%s'", name, installSource)
			}
			return fail(exitcode.NotFound, "Tool '%s' not found", name)
		}

		logger.Info("Found '%s' in source '%s'\n", name, tool.Source)
		return installToolFrom(name, tool.Path)
	},
}

// installToolFrom delegates the actual install to uv and reports the result.
func installToolFrom(name, from string) error {
	logger.Info("Installing tool '%s' from %s...\n", name, from)

	output, err := installer.InstallTool(from)
	if err != nil {
		if errors.Is(err, installer.ErrUVMissing) {
			return fail(exitcode.Subprocess, "%v", err)
		}
		return fail(exitcode.Subprocess, "installing tool: %v", err)
	}
	if out := strings.TrimSpace(output); out != "" {
		fmt.Println(out)
	}
	logger.Info("✓ Tool '%s' installed successfully!\n", name)
	return nil
}

// toolUninstallCmd removes a tool's uv-managed package after confirming it
// is actually installed.
var toolUninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Uninstall a GUPPI tool",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		pkg := router.CommandName(name)

		installed, err := installer.InstalledPackages()
		if err != nil {
			return fail(exitcode.Subprocess, "%v", err)
		}
		if !installed[name] {
			return fail(exitcode.NotFound,
				"Tool '%s' is not installed (%s not in uv tool list)", name, pkg)
		}

		if !uninstallYes && !ui.Confirm(fmt.Sprintf("Uninstall %s?", pkg)) {
			fmt.Println("Aborted.")
			return nil
		}

		logger.Info("Uninstalling %s...\n", pkg)
		output, err := installer.UninstallTool(name)
		if err != nil {
			return fail(exitcode.Subprocess, "uninstalling tool: %v", err)
		}
		if out := strings.TrimSpace(output); out != "" {
			fmt.Println(out)
		}
		logger.Info("✓ Tool '%s' uninstalled successfully!\n", name)
		return nil
	},
}

// toolListCmd lists the installed tools, i.e. the guppi-prefixed
// executables reachable on PATH right now.
var toolListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed GUPPI tools",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tools := router.InstalledTools()
		if jsonOutput {
			return ui.WriteJSON(os.Stdout, tools)
		}
		ui.InstalledTable(os.Stdout, tools)
		return nil
	},
}

// toolSearchCmd lists the tools available across all sources, optionally
// filtered by a query.
var toolSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for available tools in all sources",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tools := discovery.DiscoverAll(paths.Sources)

		var query string
		if len(args) > 0 {
			query = args[0]
			q := strings.ToLower(query)
			var filtered []discovery.Tool
			for _, tool := range tools {
				if strings.Contains(strings.ToLower(tool.Name), q) ||
					strings.Contains(strings.ToLower(tool.Description), q) {
					filtered = append(filtered, tool)
				}
			}
			tools = filtered
		}

		if jsonOutput {
			if tools == nil {
				tools = []discovery.Tool{}
			}
			return ui.WriteJSON(os.Stdout, tools)
		}
		if query != "" && len(tools) == 0 {
			fmt.Printf("No tools found matching '%s'\n", query)
			return nil
		}
		ui.SearchTable(os.Stdout, tools)
		return nil
	},
}

// toolUpdateCmd pulls the registered git sources; the original CLI keeps
// this on the tool group rather than the source group, so both exist.
var toolUpdateCmd = &cobra.Command{
	Use:   "update [source]",
	Short: "Update tool sources",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		return runSourceUpdate(name)
	},
}

// toolInitCmd scaffolds a new tool inside an existing source directory.
var toolInitCmd = &cobra.Command{
	Use:   "init <source-dir> <name>",
	Short: "Initialize a new GUPPI tool in a source directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir, rawName := args[0], args[1]

		info, err := os.Stat(srcDir)
		if err != nil || !info.IsDir() {
			return fail(exitcode.NotFound, "Source directory does not exist: %s", srcDir)
		}
		if ok, _ := discovery.IsValidSource(srcDir); !ok {
			return fail(exitcode.Validation,
				"Not a valid GUPPI source: %s\nInitialize it first with: guppi tool source init %s",
				srcDir, srcDir)
		}

		name := scaffold.SanitizeName(rawName)
		if name == "" {
			return fail(exitcode.Validation, "Tool name '%s' is invalid after sanitization", rawName)
		}
		if name != rawName {
			logger.Info("Tool name sanitized: '%s' -> '%s'\n", rawName, name)
		}

		if _, err := os.Lstat(filepath.Join(srcDir, name)); err == nil {
			return fail(exitcode.Validation,
				"Tool directory already exists: %s\nRemove it first or choose a different name",
				filepath.Join(srcDir, name))
		}

		toolDir, err := scaffold.InitTool(scaffold.ToolOptions{
			SourceDir:   srcDir,
			Name:        name,
			Description: initDesc,
			Template:    initTemplate,
		})
		if err != nil {
			return fail(exitcode.Validation, "%v", err)
		}

		if !initNoGit {
			if err := source.GitInit(toolDir); err != nil {
				logger.Warn("[WARN] Skipping git init: %v\n", err)
			} else {
				logger.Info("Initialized git repository in %s\n", toolDir)
			}
		}

		logger.Info("✓ Initialized GUPPI tool '%s' in %s\n", name, toolDir)
		logger.Info("Install it with: guppi tool install %s --from %s\n", name, toolDir)
		return nil
	},
}

func init() {
	toolInstallCmd.Flags().StringVar(&installFrom, "from", "", "Git URL or local path to install from")
	toolInstallCmd.Flags().StringVar(&installSource, "source", "", "Source name to install from (required if the tool exists in multiple sources)")
	toolUninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip confirmation prompt")
	toolInitCmd.Flags().StringVar(&initDesc, "description", "", "Tool description")
	toolInitCmd.Flags().StringVar(&initTemplate, "template", scaffold.TemplateMinimal, "Skeleton template (minimal or example)")
	toolInitCmd.Flags().BoolVar(&initNoGit, "no-git", false, "Skip git repository initialization")

	toolCmd.AddCommand(toolInstallCmd)
	toolCmd.AddCommand(toolUninstallCmd)
	toolCmd.AddCommand(toolListCmd)
	toolCmd.AddCommand(toolSearchCmd)
	toolCmd.AddCommand(toolUpdateCmd)
	toolCmd.AddCommand(toolInitCmd)

	rootCmd.AddCommand(toolCmd)
}
