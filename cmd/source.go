package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"guppi/internal/discovery"
	"guppi/internal/exitcode"
	"guppi/internal/logger"
	"guppi/internal/registry"
	"guppi/internal/scaffold"
	"guppi/internal/source"
	"guppi/internal/ui"
)

// Flags for the source subcommands.
var (
	sourceRemoveYes bool
	sourceInitName  string
	sourceInitDesc  string
	sourceInitGit   bool
)

// sourceCmd groups source management under the tool command, matching the
// CLI surface `guppi tool source <verb>`.
var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage tool sources",
}

// sourceManager builds the manager over the resolved home layout.
func sourceManager() *source.Manager {
	return &source.Manager{SourcesDir: paths.Sources, RegistryPath: paths.Registry}
}

// sourceAddCmd registers a new source: a symlink for local directories, a
// git clone for everything else. Registration validates the source marker
// strictly and rolls back on failure — unlike passive discovery, adding is
// an explicit act and mistakes should surface immediately.
var sourceAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a tool source (git URL or local path)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]

		logger.Info("Adding source '%s' from %s...\n", name, url)

		rec, err := sourceManager().Add(name, url)
		if err != nil {
			switch {
			case errors.Is(err, source.ErrExists), errors.Is(err, source.ErrInvalid):
				return fail(exitcode.Validation, "%v", err)
			case errors.Is(err, source.ErrGitMissing):
				return fail(exitcode.Subprocess, "%v", err)
			default:
				return fail(exitcode.Subprocess, "adding source: %v", err)
			}
		}

		if rec.Type == registry.KindLocal {
			logger.Info("✓ Linked local source '%s' -> %s\n", name, rec.Path)
		} else {
			logger.Info("✓ Cloned source '%s' to %s\n", name, rec.Path)
		}
		return nil
	},
}

// sourceListCmd lists the registered sources.
var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tool sources",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records := sourceManager().List()
		if jsonOutput {
			if records == nil {
				records = []source.Record{}
			}
			return ui.WriteJSON(os.Stdout, records)
		}
		ui.SourcesTable(os.Stdout, records)
		return nil
	},
}

// sourceUpdateCmd pulls git sources, one or all.
var sourceUpdateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update tool sources (git pull)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		return runSourceUpdate(name)
	},
}

// runSourceUpdate is shared between `tool update` and `tool source update`.
func runSourceUpdate(name string) error {
	summary, err := sourceManager().Update(name)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return fail(exitcode.NotFound, "%v", err)
		}
		return fail(exitcode.Subprocess, "updating sources: %v", err)
	}

	if summary.Updated == 0 && summary.Skipped == 0 && summary.Errors == 0 {
		fmt.Println("No sources to update")
		return nil
	}

	fmt.Println()
	logger.Info("Updated: %d, Skipped: %d, Errors: %d\n",
		summary.Updated, summary.Skipped, summary.Errors)

	// Per-source errors were already logged line by line.
	if summary.Errors > 0 {
		return failSilent(exitcode.Subprocess)
	}
	return nil
}

// sourceRemoveCmd unregisters a source and deletes its clone or symlink.
var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a tool source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		if !sourceRemoveYes && !ui.Confirm(fmt.Sprintf("Remove source '%s'?", name)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := sourceManager().Remove(name); err != nil {
			if errors.Is(err, source.ErrNotFound) {
				return fail(exitcode.NotFound, "%v", err)
			}
			return fail(exitcode.Subprocess, "removing source: %v", err)
		}
		logger.Info("✓ Removed source '%s'\n", name)
		return nil
	},
}

// sourceInitCmd turns a directory into a tool source by writing the marker
// descriptor and companion files.
var sourceInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a directory as a GUPPI tool source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fail(exitcode.Validation, "resolving %s: %v", dir, err)
		}
		if err := os.MkdirAll(abs, 0755); err != nil {
			return fail(exitcode.Validation, "creating %s: %v", abs, err)
		}

		if ok, _ := discovery.IsValidSource(abs); ok {
			return fail(exitcode.Validation, "%s is already a GUPPI tool source", abs)
		}

		rawName := sourceInitName
		if rawName == "" {
			rawName = filepath.Base(abs)
		}
		name := scaffold.SanitizeName(rawName)
		if name == "" {
			return fail(exitcode.Validation, "Source name '%s' is invalid after sanitization", rawName)
		}

		// Writing marker files into a directory that already has content
		// deserves a second look from the user.
		if entries, err := os.ReadDir(abs); err == nil && len(entries) > 0 {
			if !ui.Confirm(fmt.Sprintf("Directory %s is not empty. Initialize anyway?", abs)) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		if err := scaffold.InitSource(scaffold.SourceOptions{
			Dir:         abs,
			Name:        name,
			Description: sourceInitDesc,
		}); err != nil {
			return fail(exitcode.Validation, "%v", err)
		}

		if sourceInitGit {
			if err := source.GitInit(abs); err != nil {
				logger.Warn("[WARN] Skipping git init: %v\n", err)
			} else {
				logger.Info("Initialized git repository in %s\n", abs)
			}
		}

		logger.Info("✓ Initialized GUPPI tool source '%s' in %s\n", name, abs)
		logger.Info("Register it with: guppi tool source add %s %s\n", name, abs)
		return nil
	},
}

func init() {
	sourceRemoveCmd.Flags().BoolVarP(&sourceRemoveYes, "yes", "y", false, "Skip confirmation prompt")
	sourceInitCmd.Flags().StringVar(&sourceInitName, "name", "", "Source name (defaults to the directory name)")
	sourceInitCmd.Flags().StringVar(&sourceInitDesc, "description", "", "Source description")
	sourceInitCmd.Flags().BoolVar(&sourceInitGit, "git", false, "Initialize a git repository")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceUpdateCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceInitCmd)

	toolCmd.AddCommand(sourceCmd)
}
