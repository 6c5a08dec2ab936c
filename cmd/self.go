package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"guppi/internal/exitcode"
	"guppi/internal/installer"
	"guppi/internal/logger"
	"guppi/internal/ui"
)

var selfUninstallYes bool

// updateCmd updates the guppi CLI itself through uv.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the guppi CLI to the latest version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Current version: %s\n", Version)
		logger.Info("Checking for updates...\n")

		output, upToDate, err := installer.SelfUpgrade()
		if err != nil {
			return selfSubprocessError("updating guppi", err)
		}
		if upToDate {
			logger.Info("✓ guppi is already up-to-date (version %s)\n", Version)
			return nil
		}
		if out := strings.TrimSpace(output); out != "" {
			fmt.Println(out)
		}
		logger.Info("✓ guppi updated successfully!\n")
		fmt.Println("\nRun 'guppi --version' to see the new version")
		return nil
	},
}

// upgradeCmd is the blunt variant: run the upgrade and show uv's output,
// no up-to-date detection.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade the guppi CLI to the latest version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Upgrading guppi...\n")

		output, _, err := installer.SelfUpgrade()
		if err != nil {
			return selfSubprocessError("upgrading guppi", err)
		}
		if out := strings.TrimSpace(output); out != "" {
			fmt.Println(out)
		}
		logger.Info("✓ guppi upgraded successfully!\n")
		return nil
	},
}

// uninstallCmd removes the guppi CLI itself. The ~/.guppi directory with
// sources and the registry is deliberately preserved so a reinstall picks up
// where the user left off.
var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall the guppi CLI (configuration is preserved)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Current version: %s\n", Version)
		fmt.Println("This will uninstall the guppi CLI tool.")
		fmt.Printf("Your configuration in %s will be preserved.\n\n", paths.Home)

		if !selfUninstallYes && !ui.Confirm("Are you sure you want to uninstall guppi?") {
			fmt.Println("Aborted.")
			return nil
		}

		logger.Info("Uninstalling guppi...\n")
		output, err := installer.SelfUninstall()
		if err != nil {
			return selfSubprocessError("uninstalling guppi", err)
		}
		if out := strings.TrimSpace(output); out != "" {
			fmt.Println(out)
		}

		logger.Info("\n✓ guppi CLI uninstalled successfully!\n")
		fmt.Printf("\nYour configuration is preserved at: %s\n", paths.Home)
		fmt.Println("\nTo reinstall:")
		fmt.Println("  uv tool install guppi")
		return nil
	},
}

// selfSubprocessError maps uv failures from the self-management commands to
// the subprocess exit code, keeping the missing-uv hint intact.
func selfSubprocessError(action string, err error) error {
	if errors.Is(err, installer.ErrUVMissing) {
		return fail(exitcode.Subprocess, "%v", err)
	}
	return fail(exitcode.Subprocess, "%s: %v", action, err)
}

func init() {
	uninstallCmd.Flags().BoolVarP(&selfUninstallYes, "yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(upgradeCmd)
	rootCmd.AddCommand(uninstallCmd)
}
