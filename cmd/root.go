package cmd

import (
	"errors"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"guppi/internal/config"
	"guppi/internal/logger"
	"guppi/internal/ui"
)

// Version of the guppi CLI, reported by --version and the self-update
// commands.
const Version = "0.4.0"

// debugFlag toggles debug logging via the global `--debug` flag.
var debugFlag bool

// jsonOutput switches listing commands to machine-readable output via the
// global `--json` flag (or the default_json setting).
var jsonOutput bool

// paths is the resolved ~/.guppi layout, loaded once per invocation in the
// persistent pre-run hook and passed down into the internal packages.
var paths config.Paths

// rootCmd is the base command for the guppi CLI. Only management commands
// hang off it; tool invocations never reach cobra (see main.go).
var rootCmd = &cobra.Command{
	Use:     "guppi",
	Short:   "General Use Personal Program Interface",
	Long:    "GUPPI - General Use Personal Program Interface\n\nA plugin framework for composing tools. Unknown subcommands are routed to\nguppi-<name> executables on PATH.",
	Version: Version,

	// Errors are reported through the logger with documented exit codes;
	// cobra's own printing would duplicate them.
	SilenceUsage:  true,
	SilenceErrors: true,

	// Resolve the home layout and settings before any subcommand runs.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(debugFlag)

		p, err := config.DefaultPaths()
		if err != nil {
			return fail(1, "resolving guppi home: %v", err)
		}
		settings := config.LoadSettings(p.Settings)
		if settings.NoColor {
			color.NoColor = true
		}
		if settings.DefaultJSON {
			jsonOutput = true
		}
		paths = settings.Apply(p)
		return nil
	},

	// Bare `guppi` shows the welcome panel ahead of the regular help.
	Run: func(cmd *cobra.Command, args []string) {
		ui.WelcomePanel(cmd.OutOrStdout())
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Machine-readable JSON output where supported")
}

// IsBuiltin reports whether the first CLI argument belongs to the built-in
// command surface (management commands, help, version, flags). Anything else
// is a tool name for the router. The answer depends only on the statically
// registered commands, never on what happens to be installed.
func IsBuiltin(arg string) bool {
	if strings.HasPrefix(arg, "-") {
		return true
	}
	switch arg {
	case "help", "completion":
		return true
	}
	for _, c := range rootCmd.Commands() {
		if c.Name() == arg || c.HasAlias(arg) {
			return true
		}
	}
	return false
}

// Execute runs the management CLI and terminates the process with the
// command's exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			if !ee.silent && ee.message != "" {
				logger.Error("Error: %s\n", ee.message)
			}
			os.Exit(ee.code)
		}
		logger.Error("Error: %v\n", err)
		os.Exit(1)
	}
}
