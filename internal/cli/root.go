package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with values
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the gantry CLI and returns an error if any command fails.
// This is the main entry point for the CLI application.
//
// The function sets up the root command with all subcommands (demo, inspect,
// graph, snapshot), configures logging based on the --verbose flag, and
// executes the command tree.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute() error {
	var (
		verbose bool
		cfgPath string
	)

	root := &cobra.Command{
		Use:          "gantry",
		Short:        "Gantry assembles, persists, and inspects component graphs",
		Long:         `Gantry is a toolkit for building recommender-style systems out of component graphs: configurations are solved into a dependency graph, shared components are instantiated once, and the resulting engine can be persisted and reloaded.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("gantry %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default ~/.config/gantry/config.toml)")

	root.AddCommand(newDemoCmd(&cfgPath))
	root.AddCommand(newInspectCmd(&cfgPath))
	root.AddCommand(newGraphCmd(&cfgPath))
	root.AddCommand(newSnapshotCmd(&cfgPath))

	return root.ExecuteContext(context.Background())
}
