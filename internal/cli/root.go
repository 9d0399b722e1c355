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
// Called by the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the seatlens CLI and returns an error if any command fails.
// Cancelling ctx stops long-running commands like serve.
//
// The root command wires up all subcommands (map, view, serve, venues,
// cache, completion) and configures logging based on the --verbose flag:
// info level by default, debug with -v. The logger is attached to the
// command context and accessible to all commands via loggerFromContext.
func Execute(ctx context.Context) error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "seatlens",
		Short:        "Seatlens turns seatmap clicks into rendered seat views",
		Long:         `Seatlens maps clicks on a 2D venue seatmap to 3D camera poses and serves rendered views of the field from that seat, with a cache in front of the GPU render backend.`,
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

	root.SetVersionTemplate(fmt.Sprintf("seatlens %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to seatlens.toml")

	root.AddCommand(newMapCmd(&configPath))
	root.AddCommand(newViewCmd(&configPath))
	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newVenuesCmd(&configPath))
	root.AddCommand(newCacheCmd())
	root.AddCommand(newCompletionCmd())

	return root.ExecuteContext(ctx)
}
