package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"vdpm.dev/cli/internal/interfaces/di"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// app carries the parsed global flags and builds the container on demand,
// so commands such as version never touch configuration or log files
type app struct {
	opts    di.Options
	newFunc func(ctx context.Context, opts di.Options) (*di.Container, error)
}

// withContainer builds the container, runs fn and shuts the container down
func (a *app) withContainer(cmd *cobra.Command, fn func(c *di.Container) error) error {
	container, err := a.newFunc(cmd.Context(), a.opts)
	if err != nil {
		return fmt.Errorf("failed to initialize vdpm: %w", err)
	}
	defer container.Shutdown(cmd.Context())

	return fn(container)
}

// NewRootCommand builds the vdpm command tree
func NewRootCommand() *cobra.Command {
	a := &app{newFunc: di.NewContainer}

	rootCmd := &cobra.Command{
		Use:   "vdpm",
		Short: "VisiData plugin manager",
		Long: `vdpm manages VisiData plugins through VisiData itself.

Run without arguments to open the plugin registry in VisiData. Toggle the
enabled column, add rows to install plugins or delete rows to uninstall them;
every save is applied while the editor is open.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, a)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().StringVar(&a.opts.ConfigPath, "config", "", "Config file path (default is $HOME/.vdpm/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&a.opts.Debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&a.opts.DebugTTY, "debug-tty", "", "Mirror log output to this terminal device, e.g. /dev/pts/3")

	rootCmd.AddCommand(newInteractiveCommand(a))
	rootCmd.AddCommand(newListCommand(a))
	rootCmd.AddCommand(newLifecycleCommands(a)...)
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vdpm version %s\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
				Version, BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

// Execute runs the root command and exits non-zero on failure
func Execute(ctx context.Context) {
	rootCmd := NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
