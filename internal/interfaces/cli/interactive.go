package cli

import (
	"github.com/spf13/cobra"
	"vdpm.dev/cli/internal/interfaces/di"
)

func newInteractiveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Edit the plugin registry in VisiData",
		Long: `Writes the plugin registry, opens it in the configured editor and applies
every saved change until the editor exits. This is the default command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, a)
		},
	}
}

func runInteractive(cmd *cobra.Command, a *app) error {
	return a.withContainer(cmd, func(c *di.Container) error {
		return c.SessionService.Run(cmd.Context())
	})
}
