package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"vdpm.dev/cli/internal/interfaces/di"
)

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Prints the configuration after defaults, the config file and VDPM_*
environment variables have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(c *di.Container) error {
				data, err := toml.Marshal(c.Config)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", c.ConfigFile, data)
				return nil
			})
		},
	}
}
