package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/interfaces/di"
)

// newLifecycleCommands creates install, uninstall, enable and disable
func newLifecycleCommands(a *app) []*cobra.Command {
	return []*cobra.Command{
		newLifecycleCommand(a, plugindomain.VerbInstall,
			"Download a plugin and enable it",
			"Downloads <name>.py from the configured plugin source into the plugin\ndirectory and adds its import line to the VisiData startup script."),
		newLifecycleCommand(a, plugindomain.VerbUninstall,
			"Disable and remove a plugin",
			"Removes the plugin's import line from the startup script, then deletes\nits file from the plugin directory."),
		newLifecycleCommand(a, plugindomain.VerbEnable,
			"Load an installed plugin at VisiData startup",
			"Adds the plugin's import line to the VisiData startup script."),
		newLifecycleCommand(a, plugindomain.VerbDisable,
			"Stop loading a plugin at VisiData startup",
			"Removes the plugin's import line from the VisiData startup script."),
	}
}

func newLifecycleCommand(a *app, verb plugindomain.Verb, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:     string(verb) + " <name>",
		Short:   short,
		Long:    long,
		Example: fmt.Sprintf("  vdpm %s frequency", verb),
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(c *di.Container) error {
				result, err := c.PluginService.Run(cmd.Context(), verb, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
				return nil
			})
		},
	}
}
