package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	plugindomain "vdpm.dev/cli/internal/core/domain/plugin"
	"vdpm.dev/cli/internal/interfaces/di"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withContainer(cmd, func(c *di.Container) error {
				registry, err := c.PluginService.Generate(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPluginTable(registry))
				return nil
			})
		},
	}
}

// renderPluginTable renders one row per plugin in name order
func renderPluginTable(registry plugindomain.Registry) string {
	if registry.Len() == 0 {
		return offStyle.Render("No plugins installed.")
	}

	width := len("NAME")
	for _, name := range registry.Names() {
		width = max(width, len(name))
	}

	rows := []string{
		headerStyle.Render(fmt.Sprintf("%-*s │ %-7s │ %s", width, "NAME", "ENABLED", "INSTALLED")),
	}
	for _, p := range registry.Plugins() {
		rows = append(rows, fmt.Sprintf("%-*s │ %s │ %s", width, p.Name, flag(p.Enabled, 7), flag(p.Installed, 9)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func flag(v bool, width int) string {
	if v {
		return onStyle.Render(fmt.Sprintf("%-*s", width, "yes"))
	}
	return offStyle.Render(fmt.Sprintf("%-*s", width, "no"))
}
