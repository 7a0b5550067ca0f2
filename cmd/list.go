package cmd

import (
	"fmt"
	"os"

	"github.com/giantswarm/pluginhost/internal/app"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var listConfigPath string

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Discover and load every module, then print the fleet",
		Long: `Discovers modules under the configured directories, runs them through
validation and the full load pipeline, and prints each module's final
lifecycle state without starting the HTTP surface.`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
	cmd.Flags().StringVar(&listConfigPath, "config", "", "path to the host configuration file")
	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	application, err := app.Bootstrap(listConfigPath)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	report, err := application.Manager.LoadAll(cmd.Context(), application.Config.Plugin.Directories)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ID"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("STATE"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("FAILED STAGE"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ERROR"),
	})

	for _, m := range report.Modules {
		t.AppendRow(table.Row{m.ID, m.State.String(), m.Stage, m.Error})
	}

	t.Render()
	fmt.Printf("\n%s %d modules\n", text.FgHiBlue.Sprint("Total:"), len(report.Modules))
	return nil
}
