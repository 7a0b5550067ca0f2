package cmd

import (
	"fmt"
	"os"

	"github.com/giantswarm/pluginhost/internal/app"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var healthConfigPath string

func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Bring up the fleet and print an aggregate health report",
		Long: `Discovers, loads, initializes, configures, and starts every module,
then polls each started module's health check and prints the aggregate
counts alongside per-module detail.`,
		Args: cobra.NoArgs,
		RunE: runHealth,
	}
	cmd.Flags().StringVar(&healthConfigPath, "config", "", "path to the host configuration file")
	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	application, err := app.Bootstrap(healthConfigPath)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if _, err := application.Manager.LoadAll(ctx, application.Config.Plugin.Directories); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := application.Manager.InitializeContainers(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	noop := noopBuilder{}
	if err := application.Manager.Configure(ctx, noop); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	if err := application.Manager.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer application.Manager.Stop(ctx)

	report := application.Manager.ReportHealth(ctx)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ID"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("STATUS"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("DESCRIPTION"),
	})
	for id, h := range report.Detail {
		t.AppendRow(table.Row{id, h.Status.String(), h.Description})
	}
	t.Render()

	fmt.Printf("\n%s %d healthy, %d degraded, %d unhealthy\n",
		text.FgHiBlue.Sprint("Total:"), report.Healthy, report.Degraded, report.Unhealthy)
	return nil
}

type noopBuilder struct{}

func (noopBuilder) Handle(pattern string, handler any) {}
