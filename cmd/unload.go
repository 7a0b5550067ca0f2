package cmd

import (
	"fmt"

	"github.com/giantswarm/pluginhost/internal/app"
	"github.com/giantswarm/pluginhost/internal/plugin"

	"github.com/spf13/cobra"
)

var unloadConfigPath string

func newUnloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unload <module-id>",
		Short: "Stop and unload a single loaded module",
		Long: `Brings up the fleet exactly as "serve" would, then stops the named
module (if currently Started) and unloads it, releasing its isolation
context. The module must reach the Stopped state before unload proceeds.`,
		Args: cobra.ExactArgs(1),
		RunE: runUnload,
	}
	cmd.Flags().StringVar(&unloadConfigPath, "config", "", "path to the host configuration file")
	return cmd
}

func runUnload(cmd *cobra.Command, args []string) error {
	moduleID := args[0]
	ctx := cmd.Context()

	application, err := app.Bootstrap(unloadConfigPath)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	if _, err := application.Manager.LoadAll(ctx, application.Config.Plugin.Directories); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if err := application.Manager.InitializeContainers(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if err := application.Manager.Configure(ctx, noopBuilder{}); err != nil {
		return fmt.Errorf("configure: %w", err)
	}
	if err := application.Manager.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer application.Manager.Stop(ctx)

	state, ok := application.Manager.State(moduleID)
	if !ok {
		return fmt.Errorf("unknown module %q", moduleID)
	}

	if state == plugin.Started {
		if err := application.Manager.StopModule(ctx, moduleID); err != nil {
			return fmt.Errorf("stop %q: %w", moduleID, err)
		}
	}

	if err := application.Manager.Unload(ctx, moduleID); err != nil {
		return fmt.Errorf("unload %q: %w", moduleID, err)
	}

	fmt.Printf("module %q unloaded\n", moduleID)
	return nil
}
