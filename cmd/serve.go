package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/giantswarm/pluginhost/internal/app"
	"github.com/giantswarm/pluginhost/pkg/logging"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var serveConfigPath string
var serveAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the module host",
		Long: `Bootstraps the host, discovers and loads every module under the
configured directories, runs each module's full lifecycle, and serves the
health-aggregation HTTP endpoint until interrupted.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().StringVar(&serveConfigPath, "config", "", "path to the host configuration file")
	cmd.Flags().StringVar(&serveAddr, "addr", ":8089", "address the health/status HTTP server listens on")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := app.Bootstrap(serveConfigPath)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Suffix = " discovering and loading modules..."
	s.Start()

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	httpSrv := &http.Server{Addr: serveAddr, Handler: application.HTTP.Handler()}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("Serve", err, "health endpoint stopped unexpectedly")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	err = application.Run(ctx)
	s.Stop()
	return err
}
