package cmd

import (
	"errors"
	"os"

	"github.com/giantswarm/pluginhost/internal/config"
	"github.com/giantswarm/pluginhost/internal/ploerr"

	"github.com/spf13/cobra"
)

// Exit codes for hostctl, matching the core's exit-code contract for process
// drivers that wrap it.
const (
	// ExitSuccess indicates normal operation.
	ExitSuccess = 0
	// ExitConfigInvalid indicates the host configuration failed to load or validate.
	ExitConfigInvalid = 1
	// ExitGraphInvalid indicates the discovered module set formed an invalid dependency graph.
	ExitGraphInvalid = 2
	// ExitRequiredModuleFailed indicates one or more required modules failed under fail-fast.
	ExitRequiredModuleFailed = 3
)

// rootCmd is the base command for hostctl, the operator CLI in front of the
// module host.
var rootCmd = &cobra.Command{
	Use:   "hostctl",
	Short: "Operate a modular application host",
	Long: `hostctl discovers, validates, loads, and runs plugin modules against
a running or about-to-run host process. Use "hostctl serve" to run the
host itself, or the other subcommands against a configuration file to
operate on the fleet: "list" and "validate" inspect it without starting
any module, while "health" and "unload" start it first.`,
	SilenceUsage: true,
}

// SetVersion sets the version reported by "hostctl version" / --version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command, translating returned errors into the exit
// codes assigned to process drivers that wrap this core.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "hostctl version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	var validationErrs config.ValidationErrors
	if errors.As(err, &validationErrs) {
		return ExitConfigInvalid
	}
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return ExitConfigInvalid
	}
	var manifestErr *ploerr.ManifestInvalidError
	if errors.As(err, &manifestErr) {
		return ExitConfigInvalid
	}
	var graphErr *ploerr.GraphInvalidError
	if errors.As(err, &graphErr) {
		return ExitGraphInvalid
	}
	var serviceGraphErr *ploerr.ServiceGraphInvalidError
	if errors.As(err, &serviceGraphErr) {
		return ExitGraphInvalid
	}
	return ExitRequiredModuleFailed
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newUnloadCmd())
	rootCmd.AddCommand(newHealthCmd())
}
