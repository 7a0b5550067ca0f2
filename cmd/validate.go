package cmd

import (
	"fmt"
	"os"

	"github.com/giantswarm/pluginhost/internal/app"
	"github.com/giantswarm/pluginhost/internal/discovery"
	"github.com/giantswarm/pluginhost/internal/ploerr"
	"github.com/giantswarm/pluginhost/internal/validate"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var validateConfigPath string

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the discovered module set without loading any module code",
		Long: `Runs manifest validation and dependency-graph validation over every
module under the configured directories, reporting errors and warnings
without invoking any module binary. Exits 2 if the graph is invalid.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
	cmd.Flags().StringVar(&validateConfigPath, "config", "", "path to the host configuration file")
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	application, err := app.Bootstrap(validateConfigPath)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	var discovered []discovery.Discovered
	var warnings []discovery.Warning
	for _, root := range application.Config.Plugin.Directories {
		found, warns, err := discovery.DiscoverFromDirectory(root, 1)
		if err != nil {
			return fmt.Errorf("discovery on %s: %w", root, err)
		}
		discovered = append(discovered, found...)
		warnings = append(warnings, warns...)
	}

	for _, w := range warnings {
		fmt.Printf("%s %s: %s\n", text.Colors{text.FgYellow}.Sprint("warning:"), w.Path, w.Reason)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ID"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("VERSION"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("VALID"),
		text.Colors{text.FgHiBlue, text.Bold}.Sprint("ISSUES"),
	})

	for _, d := range discovered {
		result := validate.ValidateManifest(d.Manifest)
		valid := "yes"
		issues := ""
		if !result.IsValid {
			valid = "no"
			issues = joinErrorsForDisplay(result.Errors)
		}
		t.AppendRow(table.Row{d.Manifest.ID, d.Manifest.Version.String(), valid, issues})
	}
	t.Render()

	graphResult := validate.ValidateGraph(discovered)
	if !graphResult.IsValid {
		reason := joinErrorsForDisplay(graphResult.Errors)
		fmt.Printf("\n%s dependency graph invalid: %s\n", text.Colors{text.FgRed, text.Bold}.Sprint("error:"), reason)
		return &ploerr.GraphInvalidError{Reason: reason}
	}
	for _, w := range graphResult.Warnings {
		fmt.Printf("%s %s\n", text.Colors{text.FgYellow}.Sprint("warning:"), w)
	}

	fmt.Printf("\n%s %d module(s) discovered, graph valid\n", text.FgGreen.Sprint("OK:"), len(discovered))
	return nil
}

func joinErrorsForDisplay(errs []error) string {
	s := ""
	for i, e := range errs {
		if i > 0 {
			s += "; "
		}
		s += e.Error()
	}
	return s
}
