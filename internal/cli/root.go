package cli

import (
	"time"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

var appInstance *app.App

// now is the clock used for status badges and summaries
var now = time.Now

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "invoicedesk",
		Short: "Create, edit, preview and print invoices",
		Long: `Invoicedesk keeps a collection of invoices with line items, discount and
SGST/CGST taxes, and derives totals and amounts due as you edit.

By default, running invoicedesk without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if appInstance == nil {
				return nil
			}
			appInstance.Invoices.SetNotifier(service.Notifiers{
				service.LogNotifier{Log: appInstance.Logger},
				cliNotifier{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()},
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: launch TUI
			return launchTUI(cmd, args)
		},
	}

	// Read by main before the app is built; declared here so cobra accepts it
	rootCmd.PersistentFlags().Bool("ephemeral", false, "keep invoices in memory only, nothing is saved")

	rootCmd.AddCommand(
		newTUICmd(),
		newListCmd(),
		newShowCmd(),
		newPrintCmd(),
		newNewCmd(),
		newSetCmd(),
		newItemCmd(),
		newPayCmd(),
		newDeleteCmd(),
		newResetCmd(),
		newExportCmd(),
		newImportCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func requireApp() (*app.App, error) {
	if appInstance == nil {
		return nil, errors.New("app is not initialized")
	}
	return appInstance, nil
}
