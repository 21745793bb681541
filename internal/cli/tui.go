package cli

import (
	"github.com/andy/invoicedesk/internal/tui"
	"github.com/spf13/cobra"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the terminal UI",
		Long:  `Launch the interactive terminal user interface for invoicedesk.`,
		RunE:  launchTUI,
	}
}

func launchTUI(cmd *cobra.Command, args []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}
	return tui.Run(a)
}
