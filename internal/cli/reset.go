package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every invoice",
		Long: `Delete every invoice in the collection. This cannot be undone.

Examples:
  invoicedesk export -o backup.json && invoicedesk reset --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			count := len(a.Invoices.Invoices())
			if !yes && !confirmPrompt(cmd, fmt.Sprintf("This will delete ALL %d invoice(s). Continue?", count)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}

			return a.Invoices.Reset(cmd.Context())
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func confirmPrompt(cmd *cobra.Command, message string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", message)
	reader := bufio.NewReader(cmd.InOrStdin())
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return false
	}
	input = strings.TrimSpace(strings.ToLower(input))
	return input == "y" || input == "yes"
}
