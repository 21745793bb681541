package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/printer"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// newFieldFlags maps flags of the new command to editable field paths
var newFieldFlags = []struct {
	flag  string
	path  string
	usage string
}{
	{"number", service.FieldInvoiceNumber, "invoice number (default: next PREFIX-YEAR-SEQ)"},
	{"issued", service.FieldIssueDate, "issue date, YYYY-MM-DD (default: today)"},
	{"due", service.FieldDueDate, "due date, YYYY-MM-DD (default: issue date + configured days)"},
	{"client", service.FieldBillToName, "bill-to business name"},
	{"email", service.FieldBillToEmail, "bill-to email"},
	{"address", service.FieldBillToAddress, "bill-to address"},
	{"discount", service.FieldDiscountPercent, "discount percent"},
	{"sgst", service.FieldSGSTPercent, "SGST percent"},
	{"cgst", service.FieldCGSTPercent, "CGST percent"},
	{"paid", service.FieldPaidAmount, "amount already paid"},
	{"notes", service.FieldNotes, "notes printed at the bottom"},
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List invoices",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			t := now()

			invoices := a.Invoices.Invoices()
			if cmd.Flags().Changed("status") {
				status, _ := cmd.Flags().GetString("status")
				invoices = lo.Filter(invoices, func(inv domain.Invoice, _ int) bool {
					return string(domain.StatusOf(inv, t)) == status
				})
			}

			if len(invoices) == 0 {
				fmt.Fprintln(out, "No invoices found")
				return nil
			}

			// Print table header
			fmt.Fprintf(out, "%-16s %-22s %-10s %-10s %12s %12s  %-8s\n", "Number", "Client", "Issued", "Due", "Total", "Due amount", "Status")
			fmt.Fprintln(out, strings.Repeat("-", 100))

			for _, inv := range invoices {
				fmt.Fprintf(out, "%-16s %-22s %-10s %-10s %12s %12s  %-8s\n",
					printer.Truncate(inv.InvoiceNumber, 16),
					printer.Truncate(inv.BillTo.Name, 22),
					inv.IssueDate,
					inv.DueDate,
					printer.FormatMoney(inv.Total),
					printer.FormatMoney(inv.DueAmount),
					domain.StatusOf(inv, t),
				)
			}

			sum := domain.Summarize(invoices, t)
			fmt.Fprintf(out, "\nTotal: %d invoice(s)  value %s  paid %s  due %s  overdue %d\n",
				sum.Count,
				printer.FormatMoney(sum.TotalValue),
				printer.FormatMoney(sum.TotalPaid),
				printer.FormatMoney(sum.TotalDue),
				sum.Overdue,
			)
			return nil
		},
	}

	cmd.Flags().String("status", "", "filter by status: paid, overdue, due_soon, active")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <ref>",
		Short: "Show the print preview of an invoice",
		Long:  `Show the print preview of an invoice. <ref> is an invoice id or number.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			inv, err := a.Invoices.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), printer.Render(inv))
			return nil
		},
	}
}

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print [ref]",
		Short: "Write invoices as .txt files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = a.Config.Invoice.OutputDir
			}
			all, _ := cmd.Flags().GetBool("all")

			var invoices domain.Collection
			switch {
			case all:
				invoices = a.Invoices.Invoices()
			case len(args) == 1:
				inv, err := a.Invoices.Get(args[0])
				if err != nil {
					return err
				}
				invoices = domain.Collection{inv}
			default:
				return errors.New("name an invoice or pass --all")
			}

			paths, err := printer.WriteAll(cmd.Context(), invoices, outDir)
			for _, p := range paths {
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", p)
			}
			return err
		},
	}

	cmd.Flags().StringP("out", "o", "", "output directory or .txt path (default: configured output_dir)")
	cmd.Flags().Bool("all", false, "write every invoice")
	return cmd
}

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an invoice",
		Long: `Create an invoice from flags. Unset fields keep their defaults.

Examples:
  invoicedesk new --client "Globex" --item "Website:500:1" --item "Hosting:5:15"
  invoicedesk new --client "Initech" --item "Audit:1000" --discount 10 --sgst 9 --cgst 9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			ctrl := a.Invoices
			items, _ := cmd.Flags().GetStringArray("item")

			if err := ctrl.NewInvoice(); err != nil {
				return err
			}

			err = func() error {
				for _, f := range newFieldFlags {
					if !cmd.Flags().Changed(f.flag) {
						continue
					}
					value, _ := cmd.Flags().GetString(f.flag)
					if err := ctrl.SetField(f.path, value); err != nil {
						return errors.Wrapf(err, "--%s", f.flag)
					}
				}

				draft, _ := ctrl.Active()
				for n, spec := range items {
					id := draft.LineItems[0].ID
					if n > 0 {
						if id, err = ctrl.AddLineItem(); err != nil {
							return err
						}
					}
					if err := applyItemSpec(ctrl, id, spec); err != nil {
						return err
					}
				}

				return ctrl.SaveDraft(cmd.Context())
			}()
			if err != nil {
				_ = ctrl.BackToList()
				return err
			}

			return printSaved(cmd, a.Invoices.Invoices())
		},
	}

	for _, f := range newFieldFlags {
		cmd.Flags().String(f.flag, "", f.usage)
	}
	cmd.Flags().StringArray("item", nil, `line item as "description:price[:quantity]", repeatable`)
	return cmd
}

// printSaved prints the last member of the collection, where new invoices land
func printSaved(cmd *cobra.Command, invoices domain.Collection) error {
	if len(invoices) == 0 {
		return nil
	}
	inv := invoices[len(invoices)-1]
	fmt.Fprintf(cmd.OutOrStdout(), "  %s  total %s  due %s\n", inv.InvoiceNumber, printer.FormatMoney(inv.Total), printer.FormatMoney(inv.DueAmount))
	return nil
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <ref> <field> <value>",
		Short: "Change one field of an invoice",
		Long: fmt.Sprintf(`Change one field of an invoice and save it.

Fields: %s`, strings.Join(service.FieldPaths, ", ")),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := editInvoice(cmd.Context(), args[0], func(ctrl service.Controller, _ domain.Invoice) error {
				return ctrl.SetField(args[1], args[2])
			})
			if err != nil {
				return err
			}
			return printSummary(cmd, inv)
		},
	}
}

func newPayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pay <ref> <amount>",
		Short: "Record a payment against an invoice",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			amount, err := service.ParseAmount("amount", args[1])
			if err != nil {
				return err
			}
			inv, err := a.Invoices.Get(args[0])
			if err != nil {
				return err
			}
			inv, err = a.Invoices.RecordPayment(cmd.Context(), inv.ID, amount)
			if err != nil {
				return err
			}
			return printSummary(cmd, inv)
		},
	}
}

func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "delete <ref>",
		Aliases: []string{"rm"},
		Short:   "Delete an invoice",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			inv, err := a.Invoices.Get(args[0])
			if err != nil {
				return err
			}

			yes, _ := cmd.Flags().GetBool("yes")
			if !yes && !confirmPrompt(cmd, fmt.Sprintf("Delete invoice %s?", inv.InvoiceNumber)) {
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
			return a.Invoices.DeleteInvoice(cmd.Context(), inv.ID)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the collection as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			data, err := repository.EncodeDocument(a.Invoices.Invoices())
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("out")
			if path == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return errors.Wrap(err, "failed to create output dir")
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d invoice(s) to %s\n", len(a.Invoices.Invoices()), path)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "file to write (default: stdout)")
	return cmd
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Merge invoices from a JSON document",
		Long: `Merge invoices from a JSON document written by export, or from a bare JSON
array of invoices. Invoices with an id already in the collection replace it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := requireApp()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "failed to read %s", args[0])
			}
			invoices, err := repository.DecodeDocument(data)
			if err != nil {
				return err
			}

			imported := 0
			for _, inv := range invoices {
				if inv.ID == "" {
					inv.ID = domain.NewInvoiceID()
				}
				if _, err := a.Invoices.SaveInvoice(cmd.Context(), inv); err != nil {
					return errors.Wrapf(err, "invoice %s", inv.InvoiceNumber)
				}
				imported++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d invoice(s)\n", imported)
			return nil
		},
	}
}

// editInvoice opens ref in the controller, applies edit to the draft and
// saves it. The draft is discarded when anything fails.
func editInvoice(ctx context.Context, ref string, edit func(ctrl service.Controller, draft domain.Invoice) error) (domain.Invoice, error) {
	a, err := requireApp()
	if err != nil {
		return domain.Invoice{}, err
	}
	ctrl := a.Invoices

	inv, err := ctrl.Get(ref)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := ctrl.EditInvoice(inv.ID); err != nil {
		return domain.Invoice{}, err
	}

	if err := edit(ctrl, inv); err != nil {
		_ = ctrl.BackToList()
		return domain.Invoice{}, err
	}
	if err := ctrl.SaveDraft(ctx); err != nil {
		_ = ctrl.BackToList()
		return domain.Invoice{}, err
	}
	return ctrl.Get(inv.ID)
}

func printSummary(cmd *cobra.Command, inv domain.Invoice) error {
	fmt.Fprintf(cmd.OutOrStdout(), "  %s  total %s  paid %s  due %s  (%s%% paid)\n",
		inv.InvoiceNumber,
		printer.FormatMoney(inv.Total),
		printer.FormatMoney(inv.PaidAmount),
		printer.FormatMoney(inv.DueAmount),
		domain.PaymentProgress(inv).StringFixed(0),
	)
	return nil
}
