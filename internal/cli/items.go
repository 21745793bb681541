package cli

import (
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "item",
		Aliases: []string{"items"},
		Short:   "Manage the line items of an invoice",
		Long: `Manage the line items of an invoice. <item> is a 1-based position or a line item id.

Examples:
  invoicedesk item add INV-2026-001 "Hosting" 5 15
  invoicedesk item update INV-2026-001 2 quantity 12
  invoicedesk item remove INV-2026-001 2`,
	}

	cmd.AddCommand(newItemAddCmd(), newItemUpdateCmd(), newItemRemoveCmd())
	return cmd
}

func newItemAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <ref> <description> <unit-price> [quantity]",
		Short: "Append a line item",
		Args:  cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := editInvoice(cmd.Context(), args[0], func(ctrl service.Controller, _ domain.Invoice) error {
				id, err := ctrl.AddLineItem()
				if err != nil {
					return err
				}
				quantity := "1"
				if len(args) == 4 {
					quantity = args[3]
				}
				return applyItem(ctrl, id, args[1], args[2], quantity)
			})
			if err != nil {
				return err
			}
			return printSummary(cmd, inv)
		},
	}
}

func newItemUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <ref> <item> <field> <value>",
		Short: "Change a line item field: description, unitPrice or quantity",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := editInvoice(cmd.Context(), args[0], func(ctrl service.Controller, draft domain.Invoice) error {
				id, err := resolveItem(draft, args[1])
				if err != nil {
					return err
				}
				return ctrl.UpdateLineItem(id, args[2], args[3])
			})
			if err != nil {
				return err
			}
			return printSummary(cmd, inv)
		},
	}
}

func newItemRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <ref> <item>",
		Aliases: []string{"rm"},
		Short:   "Remove a line item. The last one cannot be removed.",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := editInvoice(cmd.Context(), args[0], func(ctrl service.Controller, draft domain.Invoice) error {
				id, err := resolveItem(draft, args[1])
				if err != nil {
					return err
				}
				return ctrl.RemoveLineItem(id)
			})
			if err != nil {
				return err
			}
			return printSummary(cmd, inv)
		},
	}
}

// resolveItem maps a 1-based position or a line item id to the id
func resolveItem(inv domain.Invoice, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(inv.LineItems) {
			return "", errors.Wrapf(domain.ErrLineItemNotFound, "position %d of %d", n, len(inv.LineItems))
		}
		return inv.LineItems[n-1].ID, nil
	}
	if inv.FindLineItem(ref) < 0 {
		return "", errors.Wrapf(domain.ErrLineItemNotFound, "%q", ref)
	}
	return ref, nil
}

// applyItemSpec fills a line item from "description:price[:quantity]". The
// description may itself contain colons, so the numbers are taken from the right.
func applyItemSpec(ctrl service.Controller, id, spec string) error {
	desc, price, quantity, err := parseItemSpec(spec)
	if err != nil {
		return err
	}
	return applyItem(ctrl, id, desc, price, quantity)
}

func parseItemSpec(spec string) (desc, price, quantity string, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 {
		return "", "", "", errors.Newf("line item %q: want description:price[:quantity]", spec)
	}

	quantity = "1"
	last := parts[len(parts)-1]
	if len(parts) >= 3 {
		if _, qErr := strconv.ParseInt(last, 10, 64); qErr == nil {
			if _, pErr := service.ParseAmount("unitPrice", parts[len(parts)-2]); pErr == nil {
				quantity = last
				parts = parts[:len(parts)-1]
			}
		}
	}

	price = parts[len(parts)-1]
	desc = strings.Join(parts[:len(parts)-1], ":")
	return desc, price, quantity, nil
}

func applyItem(ctrl service.Controller, id, desc, price, quantity string) error {
	updates := []struct {
		field domain.LineItemField
		value string
	}{
		{domain.LineItemDescription, desc},
		{domain.LineItemUnitPrice, price},
		{domain.LineItemQuantity, quantity},
	}
	for _, u := range updates {
		if err := ctrl.UpdateLineItem(id, string(u.field), u.value); err != nil {
			return errors.Wrapf(err, "line item %s", u.field)
		}
	}
	return nil
}
