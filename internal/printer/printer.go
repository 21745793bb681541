package printer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
)

const width = 64

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Render produces the print-styled text of an invoice
func Render(inv domain.Invoice) string {
	inv = domain.Derive(inv)
	b := domain.ComputeBreakdown(inv)

	var sb strings.Builder
	sep := strings.Repeat("=", width)
	line := strings.Repeat("-", width)

	fmt.Fprintf(&sb, "%-40s%24s\n", "INVOICE", "Issue Date: "+displayDate(inv.IssueDate))
	fmt.Fprintf(&sb, "%-40s%24s\n", strings.ToUpper(inv.RemitTo.Name), "Due Date: "+displayDate(inv.DueDate))
	fmt.Fprintf(&sb, "Invoice #: %s\n", inv.InvoiceNumber)
	sb.WriteString(sep + "\n\n")

	// Company and client info side by side
	fmt.Fprintf(&sb, "%-32s%s\n", "COMPANY INFO", "CLIENT INFO")
	left := nonEmpty(inv.RemitTo.Name, inv.RemitTo.Address, inv.RemitTo.Email, inv.RemitTo.Contact)
	right := nonEmpty(inv.BillTo.Name, inv.BillTo.Address, inv.BillTo.Email)
	for i := 0; i < max(len(left), len(right)); i++ {
		fmt.Fprintf(&sb, "%-32s%s\n", Truncate(at(left, i), 30), at(right, i))
	}
	sb.WriteString("\n" + line + "\n")

	sb.WriteString("SERVICES / PRODUCTS\n")
	fmt.Fprintf(&sb, "%-28s %9s %12s %12s\n", "Name", "Quantity", "Unit Price", "Total")
	sb.WriteString(line + "\n")
	for _, item := range inv.LineItems {
		fmt.Fprintf(&sb, "%-28s %9s %12s %12s\n",
			Truncate(item.Description, 28),
			fmt.Sprintf("%d units", item.Quantity),
			FormatMoney(item.UnitPrice),
			FormatMoney(item.Subtotal),
		)
	}
	sb.WriteString(line + "\n")

	amountRow := func(label, value string) {
		fmt.Fprintf(&sb, "%49s %14s\n", label, value)
	}
	amountRow("Subtotal", FormatMoney(b.Subtotal))
	if !inv.DiscountPercent.IsZero() {
		amountRow(fmt.Sprintf("Discount (%s)", FormatPercent(inv.DiscountPercent)), "-"+FormatMoney(b.DiscountAmount))
	}
	if !inv.SGSTPercent.IsZero() {
		amountRow(fmt.Sprintf("SGST (%s)", FormatPercent(inv.SGSTPercent)), FormatMoney(b.SGSTAmount))
	}
	if !inv.CGSTPercent.IsZero() {
		amountRow(fmt.Sprintf("CGST (%s)", FormatPercent(inv.CGSTPercent)), FormatMoney(b.CGSTAmount))
	}
	amountRow("Total", FormatMoney(b.Total))
	if !inv.PaidAmount.IsZero() {
		amountRow("Paid", FormatMoney(inv.PaidAmount))
	}
	sb.WriteString("\n")
	amountRow("AMOUNT DUE", FormatMoney(b.DueAmount))
	if b.DueAmount.IsNegative() {
		amountRow("", "(credit balance)")
	}
	sb.WriteString(sep + "\n\n")

	sb.WriteString("PAYMENT\n")
	writeLines(&sb, inv.PaymentInstructions)
	if inv.PaymentLabel != "" || inv.RemitTo.Email != "" {
		sb.WriteString("\n")
		writeLines(&sb, inv.PaymentLabel)
		writeLines(&sb, inv.RemitTo.Email)
	}
	if inv.RemitTo.BankDetails != "" {
		sb.WriteString("\nBank Details:\n")
		writeLines(&sb, inv.RemitTo.BankDetails)
	}
	sb.WriteString("\n" + line + "\n")

	title := inv.TermsTitle
	if title == "" {
		title = "TERMS AND CONDITIONS"
	}
	sb.WriteString(strings.ToUpper(title) + "\n")
	writeLines(&sb, inv.Notes)
	sb.WriteString(sep + "\n")

	return sb.String()
}

// FileName returns a filesystem-safe name for the printed invoice
func FileName(inv domain.Invoice) string {
	name := strings.Trim(unsafeName.ReplaceAllString(inv.InvoiceNumber, "-"), "-.")
	if name == "" {
		name = inv.ID
	}
	return name + ".txt"
}

// WriteFile renders inv into path. When path is a directory, or has no .txt
// suffix, the invoice file name is appended.
func WriteFile(inv domain.Invoice, path string) (string, error) {
	if info, err := os.Stat(path); (err == nil && info.IsDir()) || !strings.HasSuffix(path, ".txt") {
		path = filepath.Join(path, FileName(inv))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create output dir")
	}
	if err := os.WriteFile(path, []byte(Render(inv)), 0644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// WriteAll prints every invoice into dir concurrently and returns the written
// paths sorted by name
func WriteAll(ctx context.Context, invoices domain.Collection, dir string) ([]string, error) {
	p := pool.NewWithResults[string]().WithContext(ctx).WithMaxGoroutines(4)
	for _, inv := range invoices {
		inv := inv
		p.Go(func(ctx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			return WriteFile(inv, dir)
		})
	}

	paths, err := p.Wait()
	sort.Strings(paths)
	return paths, err
}

// displayDate turns 2026-10-15 into "15 Oct 2026"; other text is kept
func displayDate(s string) string {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("2 Jan 2006")
}

func writeLines(sb *strings.Builder, s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	for _, l := range strings.Split(s, "\n") {
		sb.WriteString(l + "\n")
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
