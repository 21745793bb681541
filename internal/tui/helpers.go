package tui

import (
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/printer"
	"github.com/shopspring/decimal"
)

// formatMoney formats money as "$X,XXX.XX" with comma separators
func formatMoney(amount decimal.Decimal) string {
	return printer.FormatMoney(amount)
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	return printer.Truncate(s, maxLen)
}

// statusBadge renders an invoice status as a colored label
func statusBadge(status domain.InvoiceStatus) string {
	switch status {
	case domain.InvoiceStatusPaid:
		return paidStyle.Render("PAID")
	case domain.InvoiceStatusOverdue:
		return overdueStyle.Render("OVERDUE")
	case domain.InvoiceStatusDueSoon:
		return dueSoonStyle.Render("DUE SOON")
	default:
		return activeStyle.Render("ACTIVE")
	}
}

// window returns the [start, end) range of rows to show so that focus stays visible
func window(total, focus, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := focus - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}
