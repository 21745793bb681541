package domain

import (
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
	InvoiceStatusDueSoon InvoiceStatus = "due_soon"
	InvoiceStatusActive  InvoiceStatus = "active"
)

// dueSoonDays is the window in which an unpaid invoice counts as due soon
const dueSoonDays = 7

// StatusOf classifies an invoice for listing. Payment is checked first, so a
// settled invoice is never overdue.
func StatusOf(inv Invoice, now time.Time) InvoiceStatus {
	if !inv.DueAmount.IsPositive() {
		return InvoiceStatusPaid
	}

	due, err := time.ParseInLocation(DateLayout, inv.DueDate, now.Location())
	if err != nil {
		return InvoiceStatusActive
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	days := int(math.Round(due.Sub(today).Hours() / 24))
	switch {
	case days < 0:
		return InvoiceStatusOverdue
	case days <= dueSoonDays:
		return InvoiceStatusDueSoon
	default:
		return InvoiceStatusActive
	}
}

// Summary aggregates the money figures of a collection
type Summary struct {
	Count      int
	TotalValue decimal.Decimal
	TotalPaid  decimal.Decimal
	TotalDue   decimal.Decimal
	Overdue    int
}

// Summarize totals the collection's derived amounts
func Summarize(c Collection, now time.Time) Summary {
	sum := func(pick func(Invoice) decimal.Decimal) decimal.Decimal {
		return lo.Reduce(c, func(acc decimal.Decimal, inv Invoice, _ int) decimal.Decimal {
			return acc.Add(pick(inv))
		}, decimal.Zero)
	}

	return Summary{
		Count:      len(c),
		TotalValue: sum(func(inv Invoice) decimal.Decimal { return inv.Total }),
		TotalPaid:  sum(func(inv Invoice) decimal.Decimal { return inv.PaidAmount }),
		TotalDue:   sum(func(inv Invoice) decimal.Decimal { return inv.DueAmount }),
		Overdue: lo.CountBy(c, func(inv Invoice) bool {
			return StatusOf(inv, now) == InvoiceStatusOverdue
		}),
	}
}
