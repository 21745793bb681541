package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Breakdown holds every intermediate amount of the totals computation.
// Values are unrounded; round only for display.
type Breakdown struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	SGSTAmount     decimal.Decimal
	CGSTAmount     decimal.Decimal
	Total          decimal.Decimal
	DueAmount      decimal.Decimal
}

// ComputeBreakdown derives the totals of inv from its line items,
// percentages and paid amount. The due amount is not clamped, so an
// overpaid invoice yields a negative value.
func ComputeBreakdown(inv Invoice) Breakdown {
	subtotal := decimal.Zero
	for _, item := range inv.LineItems {
		subtotal = subtotal.Add(lineAmount(item))
	}

	discount := percentOf(subtotal, inv.DiscountPercent)
	taxable := subtotal.Sub(discount)
	sgst := percentOf(taxable, inv.SGSTPercent)
	cgst := percentOf(taxable, inv.CGSTPercent)
	total := taxable.Add(sgst).Add(cgst)

	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		SGSTAmount:     sgst,
		CGSTAmount:     cgst,
		Total:          total,
		DueAmount:      total.Sub(inv.PaidAmount),
	}
}

// Derive returns a copy of inv with line subtotals, Total and DueAmount
// recomputed. It is the single place derived fields are written.
func Derive(inv Invoice) Invoice {
	out := inv.Clone()
	for idx := range out.LineItems {
		out.LineItems[idx].Subtotal = lineAmount(out.LineItems[idx])
	}

	b := ComputeBreakdown(out)
	out.Total = b.Total
	out.DueAmount = b.DueAmount
	return out
}

// LineItemField names an editable line item field
type LineItemField string

const (
	LineItemDescription LineItemField = "description"
	LineItemUnitPrice   LineItemField = "unitPrice"
	LineItemQuantity    LineItemField = "quantity"
)

// LineItemUpdate is a single field change to a line item
type LineItemUpdate struct {
	Field       LineItemField
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int64
}

func SetDescription(s string) LineItemUpdate {
	return LineItemUpdate{Field: LineItemDescription, Description: s}
}

func SetUnitPrice(d decimal.Decimal) LineItemUpdate {
	return LineItemUpdate{Field: LineItemUnitPrice, UnitPrice: d}
}

func SetQuantity(n int64) LineItemUpdate {
	return LineItemUpdate{Field: LineItemQuantity, Quantity: n}
}

// UpdateLineItem returns a new slice with upd applied to the item matching id.
// The subtotal is recomputed when price or quantity change; other items and
// fields are copied through. An unknown id leaves the items unchanged.
func UpdateLineItem(items []LineItem, id string, upd LineItemUpdate) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)

	for idx := range out {
		if out[idx].ID != id {
			continue
		}

		switch upd.Field {
		case LineItemDescription:
			out[idx].Description = upd.Description
		case LineItemUnitPrice:
			out[idx].UnitPrice = upd.UnitPrice
			out[idx].Subtotal = lineAmount(out[idx])
		case LineItemQuantity:
			out[idx].Quantity = upd.Quantity
			out[idx].Subtotal = lineAmount(out[idx])
		}
	}

	return out
}

// PaymentProgress returns the paid share of the total as a percentage,
// clamped to [0, 100] for display. A zero total reports 0.
func PaymentProgress(inv Invoice) decimal.Decimal {
	if !inv.Total.IsPositive() {
		return decimal.Zero
	}
	pct := inv.PaidAmount.Div(inv.Total).Mul(hundred)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

func lineAmount(item LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
}

func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}
