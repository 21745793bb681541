package repository

import (
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/shopspring/decimal"
)

// legacyInvoice reads the unversioned array payload. Besides the current
// field names it understands the names written by the earlier browser
// version: invoiceNo, date, paymentMethod, price, discount, sgst and cgst.
type legacyInvoice struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceNo     string `json:"invoiceNo"`
	IssueDate     string `json:"issueDate"`
	Date          string `json:"date"`
	DueDate       string `json:"dueDate"`

	BillTo        domain.Party    `json:"billTo"`
	RemitTo       *domain.RemitTo `json:"remitTo"`
	PaymentMethod *domain.RemitTo `json:"paymentMethod"`

	LineItems []legacyLineItem `json:"lineItems"`

	DiscountPercent *decimal.Decimal `json:"discountPercent"`
	Discount        *decimal.Decimal `json:"discount"`
	SGSTPercent     *decimal.Decimal `json:"sgstPercent"`
	SGST            *decimal.Decimal `json:"sgst"`
	CGSTPercent     *decimal.Decimal `json:"cgstPercent"`
	CGST            *decimal.Decimal `json:"cgst"`

	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	DueAmount  decimal.Decimal `json:"dueAmount"`

	Notes               string `json:"notes"`
	PaymentInstructions string `json:"paymentInstructions"`
	PaymentLabel        string `json:"paymentLabel"`
	TermsTitle          string `json:"termsTitle"`
}

type legacyLineItem struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
}

// legacyDateLayout is the en-GB short date the browser version stored
const legacyDateLayout = "2 Jan 2006"

func (l legacyInvoice) toInvoice() domain.Invoice {
	inv := domain.Invoice{
		ID:                  l.ID,
		InvoiceNumber:       firstString(l.InvoiceNumber, l.InvoiceNo),
		IssueDate:           isoDate(firstString(l.IssueDate, l.Date)),
		DueDate:             isoDate(l.DueDate),
		BillTo:              l.BillTo,
		DiscountPercent:     firstDecimal(l.DiscountPercent, l.Discount),
		SGSTPercent:         firstDecimal(l.SGSTPercent, l.SGST),
		CGSTPercent:         firstDecimal(l.CGSTPercent, l.CGST),
		Total:               l.Total,
		PaidAmount:          l.PaidAmount,
		DueAmount:           l.DueAmount,
		Notes:               l.Notes,
		PaymentInstructions: l.PaymentInstructions,
		PaymentLabel:        l.PaymentLabel,
		TermsTitle:          l.TermsTitle,
	}

	switch {
	case l.RemitTo != nil:
		inv.RemitTo = *l.RemitTo
	case l.PaymentMethod != nil:
		inv.RemitTo = *l.PaymentMethod
	}

	inv.LineItems = make([]domain.LineItem, 0, len(l.LineItems))
	for _, item := range l.LineItems {
		inv.LineItems = append(inv.LineItems, domain.LineItem{
			ID:          item.ID,
			Description: item.Description,
			UnitPrice:   firstDecimal(item.UnitPrice, item.Price),
			Quantity:    legacyQuantity(item.Quantity),
			Subtotal:    item.Subtotal,
		})
	}

	return inv
}

// legacyQuantity maps the free numeric quantity of the browser version onto
// a whole count, rounding fractions up. Missing or non-positive values become 1.
func legacyQuantity(q *decimal.Decimal) int64 {
	if q == nil || !q.IsPositive() {
		return 1
	}
	return q.Ceil().IntPart()
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDecimal(values ...*decimal.Decimal) decimal.Decimal {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}

// isoDate normalizes a stored date to YYYY-MM-DD. Unknown formats are dropped.
func isoDate(s string) string {
	if s == "" {
		return ""
	}
	for _, layout := range []string{domain.DateLayout, legacyDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateLayout)
		}
	}
	return ""
}
