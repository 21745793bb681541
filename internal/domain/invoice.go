package domain

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for issue and due dates
const DateLayout = "2006-01-02"

// DefaultDueDays is used when Defaults.DueDays is not set
const DefaultDueDays = 7

type LineItem struct {
	ID          string          `json:"id" validate:"required"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice" validate:"gte=0"`
	Quantity    int64           `json:"quantity" validate:"gte=1"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Party is the billed business
type Party struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// RemitTo holds the issuer's details printed in the payment section
type RemitTo struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	BankDetails string `json:"bankDetails"`
	Contact     string `json:"contact"`
}

type Invoice struct {
	ID            string  `json:"id" validate:"required"`
	InvoiceNumber string  `json:"invoiceNumber"`
	IssueDate     string  `json:"issueDate" validate:"omitempty,isodate"`
	DueDate       string  `json:"dueDate" validate:"omitempty,isodate"`
	BillTo        Party   `json:"billTo"`
	RemitTo       RemitTo `json:"remitTo"`

	LineItems []LineItem `json:"lineItems" validate:"min=1,dive"`

	DiscountPercent decimal.Decimal `json:"discountPercent" validate:"gte=0,lte=100"`
	SGSTPercent     decimal.Decimal `json:"sgstPercent" validate:"gte=0,lte=100"`
	CGSTPercent     decimal.Decimal `json:"cgstPercent" validate:"gte=0,lte=100"`

	// Total and DueAmount are derived, see Derive
	Total      decimal.Decimal `json:"total"`
	PaidAmount decimal.Decimal `json:"paidAmount" validate:"gte=0"`
	DueAmount  decimal.Decimal `json:"dueAmount"`

	Notes               string `json:"notes"`
	PaymentInstructions string `json:"paymentInstructions"`
	PaymentLabel        string `json:"paymentLabel"`
	TermsTitle          string `json:"termsTitle"`
}

// Defaults carries the values a freshly created invoice starts from
type Defaults struct {
	InvoiceNumber       string
	DueDays             int
	RemitTo             RemitTo
	Notes               string
	PaymentInstructions string
	PaymentLabel        string
	TermsTitle          string
}

// NewInvoiceID returns a fresh, k-sortable invoice identifier
func NewInvoiceID() string {
	return "inv_" + ulid.Make().String()
}

// NewLineItemID returns a fresh line item identifier
func NewLineItemID() string {
	return "li_" + ulid.Make().String()
}

// NewLineItem creates an empty line item with quantity 1
func NewLineItem() LineItem {
	return LineItem{
		ID:        NewLineItemID(),
		UnitPrice: decimal.Zero,
		Quantity:  1,
		Subtotal:  decimal.Zero,
	}
}

// NewInvoice creates a new invoice dated today with a single empty line item
func NewInvoice(d Defaults, now time.Time) Invoice {
	dueDays := d.DueDays
	if dueDays <= 0 {
		dueDays = DefaultDueDays
	}

	number := d.InvoiceNumber
	if number == "" {
		number = fmt.Sprintf("INV-%d-001", now.Year())
	}

	inv := Invoice{
		ID:            NewInvoiceID(),
		InvoiceNumber: number,
		IssueDate:     now.Format(DateLayout),
		DueDate:       now.AddDate(0, 0, dueDays).Format(DateLayout),
		BillTo: Party{
			Name:    "[Business Name]",
			Email:   "[Business Email]",
			Address: "[Business Address]",
		},
		RemitTo:             d.RemitTo,
		LineItems:           []LineItem{NewLineItem()},
		DiscountPercent:     decimal.Zero,
		SGSTPercent:         decimal.Zero,
		CGSTPercent:         decimal.Zero,
		PaidAmount:          decimal.Zero,
		Notes:               d.Notes,
		PaymentInstructions: d.PaymentInstructions,
		PaymentLabel:        d.PaymentLabel,
		TermsTitle:          d.TermsTitle,
	}

	return Derive(inv)
}

// Clone returns a copy that shares no line item storage with i
func (i Invoice) Clone() Invoice {
	out := i
	out.LineItems = make([]LineItem, len(i.LineItems))
	copy(out.LineItems, i.LineItems)
	return out
}

// FindLineItem returns the index of the line item with the given id, or -1
func (i Invoice) FindLineItem(id string) int {
	for idx, item := range i.LineItems {
		if item.ID == id {
			return idx
		}
	}
	return -1
}

// AddLineItem appends a fresh line item and returns its id
func (i *Invoice) AddLineItem() string {
	item := NewLineItem()
	i.LineItems = append(i.LineItems, item)
	return item.ID
}

// RemoveLineItem drops the line item with the given id. The last remaining
// item cannot be removed.
func (i *Invoice) RemoveLineItem(id string) error {
	idx := i.FindLineItem(id)
	if idx < 0 {
		return ErrLineItemNotFound
	}
	if len(i.LineItems) == 1 {
		return ErrLastLineItem
	}

	items := make([]LineItem, 0, len(i.LineItems)-1)
	items = append(items, i.LineItems[:idx]...)
	items = append(items, i.LineItems[idx+1:]...)
	i.LineItems = items
	return nil
}

// Validate returns an error if the invoice is invalid
func (i Invoice) Validate() error {
	return validateStruct(i)
}
