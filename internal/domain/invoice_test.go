package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvoice(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	inv := NewInvoice(Defaults{
		InvoiceNumber: "INV-2026-004",
		RemitTo:       RemitTo{Name: "Andy", BankDetails: "IBAN 123"},
		Notes:         "Thanks!",
		PaymentLabel:  "Pay via",
		TermsTitle:    "Terms",
	}, now)

	assert.NotEmpty(t, inv.ID)
	assert.Equal(t, "INV-2026-004", inv.InvoiceNumber)
	assert.Equal(t, "2026-10-15", inv.IssueDate)
	assert.Equal(t, "2026-10-22", inv.DueDate)
	assert.Equal(t, "[Business Name]", inv.BillTo.Name)
	assert.Equal(t, "Andy", inv.RemitTo.Name)
	assert.Equal(t, "Thanks!", inv.Notes)

	require.Len(t, inv.LineItems, 1)
	assert.Equal(t, int64(1), inv.LineItems[0].Quantity)
	assert.True(t, inv.Total.IsZero())
	assert.True(t, inv.DueAmount.IsZero())
	assert.NoError(t, inv.Validate())
}

func TestNewInvoice_IDsAreUnique(t *testing.T) {
	now := time.Now()
	a := NewInvoice(Defaults{}, now)
	b := NewInvoice(Defaults{}, now)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.LineItems[0].ID, b.LineItems[0].ID)
	assert.Equal(t, now.AddDate(0, 0, DefaultDueDays).Format(DateLayout), a.DueDate)
}

func TestInvoice_AddRemoveLineItem(t *testing.T) {
	inv := sampleInvoice()

	id := inv.AddLineItem()
	require.Len(t, inv.LineItems, 3)
	assert.Equal(t, id, inv.LineItems[2].ID)

	require.NoError(t, inv.RemoveLineItem("li_1"))
	require.NoError(t, inv.RemoveLineItem(id))
	require.Len(t, inv.LineItems, 1)

	err := inv.RemoveLineItem("li_2")
	assert.ErrorIs(t, err, ErrLastLineItem)
	assert.Len(t, inv.LineItems, 1)

	assert.ErrorIs(t, inv.RemoveLineItem("missing"), ErrLineItemNotFound)
}

func TestInvoice_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invoice)
	}{
		{"missing id", func(i *Invoice) { i.ID = "" }},
		{"no line items", func(i *Invoice) { i.LineItems = nil }},
		{"discount above range", func(i *Invoice) { i.DiscountPercent = d("100.5") }},
		{"negative tax", func(i *Invoice) { i.SGSTPercent = d("-1") }},
		{"negative paid", func(i *Invoice) { i.PaidAmount = d("-0.01") }},
		{"negative price", func(i *Invoice) { i.LineItems[0].UnitPrice = d("-5") }},
		{"zero quantity", func(i *Invoice) { i.LineItems[0].Quantity = 0 }},
		{"bad date", func(i *Invoice) { i.DueDate = "15/10/2026" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice()
			tt.mutate(&inv)
			err := inv.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	assert.NoError(t, sampleInvoice().Validate())

	blank := sampleInvoice()
	blank.InvoiceNumber = ""
	assert.NoError(t, blank.Validate(), "a blank invoice number is saved as entered")
}
