package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(id, number string) Invoice {
	inv := sampleInvoice()
	inv.ID = id
	inv.InvoiceNumber = number
	return Derive(inv)
}

func TestCollection_UpsertAppendsNewID(t *testing.T) {
	c := Collection{newTestInvoice("a", "INV-2026-001")}

	out, replaced := c.Upsert(newTestInvoice("b", "INV-2026-002"))
	assert.False(t, replaced)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[1].ID)
	assert.Len(t, c, 1, "receiver must not change")
}

func TestCollection_UpsertReplacesInPlace(t *testing.T) {
	c := Collection{
		newTestInvoice("a", "INV-2026-001"),
		newTestInvoice("b", "INV-2026-002"),
		newTestInvoice("c", "INV-2026-003"),
	}

	upd := c[1].Clone()
	upd.Notes = "updated"
	out, replaced := c.Upsert(upd)

	assert.True(t, replaced)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, "updated", out[1].Notes)
	assert.Empty(t, c[1].Notes)
}

func TestCollection_Delete(t *testing.T) {
	c := Collection{
		newTestInvoice("a", "INV-2026-001"),
		newTestInvoice("b", "INV-2026-002"),
	}

	out, removed := c.Delete("a")
	assert.True(t, removed)
	require.Len(t, out, 1)
	assert.Equal(t, "b", out[0].ID)

	same, removed := out.Delete("missing")
	assert.False(t, removed)
	assert.Len(t, same, 1)
}

func TestCollection_CloneDoesNotShareLineItems(t *testing.T) {
	c := Collection{newTestInvoice("a", "INV-2026-001")}
	cp := c.Clone()
	cp[0].LineItems[0].Description = "mutated"
	assert.Empty(t, c[0].LineItems[0].Description)

	assert.NotNil(t, Collection(nil).Clone())
}

func TestCollection_Resolve(t *testing.T) {
	c := Collection{
		newTestInvoice("inv_a", "INV-2026-001"),
		newTestInvoice("inv_b", "INV-2026-002"),
	}

	inv, ok := c.Resolve("inv_b")
	require.True(t, ok)
	assert.Equal(t, "INV-2026-002", inv.InvoiceNumber)

	inv, ok = c.Resolve("inv-2026-001")
	require.True(t, ok)
	assert.Equal(t, "inv_a", inv.ID)

	_, ok = c.Resolve("nope")
	assert.False(t, ok)
}

func TestCollection_NextInvoiceNumber(t *testing.T) {
	c := Collection{
		newTestInvoice("a", "INV-2026-001"),
		newTestInvoice("b", "INV-2026-007"),
		newTestInvoice("c", "INV-2025-042"),
		newTestInvoice("d", "custom"),
	}

	assert.Equal(t, "INV-2026-008", c.NextInvoiceNumber("INV", 2026))
	assert.Equal(t, "INV-2027-001", c.NextInvoiceNumber("INV", 2027))
	assert.Equal(t, "ACME-2026-001", c.NextInvoiceNumber("ACME", 2026))
	assert.Equal(t, "INV-2026-001", Collection{}.NextInvoiceNumber("", 2026))
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate string
		paid    string
		want    InvoiceStatus
	}{
		{"settled", "2026-01-01", "575", InvoiceStatusPaid},
		{"overpaid", "2026-01-01", "600", InvoiceStatusPaid},
		{"past due", "2026-03-09", "0", InvoiceStatusOverdue},
		{"due today", "2026-03-10", "0", InvoiceStatusDueSoon},
		{"due in a week", "2026-03-17", "0", InvoiceStatusDueSoon},
		{"due later", "2026-03-18", "100", InvoiceStatusActive},
		{"bad date", "soon", "0", InvoiceStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice()
			inv.DueDate = tt.dueDate
			inv.PaidAmount = d(tt.paid)
			assert.Equal(t, tt.want, StatusOf(Derive(inv), now))
		})
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	paid := sampleInvoice()
	paid.ID = "a"
	paid.DueDate = "2026-01-01"
	paid.PaidAmount = d("575")

	late := sampleInvoice()
	late.ID = "b"
	late.DueDate = "2026-02-01"
	late.PaidAmount = d("75")

	s := Summarize(Collection{Derive(paid), Derive(late)}, now)
	assert.Equal(t, 2, s.Count)
	assert.True(t, s.TotalValue.Equal(d("1150")), "value = %s", s.TotalValue)
	assert.True(t, s.TotalPaid.Equal(d("650")))
	assert.True(t, s.TotalDue.Equal(d("500")))
	assert.Equal(t, 1, s.Overdue)

	empty := Summarize(nil, now)
	assert.Equal(t, 0, empty.Count)
	assert.True(t, empty.TotalValue.IsZero())
}
