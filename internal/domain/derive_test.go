package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func item(id, price string, qty int64) LineItem {
	return LineItem{ID: id, UnitPrice: d(price), Quantity: qty}
}

func sampleInvoice() Invoice {
	return Invoice{
		ID:            "inv_1",
		InvoiceNumber: "INV-2026-001",
		LineItems: []LineItem{
			item("li_1", "500", 1),
			item("li_2", "5", 15),
		},
		DiscountPercent: decimal.Zero,
		SGSTPercent:     decimal.Zero,
		CGSTPercent:     decimal.Zero,
		PaidAmount:      decimal.Zero,
	}
}

func TestComputeBreakdown_NoTaxes(t *testing.T) {
	inv := sampleInvoice()

	b := ComputeBreakdown(inv)
	assert.True(t, b.Subtotal.Equal(d("575")), "subtotal = %s", b.Subtotal)
	assert.True(t, b.Total.Equal(d("575")), "total = %s", b.Total)
	assert.True(t, b.DueAmount.Equal(d("575")), "due = %s", b.DueAmount)

	inv.PaidAmount = d("100")
	out := Derive(inv)
	assert.True(t, out.Total.Equal(d("575")))
	assert.True(t, out.DueAmount.Equal(d("475")), "due = %s", out.DueAmount)
}

func TestComputeBreakdown_DiscountAndTaxes(t *testing.T) {
	inv := sampleInvoice()
	inv.DiscountPercent = d("10")
	inv.SGSTPercent = d("9")
	inv.CGSTPercent = d("9")

	b := ComputeBreakdown(inv)
	assert.True(t, b.DiscountAmount.Equal(d("57.5")), "discount = %s", b.DiscountAmount)
	assert.True(t, b.TaxableAmount.Equal(d("517.5")), "taxable = %s", b.TaxableAmount)
	assert.True(t, b.SGSTAmount.Equal(d("46.575")), "sgst = %s", b.SGSTAmount)
	assert.True(t, b.CGSTAmount.Equal(d("46.575")), "cgst = %s", b.CGSTAmount)
	assert.Equal(t, "610.65", b.Total.StringFixed(2))
}

func TestComputeBreakdown_MatchesClosedForm(t *testing.T) {
	cases := []struct{ discount, sgst, cgst string }{
		{"0", "0", "0"},
		{"10", "9", "9"},
		{"100", "50", "50"},
		{"33.3", "2.5", "7.25"},
		{"0", "100", "100"},
	}

	for _, tc := range cases {
		inv := sampleInvoice()
		inv.DiscountPercent = d(tc.discount)
		inv.SGSTPercent = d(tc.sgst)
		inv.CGSTPercent = d(tc.cgst)

		b := ComputeBreakdown(inv)

		// subtotal*(1-discount/100)*(1+sgst/100+cgst/100)
		want := b.Subtotal.
			Mul(decimal.NewFromInt(1).Sub(inv.DiscountPercent.Div(hundred))).
			Mul(decimal.NewFromInt(1).Add(inv.SGSTPercent.Div(hundred)).Add(inv.CGSTPercent.Div(hundred)))

		diff := b.Total.Sub(want).Abs()
		assert.True(t, diff.LessThan(d("0.000001")), "discount=%s sgst=%s cgst=%s: total %s want %s",
			tc.discount, tc.sgst, tc.cgst, b.Total, want)
	}
}

func TestDerive_ZeroSubtotalOverpaid(t *testing.T) {
	inv := sampleInvoice()
	inv.LineItems = []LineItem{item("li_1", "0", 1)}
	inv.PaidAmount = d("40")

	out := Derive(inv)
	assert.True(t, out.Total.IsZero())
	assert.True(t, out.DueAmount.Equal(d("-40")), "due = %s", out.DueAmount)
}

func TestDerive_Idempotent(t *testing.T) {
	inv := sampleInvoice()
	inv.DiscountPercent = d("12.5")
	inv.SGSTPercent = d("6")
	inv.PaidAmount = d("1000")

	once := Derive(inv)
	twice := Derive(once)
	assert.True(t, once.Total.Equal(twice.Total))
	assert.True(t, once.DueAmount.Equal(twice.DueAmount))
	assert.True(t, twice.DueAmount.IsNegative(), "overpayment should be representable")
}

func TestDerive_DoesNotAliasInput(t *testing.T) {
	inv := sampleInvoice()
	out := Derive(inv)
	out.LineItems[0].Description = "changed"
	assert.Empty(t, inv.LineItems[0].Description)
}

func TestUpdateLineItem(t *testing.T) {
	items := Derive(sampleInvoice()).LineItems

	t.Run("price recomputes subtotal", func(t *testing.T) {
		out := UpdateLineItem(items, "li_2", SetUnitPrice(d("7.5")))
		assert.True(t, out[1].Subtotal.Equal(d("112.5")), "subtotal = %s", out[1].Subtotal)
		assert.True(t, items[1].Subtotal.Equal(d("75")), "input must not change")
	})

	t.Run("quantity recomputes subtotal", func(t *testing.T) {
		out := UpdateLineItem(items, "li_1", SetQuantity(3))
		assert.Equal(t, int64(3), out[0].Quantity)
		assert.True(t, out[0].Subtotal.Equal(d("1500")))
	})

	t.Run("description copies subtotal through", func(t *testing.T) {
		out := UpdateLineItem(items, "li_1", SetDescription("Landing Page"))
		assert.Equal(t, "Landing Page", out[0].Description)
		assert.True(t, out[0].Subtotal.Equal(items[0].Subtotal))
		assert.True(t, out[0].UnitPrice.Equal(items[0].UnitPrice))
	})

	t.Run("unknown id is ignored", func(t *testing.T) {
		out := UpdateLineItem(items, "missing", SetQuantity(9))
		require.Len(t, out, 2)
		assert.Equal(t, items, out)
	})

	t.Run("subtotals always sum to price times quantity", func(t *testing.T) {
		out := UpdateLineItem(items, "li_1", SetUnitPrice(d("19.99")))
		out = UpdateLineItem(out, "li_2", SetQuantity(4))
		out = UpdateLineItem(out, "li_1", SetQuantity(2))

		sumSub, sumProd := decimal.Zero, decimal.Zero
		for _, it := range out {
			sumSub = sumSub.Add(it.Subtotal)
			sumProd = sumProd.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
		}
		assert.True(t, sumSub.Equal(sumProd))
	})
}

func TestPaymentProgress(t *testing.T) {
	inv := Derive(sampleInvoice())

	inv.PaidAmount = d("287.5")
	assert.True(t, PaymentProgress(inv).Equal(d("50")))

	inv.PaidAmount = d("1000")
	assert.True(t, PaymentProgress(inv).Equal(hundred), "progress is clamped")

	zero := Derive(Invoice{LineItems: []LineItem{item("li_1", "0", 1)}, PaidAmount: d("5")})
	assert.True(t, PaymentProgress(zero).IsZero())
}
