package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andy/invoicedesk/internal/db"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cockroachdb/errors"
	sqlite3 "github.com/mutecomm/go-sqlcipher/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCollection() domain.Collection {
	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	a := domain.NewInvoice(domain.Defaults{InvoiceNumber: "INV-2026-001"}, now)
	a.BillTo.Name = "Globex"
	a.LineItems[0].Description = "Website Design"
	a.LineItems[0].UnitPrice = decimal.RequireFromString("500")
	a.AddLineItem()
	a.LineItems[1].UnitPrice = decimal.RequireFromString("5")
	a.LineItems[1].Quantity = 15
	a.DiscountPercent = decimal.RequireFromString("10")
	a.SGSTPercent = decimal.RequireFromString("9")
	a.CGSTPercent = decimal.RequireFromString("9")
	a.PaidAmount = decimal.RequireFromString("100.25")

	b := domain.NewInvoice(domain.Defaults{InvoiceNumber: "INV-2026-002", Notes: "Net 7"}, now)

	return domain.Collection{domain.Derive(a), domain.Derive(b)}
}

func assertSameCollection(t *testing.T, want, got domain.Collection) {
	t.Helper()
	require.Len(t, got, len(want))

	for i := range want {
		w, g := want[i], got[i]
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.InvoiceNumber, g.InvoiceNumber)
		assert.Equal(t, w.IssueDate, g.IssueDate)
		assert.Equal(t, w.DueDate, g.DueDate)
		assert.Equal(t, w.BillTo, g.BillTo)
		assert.Equal(t, w.RemitTo, g.RemitTo)
		assert.Equal(t, w.Notes, g.Notes)
		assert.Equal(t, w.PaymentInstructions, g.PaymentInstructions)
		assert.Equal(t, w.PaymentLabel, g.PaymentLabel)
		assert.Equal(t, w.TermsTitle, g.TermsTitle)

		for _, pair := range [][2]decimal.Decimal{
			{w.DiscountPercent, g.DiscountPercent},
			{w.SGSTPercent, g.SGSTPercent},
			{w.CGSTPercent, g.CGSTPercent},
			{w.Total, g.Total},
			{w.PaidAmount, g.PaidAmount},
			{w.DueAmount, g.DueAmount},
		} {
			assert.True(t, pair[0].Equal(pair[1]), "invoice %s: want %s got %s", w.ID, pair[0], pair[1])
		}

		require.Len(t, g.LineItems, len(w.LineItems))
		for j := range w.LineItems {
			wi, gi := w.LineItems[j], g.LineItems[j]
			assert.Equal(t, wi.ID, gi.ID)
			assert.Equal(t, wi.Description, gi.Description)
			assert.Equal(t, wi.Quantity, gi.Quantity)
			assert.True(t, wi.UnitPrice.Equal(gi.UnitPrice))
			assert.True(t, wi.Subtotal.Equal(gi.Subtotal))
		}
	}
}

func TestDocument_RoundTrip(t *testing.T) {
	want := testCollection()

	data, err := EncodeDocument(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)
	assert.Contains(t, string(data), `"invoiceNumber":"INV-2026-001"`)

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	assertSameCollection(t, want, got)
}

func TestDocument_EmptyCollection(t *testing.T) {
	data, err := EncodeDocument(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1,"invoices":[]}`, string(data))

	got, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = DecodeDocument([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDocument_AcceptsBareArray(t *testing.T) {
	legacy := `[{
		"id": "1718000000000",
		"invoiceNumber": "INV-001",
		"lineItems": [{"id": "1", "description": "Logo", "unitPrice": 500, "quantity": 1, "subtotal": 500}],
		"discountPercent": 0, "sgstPercent": 9, "cgstPercent": 9,
		"total": 590, "paidAmount": 0, "dueAmount": 590
	}]`

	got, err := DecodeDocument([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "INV-001", got[0].InvoiceNumber)
	assert.True(t, got[0].Total.Equal(decimal.NewFromInt(590)))
	assert.True(t, got[0].LineItems[0].UnitPrice.Equal(decimal.NewFromInt(500)))
}

func TestDocument_Corrupt(t *testing.T) {
	for _, payload := range []string{`{"version":1,"invoices":[{`, `not json`, `[1,2,3]`} {
		_, err := DecodeDocument([]byte(payload))
		require.Error(t, err, payload)
		assert.True(t, errors.Is(err, ErrCorruptPayload), "%q: %v", payload, err)
	}

	_, err := DecodeDocument([]byte(`{"version":99,"invoices":[]}`))
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := testCollection()
	require.NoError(t, store.Save(ctx, want))
	assert.Equal(t, 1, store.SaveCount())

	// Mutating the saved collection must not reach the store
	want[0].Notes = "changed after save"
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "changed after save", got[0].Notes)

	store.SetSaveErr(errors.New("disk full"))
	assert.Error(t, store.Save(ctx, nil))
	assert.Equal(t, 1, store.SaveCount())

	corrupt := NewMemoryStoreWithPayload([]byte("{oops"))
	_, err = corrupt.Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptPayload))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "invoices.json")
	store := NewFileStore(path)

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := testCollection()
	require.NoError(t, store.Save(ctx, want))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assertSameCollection(t, want, got)

	// Overwritten wholesale
	require.NoError(t, store.Save(ctx, want[1:]))
	got, err = store.Load(ctx)
	require.NoError(t, err)
	assertSameCollection(t, want[1:], got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))
	_, err = store.Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptPayload))
}

func TestFileStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewFileStore(filepath.Join(t.TempDir(), "invoices.json"))
	assert.ErrorIs(t, store.Save(ctx, nil), context.Canceled)
}

func openStoreDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "invoicedesk.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())
	return database
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteStore(openStoreDB(t))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	want := testCollection()
	require.NoError(t, store.Save(ctx, want))
	require.NoError(t, store.Save(ctx, want[:1]))

	got, err = store.Load(ctx)
	require.NoError(t, err)
	assertSameCollection(t, want[:1], got)
}

func TestSQLiteStore_HistoryIsPruned(t *testing.T) {
	ctx := context.Background()
	database := openStoreDB(t)
	store := NewSQLiteStore(database)

	want := testCollection()
	for i := 0; i < historyLimit+5; i++ {
		require.NoError(t, store.Save(ctx, want))
	}

	var n int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM document_history WHERE name = ?`, CollectionSlot,
	).Scan(&n))
	assert.Equal(t, historyLimit, n)
}

func TestSQLiteStore_CorruptSlot(t *testing.T) {
	ctx := context.Background()
	database := openStoreDB(t)

	_, err := database.Exec(`INSERT INTO document_slots (name, payload) VALUES (?, ?)`, CollectionSlot, "{broken")
	require.NoError(t, err)

	_, err = NewSQLiteStore(database).Load(ctx)
	assert.True(t, errors.Is(err, ErrCorruptPayload))
}

func TestDocument_AcceptsBrowserPayload(t *testing.T) {
	payload := `[{
		"id": "1718000000000",
		"invoiceNo": "#405",
		"date": "15 Oct 2026",
		"dueDate": "22 Oct 2026",
		"billTo": {"name": "Globex", "email": "ap@globex.test", "address": "1 Main St"},
		"paymentMethod": {"name": "ACME", "email": "pay@acme.test", "address": "", "bankDetails": "IBAN 1", "contact": "555"},
		"lineItems": [
			{"id": "1", "description": "Landing Page", "price": 500, "quantity": 1, "subtotal": 500},
			{"id": "2", "description": "Revisions", "price": 5, "quantity": 15, "subtotal": 75}
		],
		"discount": 10, "sgst": 9, "cgst": 9,
		"total": 610.65, "paidAmount": 0, "dueAmount": 610.65,
		"notes": "This invoice will be expired on (date)",
		"paymentInstructions": "Payment can be done using the provided link below (email)",
		"paymentLabel": "Pay Online",
		"termsTitle": "TERMS AND CONDITIONS"
	}]`

	got, err := DecodeDocument([]byte(payload))
	require.NoError(t, err)
	require.Len(t, got, 1)

	inv := got[0]
	assert.Equal(t, "#405", inv.InvoiceNumber)
	assert.Equal(t, "2026-10-15", inv.IssueDate)
	assert.Equal(t, "2026-10-22", inv.DueDate)
	assert.Equal(t, "ACME", inv.RemitTo.Name)
	assert.Equal(t, "IBAN 1", inv.RemitTo.BankDetails)
	assert.True(t, inv.DiscountPercent.Equal(decimal.NewFromInt(10)))
	assert.True(t, inv.CGSTPercent.Equal(decimal.NewFromInt(9)))
	require.Len(t, inv.LineItems, 2)
	assert.True(t, inv.LineItems[1].UnitPrice.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "610.65", domain.Derive(inv).Total.StringFixed(2))
}

func TestDocument_BrowserPayloadWithFractionalQuantity(t *testing.T) {
	payload := `[
		{"id": "a", "invoiceNo": "#1", "lineItems": [{"id": "1", "description": "Design", "price": 100, "quantity": 2, "subtotal": 200}]},
		{"id": "b", "invoiceNo": "#2", "lineItems": [
			{"id": "1", "description": "Consulting", "price": 80, "quantity": 1.5, "subtotal": 120},
			{"id": "2", "description": "Setup", "price": 10, "quantity": 0, "subtotal": 0},
			{"id": "3", "description": "Extras", "price": 5}
		]}
	]`

	got, err := DecodeDocument([]byte(payload))
	require.NoError(t, err)
	require.Len(t, got, 2, "one odd quantity must not drop the whole collection")

	assert.Equal(t, int64(2), got[0].LineItems[0].Quantity)

	items := got[1].LineItems
	require.Len(t, items, 3)
	assert.Equal(t, int64(2), items[0].Quantity)
	assert.Equal(t, int64(1), items[1].Quantity)
	assert.Equal(t, int64(1), items[2].Quantity)
	assert.NoError(t, domain.Derive(got[1]).Validate())

	store := NewMemoryStoreWithPayload([]byte(payload))
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, isBusy(sqlite3.Error{Code: sqlite3.ErrBusy}))
	assert.True(t, isBusy(errors.Wrap(sqlite3.Error{Code: sqlite3.ErrLocked}, "failed to save invoices")))
	assert.False(t, isBusy(sqlite3.Error{Code: sqlite3.ErrConstraint}))
	assert.False(t, isBusy(errors.New("database is locked")), "only driver error codes count")
	assert.False(t, isBusy(nil))
}
