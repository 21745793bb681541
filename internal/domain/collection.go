package domain

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Collection is the ordered set of invoices, unique by ID
type Collection []Invoice

// Clone deep-copies the collection
func (c Collection) Clone() Collection {
	if c == nil {
		return Collection{}
	}
	return lo.Map(c, func(inv Invoice, _ int) Invoice { return inv.Clone() })
}

// IndexOf returns the position of the invoice with the given id, or -1
func (c Collection) IndexOf(id string) int {
	_, idx, ok := lo.FindIndexOf(c, func(inv Invoice) bool { return inv.ID == id })
	if !ok {
		return -1
	}
	return idx
}

// Get returns a copy of the invoice with the given id
func (c Collection) Get(id string) (Invoice, bool) {
	idx := c.IndexOf(id)
	if idx < 0 {
		return Invoice{}, false
	}
	return c[idx].Clone(), true
}

// Resolve looks an invoice up by id first, then by invoice number
func (c Collection) Resolve(ref string) (Invoice, bool) {
	if inv, ok := c.Get(ref); ok {
		return inv, true
	}
	inv, ok := lo.Find(c, func(inv Invoice) bool {
		return strings.EqualFold(inv.InvoiceNumber, ref)
	})
	if !ok {
		return Invoice{}, false
	}
	return inv.Clone(), true
}

// Upsert replaces the member with inv's id, or appends inv when none matches.
// It reports whether an existing member was replaced.
func (c Collection) Upsert(inv Invoice) (Collection, bool) {
	out := c.Clone()
	if idx := out.IndexOf(inv.ID); idx >= 0 {
		out[idx] = inv.Clone()
		return out, true
	}
	return append(out, inv.Clone()), false
}

// Delete removes the member with the given id. It reports whether one was removed.
func (c Collection) Delete(id string) (Collection, bool) {
	if c.IndexOf(id) < 0 {
		return c.Clone(), false
	}
	out := lo.Filter(c.Clone(), func(inv Invoice, _ int) bool { return inv.ID != id })
	return out, true
}

// NextInvoiceNumber generates the next number in format "PREFIX-YEAR-SEQUENCE"
func (c Collection) NextInvoiceNumber(prefix string, year int) string {
	if prefix == "" {
		prefix = "INV"
	}

	lastSeq := 0
	for _, inv := range c {
		var y, seq int
		if _, err := fmt.Sscanf(inv.InvoiceNumber, prefix+"-%d-%d", &y, &seq); err != nil {
			continue
		}
		if y == year && seq > lastSeq {
			lastSeq = seq
		}
	}

	return fmt.Sprintf("%s-%d-%03d", prefix, year, lastSeq+1)
}
