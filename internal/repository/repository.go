package repository

import (
	"context"

	"github.com/andy/invoicedesk/internal/domain"
)

// CollectionSlot is the name under which the invoice collection is stored
const CollectionSlot = "invoices"

// InvoiceStore persists the whole invoice collection as one document.
// Save overwrites the previous contents; Load on a store that was never
// written returns an empty collection and no error.
type InvoiceStore interface {
	Load(ctx context.Context) (domain.Collection, error)
	Save(ctx context.Context, invoices domain.Collection) error
}
