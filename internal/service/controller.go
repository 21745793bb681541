package service

import (
	"context"
	"sync"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/logger"
	"github.com/andy/invoicedesk/internal/repository"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidTransition is returned for an intent the current view does not accept
	ErrInvalidTransition = errors.New("invalid transition")

	ErrPersist = errors.New("failed to persist invoices")
)

// Acknowledgment messages
const (
	MsgCreated      = "Invoice created successfully!"
	MsgUpdated      = "Invoice updated successfully!"
	MsgDeleted      = "Invoice deleted successfully!"
	MsgPaid         = "Payment recorded successfully!"
	MsgReset        = "All invoices deleted."
	MsgSaveFailed   = "Failed to save invoice"
	MsgDeleteFailed = "Failed to delete invoice"
	MsgResetFailed  = "Failed to delete invoices"
)

// Controller owns the invoice collection and the navigation state. It is the
// only writer to the store. Every mutation persists the whole collection.
type Controller interface {
	// View returns the current navigation state
	View() View

	// Invoices returns a copy of the collection in display order
	Invoices() domain.Collection

	// Active returns the draft or previewed invoice, if any
	Active() (domain.Invoice, bool)

	// Get resolves an invoice by id or invoice number
	Get(ref string) (domain.Invoice, error)

	// Summary totals the collection as of now
	Summary(now time.Time) domain.Summary

	NewInvoice() error
	EditInvoice(id string) error
	PreviewInvoice(id string) error
	Preview() error
	BackToForm() error
	BackToList() error

	// SaveDraft upserts the draft, persists and returns to the list
	SaveDraft(ctx context.Context) error

	// DeleteInvoice removes a member. An unknown id is a no-op.
	DeleteInvoice(ctx context.Context, id string) error

	// SaveInvoice upserts inv regardless of the current view
	SaveInvoice(ctx context.Context, inv domain.Invoice) (domain.Invoice, error)

	// RecordPayment adds amount to the paid amount of an invoice
	RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (domain.Invoice, error)

	// Reset deletes every invoice
	Reset(ctx context.Context) error

	// Draft intents, accepted only while editing
	SetField(path, value string) error
	AddLineItem() (string, error)
	RemoveLineItem(id string) error
	UpdateLineItem(id, field, value string) error

	SetNotifier(n Notifier)
}

// ControllerConfig carries the collaborators of a Controller
type ControllerConfig struct {
	Store    repository.InvoiceStore
	Logger   *logger.Logger
	Notifier Notifier

	// Defaults returns the values new invoices start from
	Defaults func() domain.Defaults

	// NumberPrefix returns the prefix for generated invoice numbers
	NumberPrefix func() string

	Now func() time.Time
}

type controller struct {
	mu       sync.Mutex
	store    repository.InvoiceStore
	log      *logger.Logger
	notifier Notifier
	defaults func() domain.Defaults
	prefix   func() string
	now      func() time.Time

	invoices domain.Collection
	view     View
}

// ack is an acknowledgment emitted once the lock is released, so a notifier
// may call back into the controller
type ack struct {
	msg string
	err error
}

// NewController loads the collection once. A load failure is logged and the
// controller starts empty.
func NewController(ctx context.Context, cfg ControllerConfig) Controller {
	c := &controller{
		store:    cfg.Store,
		log:      cfg.Logger,
		notifier: cfg.Notifier,
		defaults: cfg.Defaults,
		prefix:   cfg.NumberPrefix,
		now:      cfg.Now,
		view:     Listing{},
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.defaults == nil {
		c.defaults = func() domain.Defaults { return domain.Defaults{} }
	}
	if c.prefix == nil {
		c.prefix = func() string { return "INV" }
	}
	if c.now == nil {
		c.now = time.Now
	}

	c.invoices = c.load(ctx)
	return c
}

func (c *controller) load(ctx context.Context) domain.Collection {
	loaded, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warnw("could not load invoices, starting empty", "error", err)
		return domain.Collection{}
	}

	// Re-derive so cached totals written by older versions are consistent
	healed := make(domain.Collection, 0, len(loaded))
	seen := make(map[string]bool, len(loaded))
	for _, inv := range loaded {
		if inv.ID == "" || seen[inv.ID] {
			c.log.Warnw("skipping invoice without a unique id", "invoice_number", inv.InvoiceNumber)
			continue
		}
		seen[inv.ID] = true
		healed = append(healed, domain.Derive(inv))
	}

	c.log.Infow("loaded invoices", "count", len(healed))
	return healed
}

func (c *controller) SetNotifier(n Notifier) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	c.notifier = n
}

func (c *controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneView(c.view)
}

func (c *controller) Invoices() domain.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invoices.Clone()
}

func (c *controller) Active() (domain.Invoice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch v := c.view.(type) {
	case Editing:
		return v.Draft.Clone(), true
	case Previewing:
		return v.Invoice.Clone(), true
	default:
		return domain.Invoice{}, false
	}
}

func (c *controller) Get(ref string) (domain.Invoice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	inv, ok := c.invoices.Resolve(ref)
	if !ok {
		return domain.Invoice{}, errors.Wrapf(domain.ErrInvoiceNotFound, "%q", ref)
	}
	return inv, nil
}

func (c *controller) Summary(now time.Time) domain.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Summarize(c.invoices, now)
}

func (c *controller) NewInvoice() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.view.(Listing); !ok {
		return c.invalid("new invoice")
	}

	now := c.now()
	d := c.defaults()
	if d.InvoiceNumber == "" {
		d.InvoiceNumber = c.invoices.NextInvoiceNumber(c.prefix(), now.Year())
	}

	c.view = Editing{Draft: domain.NewInvoice(d, now)}
	return nil
}

func (c *controller) EditInvoice(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.view.(Listing); !ok {
		return c.invalid("edit invoice")
	}
	inv, ok := c.invoices.Get(id)
	if !ok {
		return errors.Wrapf(domain.ErrInvoiceNotFound, "%q", id)
	}

	c.view = Editing{Draft: inv}
	return nil
}

func (c *controller) PreviewInvoice(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.view.(Listing); !ok {
		return c.invalid("preview invoice")
	}
	inv, ok := c.invoices.Get(id)
	if !ok {
		return errors.Wrapf(domain.ErrInvoiceNotFound, "%q", id)
	}

	c.view = Previewing{Invoice: inv, ReturnsTo: ViewListing}
	return nil
}

func (c *controller) Preview() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	editing, ok := c.view.(Editing)
	if !ok {
		return c.invalid("preview draft")
	}

	c.view = Previewing{Invoice: editing.Draft, ReturnsTo: ViewEditing}
	return nil
}

func (c *controller) BackToForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	previewing, ok := c.view.(Previewing)
	if !ok || previewing.ReturnsTo != ViewEditing {
		return c.invalid("back to form")
	}

	c.view = Editing{Draft: previewing.Invoice}
	return nil
}

func (c *controller) BackToList() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.view.(Listing); ok {
		return c.invalid("back to list")
	}

	c.view = Listing{}
	return nil
}

func (c *controller) SaveDraft(ctx context.Context) error {
	a, err := c.saveDraft(ctx)
	c.emit(a)
	return err
}

func (c *controller) saveDraft(ctx context.Context) (ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	editing, ok := c.view.(Editing)
	if !ok {
		return ack{}, c.invalid("save draft")
	}

	_, a, err := c.upsert(ctx, editing.Draft)
	if err != nil {
		return a, err
	}

	c.view = Listing{}
	return a, nil
}

func (c *controller) SaveInvoice(ctx context.Context, inv domain.Invoice) (domain.Invoice, error) {
	c.mu.Lock()
	saved, a, err := c.upsert(ctx, inv)
	c.mu.Unlock()

	c.emit(a)
	return saved, err
}

// upsert derives, validates and persists inv. Callers hold the lock.
func (c *controller) upsert(ctx context.Context, inv domain.Invoice) (domain.Invoice, ack, error) {
	inv = domain.Derive(inv)
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, ack{msg: MsgSaveFailed, err: err}, err
	}

	next, replaced := c.invoices.Upsert(inv)
	if err := c.persist(ctx, next); err != nil {
		return domain.Invoice{}, ack{msg: MsgSaveFailed, err: err}, err
	}

	msg := MsgCreated
	if replaced {
		msg = MsgUpdated
	}
	c.log.Infow("saved invoice", "invoice_id", inv.ID, "invoice_number", inv.InvoiceNumber, "replaced", replaced)
	return inv.Clone(), ack{msg: msg}, nil
}

func (c *controller) DeleteInvoice(ctx context.Context, id string) error {
	a, err := c.deleteInvoice(ctx, id)
	c.emit(a)
	return err
}

func (c *controller) deleteInvoice(ctx context.Context, id string) (ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.view.(Listing); !ok {
		return ack{}, c.invalid("delete invoice")
	}

	next, removed := c.invoices.Delete(id)
	if !removed {
		c.log.Debugw("delete ignored, no such invoice", "invoice_id", id)
		return ack{}, nil
	}

	if err := c.persist(ctx, next); err != nil {
		return ack{msg: MsgDeleteFailed, err: err}, err
	}

	c.log.Infow("deleted invoice", "invoice_id", id)
	return ack{msg: MsgDeleted}, nil
}

func (c *controller) RecordPayment(ctx context.Context, id string, amount decimal.Decimal) (domain.Invoice, error) {
	if !amount.IsPositive() {
		return domain.Invoice{}, invalidf("payment must be greater than zero, got %s", amount)
	}

	c.mu.Lock()
	inv, ok := c.invoices.Get(id)
	if !ok {
		c.mu.Unlock()
		return domain.Invoice{}, errors.Wrapf(domain.ErrInvoiceNotFound, "%q", id)
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	saved, a, err := c.upsert(ctx, inv)
	c.mu.Unlock()

	if err == nil {
		a.msg = MsgPaid
	}
	c.emit(a)
	return saved, err
}

func (c *controller) Reset(ctx context.Context) error {
	a, err := c.reset(ctx)
	c.emit(a)
	return err
}

func (c *controller) reset(ctx context.Context) (ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.persist(ctx, domain.Collection{}); err != nil {
		return ack{msg: MsgResetFailed, err: err}, err
	}

	c.view = Listing{}
	c.log.Infow("deleted all invoices")
	return ack{msg: MsgReset}, nil
}

func (c *controller) SetField(path, value string) error {
	return c.editDraft(func(draft *domain.Invoice) error {
		return applyField(draft, path, value)
	})
}

func (c *controller) AddLineItem() (string, error) {
	var id string
	err := c.editDraft(func(draft *domain.Invoice) error {
		id = draft.AddLineItem()
		return nil
	})
	return id, err
}

func (c *controller) RemoveLineItem(id string) error {
	return c.editDraft(func(draft *domain.Invoice) error {
		return draft.RemoveLineItem(id)
	})
}

func (c *controller) UpdateLineItem(id, field, value string) error {
	return c.editDraft(func(draft *domain.Invoice) error {
		if draft.FindLineItem(id) < 0 {
			return errors.Wrapf(domain.ErrLineItemNotFound, "%q", id)
		}
		upd, err := parseLineItemUpdate(field, value)
		if err != nil {
			return err
		}
		draft.LineItems = domain.UpdateLineItem(draft.LineItems, id, upd)
		return nil
	})
}

// editDraft applies fn to a copy of the draft and keeps the result, derived,
// only if fn succeeds
func (c *controller) editDraft(fn func(draft *domain.Invoice) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	editing, ok := c.view.(Editing)
	if !ok {
		return c.invalid("edit draft")
	}

	draft := editing.Draft.Clone()
	if err := fn(&draft); err != nil {
		return err
	}

	c.view = Editing{Draft: domain.Derive(draft)}
	return nil
}

// persist saves next and swaps it in. On failure the in-memory collection
// is left as it was.
func (c *controller) persist(ctx context.Context, next domain.Collection) error {
	if err := c.store.Save(ctx, next); err != nil {
		c.log.Errorw("failed to persist invoices", "error", err, "count", len(next))
		return errors.Mark(errors.Wrap(err, "failed to persist invoices"), ErrPersist)
	}
	c.invoices = next
	return nil
}

func (c *controller) invalid(intent string) error {
	return errors.Wrapf(ErrInvalidTransition, "%s while %s", intent, c.view.Kind())
}

func (c *controller) emit(a ack) {
	if a.msg == "" {
		return
	}

	c.mu.Lock()
	n := c.notifier
	c.mu.Unlock()

	if a.err != nil {
		n.Failure(a.msg, a.err)
		return
	}
	n.Success(a.msg)
}
