package service

import "github.com/andy/invoicedesk/internal/domain"

// ViewKind identifies which screen the controller is on
type ViewKind int

const (
	ViewListing ViewKind = iota
	ViewEditing
	ViewPreviewing
)

func (k ViewKind) String() string {
	switch k {
	case ViewListing:
		return "listing"
	case ViewEditing:
		return "editing"
	case ViewPreviewing:
		return "previewing"
	default:
		return "unknown"
	}
}

// View is the current navigation state. It is one of Listing, Editing or
// Previewing; the unexported method closes the set.
type View interface {
	Kind() ViewKind
	isView()
}

// Listing shows the collection. Nothing is selected.
type Listing struct{}

// Editing holds the draft being edited. The draft may or may not exist in
// the collection yet.
type Editing struct {
	Draft domain.Invoice
}

// Previewing renders an invoice read-only. ReturnsTo is ViewEditing when the
// preview was opened from the form, in which case Invoice is the unsaved draft.
type Previewing struct {
	Invoice   domain.Invoice
	ReturnsTo ViewKind
}

func (Listing) Kind() ViewKind    { return ViewListing }
func (Editing) Kind() ViewKind    { return ViewEditing }
func (Previewing) Kind() ViewKind { return ViewPreviewing }

func (Listing) isView()    {}
func (Editing) isView()    {}
func (Previewing) isView() {}

// cloneView deep-copies any invoice the view carries
func cloneView(v View) View {
	switch v := v.(type) {
	case Editing:
		return Editing{Draft: v.Draft.Clone()}
	case Previewing:
		return Previewing{Invoice: v.Invoice.Clone(), ReturnsTo: v.ReturnsTo}
	default:
		return Listing{}
	}
}
