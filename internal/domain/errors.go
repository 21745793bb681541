package domain

import "github.com/cockroachdb/errors"

var (
	// ErrValidation marks input rejected at the editing boundary
	ErrValidation = errors.New("validation error")

	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrLineItemNotFound = errors.New("line item not found")

	// ErrLastLineItem is returned when removing the only line item of an invoice
	ErrLastLineItem = errors.New("an invoice needs at least one line item")
)

// IsValidation reports whether err was rejected as invalid input
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
