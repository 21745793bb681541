package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/shopspring/decimal"
)

// Editable invoice field paths
const (
	FieldInvoiceNumber       = "invoiceNumber"
	FieldIssueDate           = "issueDate"
	FieldDueDate             = "dueDate"
	FieldBillToName          = "billTo.name"
	FieldBillToEmail         = "billTo.email"
	FieldBillToAddress       = "billTo.address"
	FieldRemitToName         = "remitTo.name"
	FieldRemitToEmail        = "remitTo.email"
	FieldRemitToAddress      = "remitTo.address"
	FieldRemitToBankDetails  = "remitTo.bankDetails"
	FieldRemitToContact      = "remitTo.contact"
	FieldDiscountPercent     = "discountPercent"
	FieldSGSTPercent         = "sgstPercent"
	FieldCGSTPercent         = "cgstPercent"
	FieldPaidAmount          = "paidAmount"
	FieldNotes               = "notes"
	FieldPaymentInstructions = "paymentInstructions"
	FieldPaymentLabel        = "paymentLabel"
	FieldTermsTitle          = "termsTitle"
)

// FieldPaths lists every path accepted by SetField, in form order
var FieldPaths = []string{
	FieldInvoiceNumber, FieldIssueDate, FieldDueDate,
	FieldBillToName, FieldBillToEmail, FieldBillToAddress,
	FieldRemitToName, FieldRemitToEmail, FieldRemitToAddress, FieldRemitToBankDetails, FieldRemitToContact,
	FieldDiscountPercent, FieldSGSTPercent, FieldCGSTPercent, FieldPaidAmount,
	FieldNotes, FieldPaymentInstructions, FieldPaymentLabel, FieldTermsTitle,
}

// FieldValue reads the display text of a field path, the inverse of applyField
func FieldValue(inv domain.Invoice, path string) (string, bool) {
	switch path {
	case FieldInvoiceNumber:
		return inv.InvoiceNumber, true
	case FieldIssueDate:
		return inv.IssueDate, true
	case FieldDueDate:
		return inv.DueDate, true
	case FieldBillToName:
		return inv.BillTo.Name, true
	case FieldBillToEmail:
		return inv.BillTo.Email, true
	case FieldBillToAddress:
		return inv.BillTo.Address, true
	case FieldRemitToName:
		return inv.RemitTo.Name, true
	case FieldRemitToEmail:
		return inv.RemitTo.Email, true
	case FieldRemitToAddress:
		return inv.RemitTo.Address, true
	case FieldRemitToBankDetails:
		return inv.RemitTo.BankDetails, true
	case FieldRemitToContact:
		return inv.RemitTo.Contact, true
	case FieldDiscountPercent:
		return inv.DiscountPercent.String(), true
	case FieldSGSTPercent:
		return inv.SGSTPercent.String(), true
	case FieldCGSTPercent:
		return inv.CGSTPercent.String(), true
	case FieldPaidAmount:
		return inv.PaidAmount.String(), true
	case FieldNotes:
		return inv.Notes, true
	case FieldPaymentInstructions:
		return inv.PaymentInstructions, true
	case FieldPaymentLabel:
		return inv.PaymentLabel, true
	case FieldTermsTitle:
		return inv.TermsTitle, true
	default:
		return "", false
	}
}

// applyField writes a parsed value into inv. On error inv is left untouched.
func applyField(inv *domain.Invoice, path, value string) error {
	switch path {
	case FieldInvoiceNumber:
		inv.InvoiceNumber = strings.TrimSpace(value)
	case FieldIssueDate, FieldDueDate:
		date, err := parseDate(path, value)
		if err != nil {
			return err
		}
		if path == FieldIssueDate {
			inv.IssueDate = date
		} else {
			inv.DueDate = date
		}
	case FieldBillToName:
		inv.BillTo.Name = value
	case FieldBillToEmail:
		inv.BillTo.Email = value
	case FieldBillToAddress:
		inv.BillTo.Address = value
	case FieldRemitToName:
		inv.RemitTo.Name = value
	case FieldRemitToEmail:
		inv.RemitTo.Email = value
	case FieldRemitToAddress:
		inv.RemitTo.Address = value
	case FieldRemitToBankDetails:
		inv.RemitTo.BankDetails = value
	case FieldRemitToContact:
		inv.RemitTo.Contact = value
	case FieldDiscountPercent, FieldSGSTPercent, FieldCGSTPercent:
		pct, err := parsePercent(path, value)
		if err != nil {
			return err
		}
		switch path {
		case FieldDiscountPercent:
			inv.DiscountPercent = pct
		case FieldSGSTPercent:
			inv.SGSTPercent = pct
		default:
			inv.CGSTPercent = pct
		}
	case FieldPaidAmount:
		amount, err := ParseAmount(path, value)
		if err != nil {
			return err
		}
		inv.PaidAmount = amount
	case FieldNotes:
		inv.Notes = value
	case FieldPaymentInstructions:
		inv.PaymentInstructions = value
	case FieldPaymentLabel:
		inv.PaymentLabel = value
	case FieldTermsTitle:
		inv.TermsTitle = value
	default:
		return invalidf("unknown field %q", path)
	}
	return nil
}

// parseLineItemUpdate turns a field name and text into an engine update
func parseLineItemUpdate(field, value string) (domain.LineItemUpdate, error) {
	switch domain.LineItemField(field) {
	case domain.LineItemDescription:
		return domain.SetDescription(value), nil
	case domain.LineItemUnitPrice:
		price, err := ParseAmount(field, value)
		if err != nil {
			return domain.LineItemUpdate{}, err
		}
		return domain.SetUnitPrice(price), nil
	case domain.LineItemQuantity:
		qty, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || qty < 1 {
			return domain.LineItemUpdate{}, invalidf("quantity must be a positive whole number, got %q", value)
		}
		return domain.SetQuantity(qty), nil
	default:
		return domain.LineItemUpdate{}, invalidf("unknown line item field %q", field)
	}
}

// ParseAmount parses a non-negative money amount. Blank text is zero.
func ParseAmount(field, value string) (decimal.Decimal, error) {
	d, err := parseNumber(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, invalidf("%s cannot be negative", field)
	}
	return d, nil
}

func parsePercent(field, value string) (decimal.Decimal, error) {
	d, err := parseNumber(field, value)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, invalidf("%s must be between 0 and 100, got %s", field, d)
	}
	return d, nil
}

func parseNumber(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, invalidf("%s must be a number, got %q", field, value)
	}
	return d, nil
}

func parseDate(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return "", invalidf("%s must be a date like 2026-01-31, got %q", field, value)
	}
	return value, nil
}

func invalidf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), domain.ErrValidation)
}
