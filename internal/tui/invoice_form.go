package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var fieldLabels = map[string]string{
	service.FieldInvoiceNumber:       "Invoice #",
	service.FieldIssueDate:           "Issue date",
	service.FieldDueDate:             "Due date",
	service.FieldBillToName:          "Bill to: name",
	service.FieldBillToEmail:         "Bill to: email",
	service.FieldBillToAddress:       "Bill to: address",
	service.FieldRemitToName:         "Remit to: name",
	service.FieldRemitToEmail:        "Remit to: email",
	service.FieldRemitToAddress:      "Remit to: address",
	service.FieldRemitToBankDetails:  "Remit to: bank",
	service.FieldRemitToContact:      "Remit to: contact",
	service.FieldDiscountPercent:     "Discount %",
	service.FieldSGSTPercent:         "SGST %",
	service.FieldCGSTPercent:         "CGST %",
	service.FieldPaidAmount:          "Paid amount",
	service.FieldNotes:               "Notes",
	service.FieldPaymentInstructions: "Payment instructions",
	service.FieldPaymentLabel:        "Payment label",
	service.FieldTermsTitle:          "Terms title",
}

var itemFields = []domain.LineItemField{
	domain.LineItemDescription,
	domain.LineItemUnitPrice,
	domain.LineItemQuantity,
}

// formInput is one text input bound either to an invoice field path or to a
// line item field
type formInput struct {
	label     string
	path      string
	itemID    string
	itemField domain.LineItemField
	input     textinput.Model
}

func (f formInput) isItem() bool {
	return f.itemID != ""
}

// invoiceForm edits the controller's draft. Values are committed to the
// controller one field at a time, when focus leaves a field.
type invoiceForm struct {
	inputs []formInput
	focus  int
}

func newInvoiceForm(draft domain.Invoice) *invoiceForm {
	f := &invoiceForm{}

	for _, path := range service.FieldPaths {
		value, _ := service.FieldValue(draft, path)
		f.inputs = append(f.inputs, formInput{
			label: fieldLabels[path],
			path:  path,
			input: newTextInput(value, 40),
		})
	}

	for n, item := range draft.LineItems {
		for _, field := range itemFields {
			f.inputs = append(f.inputs, formInput{
				label:     fmt.Sprintf("Item %d: %s", n+1, itemFieldLabel(field)),
				itemID:    item.ID,
				itemField: field,
				input:     newTextInput(itemFieldValue(item, field), 30),
			})
		}
	}

	f.inputs[0].input.Focus()
	return f
}

func newTextInput(value string, width int) textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = width
	ti.Prompt = ""
	ti.SetValue(value)
	return ti
}

func itemFieldLabel(field domain.LineItemField) string {
	switch field {
	case domain.LineItemDescription:
		return "name"
	case domain.LineItemUnitPrice:
		return "price"
	default:
		return "qty"
	}
}

func itemFieldValue(item domain.LineItem, field domain.LineItemField) string {
	switch field {
	case domain.LineItemDescription:
		return item.Description
	case domain.LineItemUnitPrice:
		return item.UnitPrice.String()
	default:
		return strconv.FormatInt(item.Quantity, 10)
	}
}

func (f *invoiceForm) focused() *formInput {
	return &f.inputs[f.focus]
}

// commit sends the focused input's value to the controller
func (f *invoiceForm) commit(ctrl service.Controller) error {
	in := f.focused()
	if in.isItem() {
		return ctrl.UpdateLineItem(in.itemID, string(in.itemField), in.input.Value())
	}
	return ctrl.SetField(in.path, in.input.Value())
}

// move shifts focus by delta, wrapping around
func (f *invoiceForm) move(delta int) tea.Cmd {
	f.inputs[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].input.Focus()
}

// focusItem moves focus to the first input of a line item
func (f *invoiceForm) focusItem(id string) tea.Cmd {
	for i, in := range f.inputs {
		if in.itemID == id {
			return f.move(i - f.focus)
		}
	}
	return nil
}

// focusedItemID returns the line item under focus, or ""
func (f *invoiceForm) focusedItemID() string {
	return f.focused().itemID
}

func (f *invoiceForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus].input, cmd = f.inputs[f.focus].input.Update(msg)
	return cmd
}

// view renders the visible slice of inputs next to the live totals of draft
func (f *invoiceForm) view(draft domain.Invoice, rows int) string {
	var b strings.Builder

	start, end := window(len(f.inputs), f.focus, rows)
	if start > 0 {
		b.WriteString(subtitleStyle.Render("  ↑ more") + "\n")
	}
	for i := start; i < end; i++ {
		in := f.inputs[i]
		label := labelStyle.Render(in.label)
		if i == f.focus {
			label = focusedStyle.Render(in.label)
		}
		b.WriteString("  " + label + " " + in.input.View() + "\n")
	}
	if end < len(f.inputs) {
		b.WriteString(subtitleStyle.Render("  ↓ more") + "\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, b.String(), "  ", totalsBox(draft))
}

// totalsBox shows the derived amounts of an invoice
func totalsBox(inv domain.Invoice) string {
	bd := domain.ComputeBreakdown(inv)

	row := func(label string, value string) string {
		return fmt.Sprintf("%-10s %14s", label, value)
	}
	lines := []string{
		titleStyle.Render("Totals"),
		row("Subtotal", formatMoney(bd.Subtotal)),
		row("Discount", "-"+formatMoney(bd.DiscountAmount)),
		row("SGST", formatMoney(bd.SGSTAmount)),
		row("CGST", formatMoney(bd.CGSTAmount)),
		lipgloss.NewStyle().Bold(true).Render(row("Total", formatMoney(bd.Total))),
		row("Paid", formatMoney(inv.PaidAmount)),
		amountStyle.Render(row("Due", formatMoney(bd.DueAmount))),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
