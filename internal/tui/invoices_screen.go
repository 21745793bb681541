package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/printer"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
)

// InvoicesModel follows the controller's navigation state: the list, the
// edit form or the print preview
type InvoicesModel struct {
	ctrl      service.Controller
	outputDir func() string
	now       func() time.Time

	invoices      domain.Collection
	cursor        int
	confirmDelete bool

	form    *invoiceForm
	draft   domain.Invoice
	preview viewport.Model

	width  int
	height int

	busy      bool
	err       error
	statusMsg string
}

// NewInvoicesModel creates a new invoices screen model
func NewInvoicesModel(a *app.App) tea.Model {
	return newInvoicesModel(a.Invoices, func() string { return a.Config.Invoice.OutputDir }, time.Now)
}

func newInvoicesModel(ctrl service.Controller, outputDir func() string, now func() time.Time) *InvoicesModel {
	m := &InvoicesModel{
		ctrl:      ctrl,
		outputDir: outputDir,
		now:       now,
		preview:   viewport.New(80, 20),
	}
	m.sync()
	return m
}

// IsCapturingInput returns true while the edit form is open
func (m *InvoicesModel) IsCapturingInput() bool {
	return m.ctrl.View().Kind() == service.ViewEditing
}

func (m *InvoicesModel) Init() tea.Cmd {
	return nil
}

// sync pulls the collection and the active invoice from the controller
func (m *InvoicesModel) sync() {
	m.invoices = m.ctrl.Invoices()
	if m.cursor >= len(m.invoices) {
		m.cursor = len(m.invoices) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	active, _ := m.ctrl.Active()
	m.draft = active

	switch m.ctrl.View().Kind() {
	case service.ViewEditing:
		if m.form == nil {
			m.form = newInvoiceForm(active)
		}
	case service.ViewPreviewing:
		m.form = nil
		m.preview.SetContent(printer.Render(active))
		m.preview.GotoTop()
	default:
		m.form = nil
	}
}

// rebuildForm recreates the inputs after the line items changed
func (m *InvoicesModel) rebuildForm() {
	m.form = nil
	m.sync()
}

func (m *InvoicesModel) selected() (domain.Invoice, bool) {
	if len(m.invoices) == 0 {
		return domain.Invoice{}, false
	}
	return m.invoices[m.cursor], true
}

func (m *InvoicesModel) saveDraft() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return invoiceOpDoneMsg{op: "save", err: ctrl.SaveDraft(context.Background())}
	}
}

func (m *InvoicesModel) deleteInvoice(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return invoiceOpDoneMsg{op: "delete", err: ctrl.DeleteInvoice(context.Background(), id)}
	}
}

func (m *InvoicesModel) writeInvoices(invoices domain.Collection) tea.Cmd {
	dir := m.outputDir()
	return func() tea.Msg {
		paths, err := printer.WriteAll(context.Background(), invoices, dir)
		return invoicesWrittenMsg{paths: paths, err: err}
	}
}

func (m *InvoicesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.preview.Width = max(msg.Width-10, 40)
		m.preview.Height = max(msg.Height-16, 5)
		return m, nil

	case RefreshDataMsg, AckMsg:
		if m.form == nil {
			m.sync()
		}
		return m, nil

	case invoiceOpDoneMsg:
		m.busy = false
		m.err = msg.err
		m.sync()
		return m, nil

	case invoicesWrittenMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = fmt.Sprintf("Wrote %d invoice file(s) to %s", len(msg.paths), m.outputDir())
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch m.ctrl.View().Kind() {
		case service.ViewEditing:
			return m.updateForm(msg)
		case service.ViewPreviewing:
			return m.updatePreview(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""

	if m.confirmDelete {
		m.confirmDelete = false
		if inv, ok := m.selected(); ok && key.Matches(msg, DefaultKeyMap.Confirm) {
			m.busy = true
			return m, m.deleteInvoice(inv.ID)
		}
		m.statusMsg = "Delete cancelled"
		return m, nil
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, DefaultKeyMap.Down):
		if m.cursor < len(m.invoices)-1 {
			m.cursor++
		}

	case key.Matches(msg, DefaultKeyMap.New):
		m.err = m.ctrl.NewInvoice()
		m.sync()

	case key.Matches(msg, DefaultKeyMap.Edit):
		if inv, ok := m.selected(); ok {
			m.err = m.ctrl.EditInvoice(inv.ID)
			m.sync()
		}

	case key.Matches(msg, DefaultKeyMap.Preview):
		if inv, ok := m.selected(); ok {
			m.err = m.ctrl.PreviewInvoice(inv.ID)
			m.sync()
		}

	case key.Matches(msg, DefaultKeyMap.Delete):
		if _, ok := m.selected(); ok {
			m.confirmDelete = true
		}

	case key.Matches(msg, DefaultKeyMap.Write):
		if inv, ok := m.selected(); ok {
			m.busy = true
			return m, m.writeInvoices(domain.Collection{inv})
		}

	case msg.String() == "W":
		if len(m.invoices) > 0 {
			m.busy = true
			return m, m.writeInvoices(m.invoices)
		}
	}

	return m, nil
}

func (m *InvoicesModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	if f == nil {
		m.sync()
		return m, nil
	}

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		m.err = m.ctrl.BackToList()
		m.sync()
		return m, nil

	case key.Matches(msg, DefaultKeyMap.NextField), key.Matches(msg, DefaultKeyMap.PrevField):
		if !m.commit() {
			return m, nil
		}
		delta := 1
		if key.Matches(msg, DefaultKeyMap.PrevField) {
			delta = -1
		}
		return m, f.move(delta)

	case key.Matches(msg, DefaultKeyMap.Save):
		if !m.commit() {
			return m, nil
		}
		m.busy = true
		return m, m.saveDraft()

	case key.Matches(msg, DefaultKeyMap.FormPrev):
		if !m.commit() {
			return m, nil
		}
		m.err = m.ctrl.Preview()
		m.sync()
		return m, nil

	case key.Matches(msg, DefaultKeyMap.AddItem):
		if !m.commit() {
			return m, nil
		}
		id, err := m.ctrl.AddLineItem()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.rebuildForm()
		return m, m.form.focusItem(id)

	case key.Matches(msg, DefaultKeyMap.RemoveItem):
		id := f.focusedItemID()
		if id == "" {
			m.err = errors.New("move to a line item to remove it")
			return m, nil
		}
		if err := m.ctrl.RemoveLineItem(id); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.rebuildForm()
		return m, nil
	}

	return m, f.update(msg)
}

// commit applies the focused input and refreshes the live totals. It reports
// whether the value was accepted.
func (m *InvoicesModel) commit() bool {
	if err := m.form.commit(m.ctrl); err != nil {
		m.err = err
		return false
	}
	m.err = nil
	m.draft, _ = m.ctrl.Active()
	return true
}

func (m *InvoicesModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	m.statusMsg = ""

	switch {
	case key.Matches(msg, DefaultKeyMap.Back):
		if v, ok := m.ctrl.View().(service.Previewing); ok && v.ReturnsTo == service.ViewEditing {
			m.err = m.ctrl.BackToForm()
		} else {
			m.err = m.ctrl.BackToList()
		}
		m.sync()
		return m, nil

	case key.Matches(msg, DefaultKeyMap.Write):
		m.busy = true
		return m, m.writeInvoices(domain.Collection{m.draft})
	}

	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m *InvoicesModel) View() string {
	var s string

	switch m.ctrl.View().Kind() {
	case service.ViewEditing:
		s = m.viewForm()
	case service.ViewPreviewing:
		s = m.viewPreview()
	default:
		s = m.viewList()
	}

	if m.busy {
		s += "\n" + subtitleStyle.Render("  Working...")
	}
	if m.statusMsg != "" {
		s += "\n" + okStyle.Render("  "+m.statusMsg)
	}
	if m.err != nil {
		s += "\n" + errStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	}
	return s
}

func (m *InvoicesModel) viewList() string {
	var s string

	sum := domain.Summarize(m.invoices, m.now())
	s += fmt.Sprintf("  %d invoices  Total %s  Paid %s  Due %s\n\n",
		sum.Count,
		formatMoney(sum.TotalValue),
		formatMoney(sum.TotalPaid),
		amountStyle.Render(formatMoney(sum.TotalDue)),
	)

	if len(m.invoices) == 0 {
		s += subtitleStyle.Render("  No invoices yet. Press 'n' to create one.") + "\n"
		return s + "\n" + helpStyle.Render("  n: new invoice")
	}

	// Header
	s += subtitleStyle.Render(fmt.Sprintf(
		"  %-16s  %-22s  %-10s  %12s  %12s  %s",
		"Number", "Client", "Due", "Total", "Due amount", "Status",
	)) + "\n"

	rows := max(m.height-18, 5)
	start, end := window(len(m.invoices), m.cursor, rows)
	for i := start; i < end; i++ {
		inv := m.invoices[i]
		invLine := fmt.Sprintf("  %-16s  %-22s  %-10s  %12s  %12s  ",
			truncateStr(inv.InvoiceNumber, 16),
			truncateStr(inv.BillTo.Name, 22),
			inv.DueDate,
			formatMoney(inv.Total),
			formatMoney(inv.DueAmount),
		)

		if i == m.cursor {
			s += selectedStyle.Render(invLine) + statusBadge(domain.StatusOf(inv, m.now())) + "\n"
		} else {
			s += invLine + statusBadge(domain.StatusOf(inv, m.now())) + "\n"
		}
	}

	if m.confirmDelete {
		inv, _ := m.selected()
		s += "\n" + dueSoonStyle.Render(fmt.Sprintf("  Delete %s? [y/N]", inv.InvoiceNumber)) + "\n"
	}

	s += "\n" + helpStyle.Render("  j/k: navigate  n: new  enter/e: edit  p: preview  d: delete  w: write .txt  W: write all")
	return s
}

func (m *InvoicesModel) viewForm() string {
	if m.form == nil {
		return "Loading..."
	}

	title := "New Invoice"
	if _, err := m.ctrl.Get(m.draft.ID); err == nil {
		title = "Edit Invoice"
	}

	var s string
	s += titleStyle.Render(fmt.Sprintf("%s %s", title, m.draft.InvoiceNumber)) + "\n\n"
	s += m.form.view(m.draft, max(m.height-16, 8)) + "\n"
	s += "\n" + helpStyle.Render("  tab/shift+tab: move  ctrl+a: add item  ctrl+x: remove item  ctrl+p: preview  ctrl+s: save  esc: discard")
	return s
}

func (m *InvoicesModel) viewPreview() string {
	var s string
	s += titleStyle.Render(fmt.Sprintf("Preview %s", m.draft.InvoiceNumber)) + "\n\n"
	s += m.preview.View() + "\n"

	back := "back to list"
	if v, ok := m.ctrl.View().(service.Previewing); ok && v.ReturnsTo == service.ViewEditing {
		back = "back to form"
	}
	s += "\n" + helpStyle.Render(fmt.Sprintf("  ↑/↓: scroll  w: write .txt  esc: %s", back))
	return strings.TrimRight(s, " ")
}
