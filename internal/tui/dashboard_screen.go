package tui

import (
	"fmt"
	"sort"
	"time"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/domain"
	"github.com/andy/invoicedesk/internal/service"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// attentionLimit caps the rows of the needs-attention list
const attentionLimit = 8

// DashboardModel represents the overview home screen
type DashboardModel struct {
	ctrl service.Controller
	now  func() time.Time

	summary   domain.Summary
	attention []domain.Invoice
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(a *app.App) tea.Model {
	return newDashboardModel(a.Invoices, time.Now)
}

func newDashboardModel(ctrl service.Controller, now func() time.Time) *DashboardModel {
	m := &DashboardModel{ctrl: ctrl, now: now}
	m.loadData()
	return m
}

func (m *DashboardModel) Init() tea.Cmd {
	return nil
}

// loadData reads the collection. The controller keeps it in memory, so this
// never touches the store.
func (m *DashboardModel) loadData() {
	now := m.now()
	invoices := m.ctrl.Invoices()
	m.summary = m.ctrl.Summary(now)

	// Overdue first, then due soon, earliest due date first
	m.attention = lo.Filter(invoices, func(inv domain.Invoice, _ int) bool {
		s := domain.StatusOf(inv, now)
		return s == domain.InvoiceStatusOverdue || s == domain.InvoiceStatusDueSoon
	})
	sort.SliceStable(m.attention, func(i, j int) bool {
		si := domain.StatusOf(m.attention[i], now) == domain.InvoiceStatusOverdue
		sj := domain.StatusOf(m.attention[j], now) == domain.InvoiceStatusOverdue
		if si != sj {
			return si
		}
		return m.attention[i].DueDate < m.attention[j].DueDate
	})
}

func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case RefreshDataMsg, AckMsg:
		m.loadData()
	}
	return m, nil
}

func (m *DashboardModel) View() string {
	var s string

	// Summary
	s += fmt.Sprintf(
		"  Invoices:   %-12d  Billed:       %s\n  Overdue:    %-12d  Collected:    %s\n                            Outstanding:  %s\n",
		m.summary.Count,
		formatMoney(m.summary.TotalValue),
		m.summary.Overdue,
		formatMoney(m.summary.TotalPaid),
		amountStyle.Render(formatMoney(m.summary.TotalDue)),
	)

	s += "\n" + m.renderAttention()
	return s
}

func (m *DashboardModel) renderAttention() string {
	header := "  Needs Attention\n"
	if len(m.attention) == 0 {
		return header + subtitleStyle.Render("  Nothing overdue or due this week") + "\n"
	}

	s := header
	now := m.now()
	for _, inv := range lo.Slice(m.attention, 0, attentionLimit) {
		progress := domain.PaymentProgress(inv)
		s += fmt.Sprintf("  %-16s %-22s %-10s %12s  %s %s\n",
			truncateStr(inv.InvoiceNumber, 16),
			truncateStr(inv.BillTo.Name, 22),
			inv.DueDate,
			formatMoney(inv.DueAmount),
			statusBadge(domain.StatusOf(inv, now)),
			lipgloss.NewStyle().Foreground(mutedColor).Render(progress.StringFixed(0)+"% paid"),
		)
	}
	if extra := len(m.attention) - attentionLimit; extra > 0 {
		s += subtitleStyle.Render(fmt.Sprintf("  ...and %d more", extra)) + "\n"
	}

	return s
}
