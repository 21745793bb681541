package tui

import (
	"fmt"
	"strings"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen represents the current active screen
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenInvoices
	ScreenSettings
)

// String returns the screen name
func (s Screen) String() string {
	switch s {
	case ScreenDashboard:
		return "Overview"
	case ScreenInvoices:
		return "Invoices"
	case ScreenSettings:
		return "Settings"
	default:
		return "Unknown"
	}
}

// screenFactory builds a screen on first visit
type screenFactory func() tea.Model

// Model is the root Bubble Tea model
type Model struct {
	ctrl          service.Controller
	factories     map[Screen]screenFactory
	currentScreen Screen
	width         int
	height        int

	// Screen models (lazy initialized)
	screens map[Screen]tea.Model

	// Last controller acknowledgment
	ack *AckMsg

	// Error state
	err     error
	quitMsg string // shown when quit is blocked
}

// New creates a new root model
func New(a *app.App) Model {
	return newModel(a.Invoices, map[Screen]screenFactory{
		ScreenDashboard: func() tea.Model { return NewDashboardModel(a) },
		ScreenInvoices:  func() tea.Model { return NewInvoicesModel(a) },
		ScreenSettings:  func() tea.Model { return NewSettingsModel(a) },
	})
}

func newModel(ctrl service.Controller, factories map[Screen]screenFactory) Model {
	m := Model{
		ctrl:          ctrl,
		factories:     factories,
		currentScreen: ScreenDashboard,
		screens:       make(map[Screen]tea.Model),
	}
	m.screens[ScreenDashboard] = factories[ScreenDashboard]()
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.screens[ScreenDashboard].Init()
}

// initScreen lazy-initializes a screen on first visit,
// and sends a RefreshDataMsg on subsequent visits so screens reload data.
func (m *Model) initScreen(screen Screen) tea.Cmd {
	if _, ok := m.screens[screen]; ok {
		return func() tea.Msg { return RefreshDataMsg{} }
	}
	factory, ok := m.factories[screen]
	if !ok {
		return nil
	}

	s := factory()
	m.screens[screen] = s
	size := func() tea.Msg { return tea.WindowSizeMsg{Width: m.width, Height: m.height} }
	return tea.Batch(s.Init(), size)
}

func (m *Model) switchTo(screen Screen) tea.Cmd {
	m.currentScreen = screen
	return m.initScreen(screen)
}

func (m *Model) routeTo(screen Screen, msg tea.Msg) tea.Cmd {
	s, ok := m.screens[screen]
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	m.screens[screen], cmd = s.Update(msg)
	return cmd
}

// InputCapturer is implemented by screens that capture keyboard input (e.g. text forms).
// When active, global navigation keys (O, I, comma, Q) are suppressed.
type InputCapturer interface {
	IsCapturingInput() bool
}

// activeScreenCapturingInput returns true if the current screen is capturing text input
func (m *Model) activeScreenCapturingInput() bool {
	if ic, ok := m.screens[m.currentScreen].(InputCapturer); ok {
		return ic.IsCapturingInput()
	}
	return false
}

// hasOpenDraft reports whether quitting would lose an unsaved draft
func hasOpenDraft(v service.View) bool {
	switch v := v.(type) {
	case service.Editing:
		return true
	case service.Previewing:
		return v.ReturnsTo == service.ViewEditing
	default:
		return false
	}
}

// Update implements tea.Model - routes keys to screens
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Every screen lays itself out against the terminal size
		var cmds []tea.Cmd
		for k, s := range m.screens {
			var cmd tea.Cmd
			m.screens[k], cmd = s.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		// Clear quit warning and the last acknowledgment on any keypress
		m.quitMsg = ""
		m.ack = nil

		// Skip global navigation when a screen is capturing text input
		if !m.activeScreenCapturingInput() {
			// Global key handlers (screen navigation)
			switch {
			case key.Matches(msg, DefaultKeyMap.Quit):
				if hasOpenDraft(m.ctrl.View()) {
					m.quitMsg = "An unsaved draft is open. Save or discard it before quitting."
					return m, nil
				}
				return m, tea.Quit

			case key.Matches(msg, DefaultKeyMap.Overview):
				return m, m.switchTo(ScreenDashboard)

			case key.Matches(msg, DefaultKeyMap.Invoices):
				return m, m.switchTo(ScreenInvoices)

			case key.Matches(msg, DefaultKeyMap.Settings):
				return m, m.switchTo(ScreenSettings)
			}
		}

	case AckMsg:
		m.ack = &msg
		// Acknowledgments refresh every screen, not just the visible one
		var cmds []tea.Cmd
		for k, s := range m.screens {
			var cmd tea.Cmd
			m.screens[k], cmd = s.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case invoiceOpDoneMsg, invoicesWrittenMsg:
		// Results go to the screen that started the work, even after a switch
		return m, m.routeTo(ScreenInvoices, msg)

	case settingsSavedMsg:
		return m, m.routeTo(ScreenSettings, msg)

	case SwitchScreenMsg:
		return m, m.switchTo(msg.Screen)

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	// Route message to current screen
	var cmd tea.Cmd
	if s, ok := m.screens[m.currentScreen]; ok {
		m.screens[m.currentScreen], cmd = s.Update(msg)
	}

	return m, cmd
}

// View implements tea.Model - renders header + current screen + footer
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	// Header
	header := headerStyle.Render(fmt.Sprintf("invoicedesk - %s", m.currentScreen.String()))

	// Footer with navigation keys
	footer := footerStyle.Render("[O]verview  [I]nvoices  [,] Settings  [Q]uit")

	// Current screen content
	content := "Loading..."
	if s, ok := m.screens[m.currentScreen]; ok {
		content = s.View()
	}

	// Error/warning display
	errorDisplay := ""
	switch {
	case m.quitMsg != "":
		errorDisplay = lipgloss.NewStyle().
			Foreground(warningColor).
			Render(fmt.Sprintf("\n%s", m.quitMsg))
	case m.err != nil:
		errorDisplay = errStyle.Render(fmt.Sprintf("\nError: %s", m.err.Error()))
	case m.ack != nil && m.ack.Err != nil:
		errorDisplay = errStyle.Render(fmt.Sprintf("\n%s: %v", m.ack.Text, m.ack.Err))
	case m.ack != nil:
		errorDisplay = okStyle.Render("\n" + m.ack.Text)
	}

	// Divider line between header and content
	innerWidth := m.width - 6 // account for border (2) + padding (4)
	if innerWidth < 20 {
		innerWidth = 20
	}
	dividerWidth := innerWidth - 12
	if dividerWidth < 10 {
		dividerWidth = 10
	}
	divider := lipgloss.NewStyle().Foreground(borderColor).Render(
		strings.Repeat("─", dividerWidth),
	)

	body := fmt.Sprintf("%s\n%s\n\n%s%s\n\n%s\n%s", header, divider, content, errorDisplay, divider, footer)

	// Wrap in border, sized to terminal
	frame := appBorderStyle.
		Width(innerWidth).
		Height(m.height - 4) // leave room for border top/bottom
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, frame.Render(body))
}

// Run starts the TUI. Controller acknowledgments are shown in the status line
// while the program runs, and go back to the log afterwards.
func Run(a *app.App) error {
	p := tea.NewProgram(New(a), tea.WithAltScreen())

	logNotifier := service.LogNotifier{Log: a.Logger}
	a.Invoices.SetNotifier(service.Notifiers{logNotifier, programNotifier{send: p.Send}})
	defer a.Invoices.SetNotifier(logNotifier)

	_, err := p.Run()
	return err
}
