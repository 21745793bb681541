package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/config"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
)

type settingsMode int

const (
	settingsModeView settingsMode = iota
	settingsModeEdit
)

// settings form field indices
const (
	settingsFieldBusinessName = iota
	settingsFieldBusinessEmail
	settingsFieldBusinessAddress
	settingsFieldBankDetails
	settingsFieldContact
	settingsFieldPrefix
	settingsFieldDueDays
	settingsFieldOutputDir
	settingsFieldNotes
	settingsFieldPaymentInstructions
	settingsFieldPaymentLabel
	settingsFieldTermsTitle
	settingsFieldCount
)

var settingsLabels = [settingsFieldCount]string{
	"Business name",
	"Business email",
	"Business address",
	"Bank details",
	"Contact",
	"Invoice prefix",
	"Default due days",
	"Output directory",
	"Notes",
	"Payment instructions",
	"Payment label",
	"Terms title",
}

type settingsSavedMsg struct {
	err error
}

// SettingsModel manages the settings screen
type SettingsModel struct {
	cfg  *config.Config
	save func() error

	mode       settingsMode
	fields     []textinput.Model
	fieldFocus int
	err        error
	statusMsg  string
}

// NewSettingsModel creates a new settings screen
func NewSettingsModel(a *app.App) tea.Model {
	return newSettingsModel(a.Config, a.SaveConfig)
}

func newSettingsModel(cfg *config.Config, save func() error) *SettingsModel {
	return &SettingsModel{
		cfg:  cfg,
		save: save,
		mode: settingsModeView,
	}
}

// IsCapturingInput returns true when the edit form is active
func (m *SettingsModel) IsCapturingInput() bool {
	return m.mode == settingsModeEdit
}

func (m *SettingsModel) Init() tea.Cmd {
	return nil
}

func (m *SettingsModel) values() [settingsFieldCount]string {
	c := m.cfg
	return [settingsFieldCount]string{
		c.Business.Name,
		c.Business.Email,
		c.Business.Address,
		c.Business.BankDetails,
		c.Business.Contact,
		c.Invoice.NumberPrefix,
		strconv.Itoa(c.Invoice.DefaultDueDays),
		c.Invoice.OutputDir,
		c.Invoice.Notes,
		c.Invoice.PaymentInstructions,
		c.Invoice.PaymentLabel,
		c.Invoice.TermsTitle,
	}
}

func (m *SettingsModel) initForm() {
	m.fields = make([]textinput.Model, settingsFieldCount)
	for i, v := range m.values() {
		m.fields[i] = textinput.New()
		m.fields[i].CharLimit = 256
		m.fields[i].Width = 50
		m.fields[i].SetValue(v)
	}
	m.fields[settingsFieldPrefix].CharLimit = 20
	m.fields[settingsFieldDueDays].CharLimit = 5
	m.fields[settingsFieldDueDays].Placeholder = "7"

	m.fieldFocus = settingsFieldBusinessName
	m.fields[settingsFieldBusinessName].Focus()
}

// applyForm validates the form and copies it into the config. Runs on the
// update loop, so the controller never sees a half-written config.
func (m *SettingsModel) applyForm() error {
	get := func(i int) string { return strings.TrimSpace(m.fields[i].Value()) }

	prefix := get(settingsFieldPrefix)
	if prefix == "" {
		return errors.New("invoice prefix is required")
	}

	dueDays, err := strconv.Atoi(get(settingsFieldDueDays))
	if err != nil || dueDays <= 0 {
		return errors.New("due days must be a positive number")
	}

	outputDir := get(settingsFieldOutputDir)
	if outputDir == "" {
		return errors.New("output directory is required")
	}

	c := m.cfg
	c.Business.Name = get(settingsFieldBusinessName)
	c.Business.Email = get(settingsFieldBusinessEmail)
	c.Business.Address = get(settingsFieldBusinessAddress)
	c.Business.BankDetails = get(settingsFieldBankDetails)
	c.Business.Contact = get(settingsFieldContact)
	c.Invoice.NumberPrefix = prefix
	c.Invoice.DefaultDueDays = dueDays
	c.Invoice.OutputDir = outputDir
	c.Invoice.Notes = get(settingsFieldNotes)
	c.Invoice.PaymentInstructions = get(settingsFieldPaymentInstructions)
	c.Invoice.PaymentLabel = get(settingsFieldPaymentLabel)
	c.Invoice.TermsTitle = get(settingsFieldTermsTitle)
	return nil
}

func (m *SettingsModel) saveSettings() tea.Cmd {
	if err := m.applyForm(); err != nil {
		return func() tea.Msg { return settingsSavedMsg{err: err} }
	}

	save := m.save
	return func() tea.Msg {
		if err := save(); err != nil {
			return settingsSavedMsg{err: errors.Wrap(err, "failed to save config")}
		}
		return settingsSavedMsg{}
	}
}

func (m *SettingsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.mode == settingsModeEdit {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch {
		case msg.String() == "enter":
			m.mode = settingsModeEdit
			m.statusMsg = ""
			m.initForm()
			return m, m.fields[m.fieldFocus].Focus()
		}
	}

	return m, nil
}

func (m *SettingsModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settingsSavedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.mode = settingsModeView
		m.err = nil
		m.statusMsg = "Settings saved"
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.mode = settingsModeView
			m.err = nil
			return m, nil

		case "tab", "down":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus + 1) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "shift+tab", "up":
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus = (m.fieldFocus - 1 + settingsFieldCount) % settingsFieldCount
			return m, m.fields[m.fieldFocus].Focus()

		case "enter":
			if m.fieldFocus == settingsFieldCount-1 {
				return m, m.saveSettings()
			}
			m.fields[m.fieldFocus].Blur()
			m.fieldFocus++
			return m, m.fields[m.fieldFocus].Focus()

		case "ctrl+s":
			return m, m.saveSettings()
		}
	}

	// Update the focused text input
	var cmd tea.Cmd
	m.fields[m.fieldFocus], cmd = m.fields[m.fieldFocus].Update(msg)
	return m, cmd
}

func (m *SettingsModel) View() string {
	var s string

	if m.mode == settingsModeEdit {
		s += titleStyle.Render("Edit Settings") + "\n\n"
		for i := range m.fields {
			label := labelStyle.Render(settingsLabels[i])
			if i == m.fieldFocus {
				label = focusedStyle.Render(settingsLabels[i])
			}
			s += fmt.Sprintf("  %s %s\n", label, m.fields[i].View())
		}
		s += "\n" + helpStyle.Render("  tab/shift+tab: move  ctrl+s: save  esc: cancel")
	} else {
		s += titleStyle.Render("Settings") + "\n\n"
		for i, v := range m.values() {
			s += fmt.Sprintf("  %s %s\n", labelStyle.Render(settingsLabels[i]), v)
		}
		s += fmt.Sprintf("\n  %s %s (%s)\n", labelStyle.Render("Storage"), m.cfg.Database.Path, m.cfg.Database.Driver)
		s += "\n" + helpStyle.Render("  enter: edit settings")
	}

	if m.statusMsg != "" {
		s += "\n\n" + okStyle.Render("  "+m.statusMsg)
	}
	if m.err != nil {
		s += "\n\n" + errStyle.Render(fmt.Sprintf("  Error: %v", m.err))
	}

	return s
}
