package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Quit key.Binding
	Back key.Binding

	// Navigation
	Overview key.Binding
	Invoices key.Binding
	Settings key.Binding

	// Actions
	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Preview key.Binding
	Write   key.Binding
	Confirm key.Binding

	// Form
	NextField  key.Binding
	PrevField  key.Binding
	Save       key.Binding
	AddItem    key.Binding
	RemoveItem key.Binding
	FormPrev   key.Binding

	// Movement
	Up   key.Binding
	Down key.Binding
}

var DefaultKeyMap = KeyMap{
	Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Overview:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overview")),
	Invoices:   key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "invoices")),
	Settings:   key.NewBinding(key.WithKeys(","), key.WithHelp(",", "settings")),
	New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
	Edit:       key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Preview:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
	Write:      key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write .txt")),
	Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	NextField:  key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField:  key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
	Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	AddItem:    key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "add item")),
	RemoveItem: key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove item")),
	FormPrev:   key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "preview")),
	Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
}
