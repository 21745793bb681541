package tui

import tea "github.com/charmbracelet/bubbletea"

// programNotifier forwards controller acknowledgments into the running
// program. send must not be called from the update loop, so persisting
// controller calls always run inside a tea.Cmd.
type programNotifier struct {
	send func(tea.Msg)
}

func (n programNotifier) Success(msg string) {
	n.send(AckMsg{Text: msg})
}

func (n programNotifier) Failure(msg string, err error) {
	n.send(AckMsg{Text: msg, Err: err})
}
