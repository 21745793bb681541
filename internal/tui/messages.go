package tui

// SwitchScreenMsg requests a screen change
type SwitchScreenMsg struct {
	Screen Screen
}

// RefreshDataMsg requests data refresh
type RefreshDataMsg struct{}

// ErrorMsg carries error information
type ErrorMsg struct {
	Err error
}

// AckMsg carries a controller acknowledgment into the program
type AckMsg struct {
	Text string
	Err  error
}

// invoiceOpDoneMsg reports the result of a persisting controller call
type invoiceOpDoneMsg struct {
	op  string
	err error
}

// invoicesWrittenMsg reports printed invoice files
type invoicesWrittenMsg struct {
	paths []string
	err   error
}
