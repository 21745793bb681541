package service

import "github.com/andy/invoicedesk/internal/logger"

// Notifier receives user-visible acknowledgments after save and delete
type Notifier interface {
	Success(msg string)
	Failure(msg string, err error)
}

// Notifiers fans an acknowledgment out to several notifiers
type Notifiers []Notifier

func (ns Notifiers) Success(msg string) {
	for _, n := range ns {
		n.Success(msg)
	}
}

func (ns Notifiers) Failure(msg string, err error) {
	for _, n := range ns {
		n.Failure(msg, err)
	}
}

// LogNotifier records acknowledgments in the log
type LogNotifier struct {
	Log *logger.Logger
}

func (n LogNotifier) Success(msg string) {
	n.Log.Infow(msg)
}

func (n LogNotifier) Failure(msg string, err error) {
	n.Log.Errorw(msg, "error", err)
}

type nopNotifier struct{}

func (nopNotifier) Success(string)        {}
func (nopNotifier) Failure(string, error) {}
