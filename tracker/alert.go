package tracker

import "fmt"

type (
	// Alert is a message about something the user should know, e.g. a note that
	// could not be played. Name identifies alerts of the same origin, so that a
	// presenter can replace an older alert with a newer one.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
	}

	AlertPriority int
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

func (p AlertPriority) String() string {
	switch p {
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "info"
}

func (a Alert) String() string {
	return fmt.Sprintf("%s: %s", a.Priority, a.Message)
}
