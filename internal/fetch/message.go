package fetch

import "errors"

// Severity grades an out-of-band message from a source.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is an out-of-band note surfaced to the caller alongside results,
// describing which sources failed or degraded and why.
type Message struct {
	Source   string
	Severity Severity
	Text     string
}

// messageFromError classifies an adapter failure into a message. A missing
// credential is user-correctable and reported as an error; transport and
// parse failures degrade the run and are reported as warnings.
func messageFromError(source string, err error) Message {
	severity := SeverityWarning
	if errors.Is(err, ErrConfiguration) {
		severity = SeverityError
	}
	return Message{Source: source, Severity: severity, Text: err.Error()}
}
