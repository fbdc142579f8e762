package fetch

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors classifying adapter failures. Adapters wrap these with
// Wrap so the job controller can turn them into user-visible messages while
// the orchestrator keeps running the remaining adapters.
var (
	// ErrConfiguration marks a missing or invalid credential. Adapters fail
	// fast with it before issuing any network call.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport marks a network, timeout, or HTTP-level failure.
	ErrTransport = errors.New("transport error")
	// ErrParse marks a response that arrived but was not in the expected shape.
	ErrParse = errors.New("parse error")
	// ErrUnsupported marks a contract violation such as an unsupported search
	// key kind; it is ignored defensively with a warning.
	ErrUnsupported = errors.New("unsupported request")
)

// Wrap builds an error message that includes source context while tagging it
// with the provided classification marker.
func Wrap(marker error, source, operation string, err error) error {
	detail := buildDetail(source, operation)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(source, operation string) string {
	parts := make([]string, 0, 2)
	if source = strings.TrimSpace(source); source != "" {
		parts = append(parts, source)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if len(parts) == 0 {
		return "fetch failure"
	}
	return strings.Join(parts, ": ")
}
