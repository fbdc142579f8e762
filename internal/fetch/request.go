package fetch

import (
	"strings"

	"quarto/internal/catalog"
)

// Request is one immutable logical search: a key kind, the value to search
// for, the target collection type, and any optional fields the caller opted
// in to. A zero-value request means "nothing to do" and adapters treat it as
// such, not as an error.
type Request struct {
	Key            KeyKind
	Value          string
	Type           catalog.Type
	OptionalFields []string
}

// IsEmpty reports whether the request carries no usable search value.
func (r Request) IsEmpty() bool {
	return strings.TrimSpace(r.Value) == ""
}

// WantsOptional reports whether the caller opted in to the named optional
// field for this request.
func (r Request) WantsOptional(name string) bool {
	for _, field := range r.OptionalFields {
		if field == name {
			return true
		}
	}
	return false
}

// Result is one record emitted by the orchestrator: an opaque id unique
// within the orchestrator execution, the source that produced it, the
// originating request, and the (possibly partial) record.
type Result struct {
	ID      string
	Source  string
	Request Request
	Record  *catalog.Record
}
