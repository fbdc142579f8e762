package fetch

import (
	"context"

	"quarto/internal/catalog"
)

// Fetcher is one external-source integration. Implementations declare their
// capabilities through CanSearch and CanFetch; the orchestrator only invokes
// adapters whose capabilities cover the request.
//
// Search performs the network call(s) for a request and returns partial
// records in the source's own response order, created against the supplied
// schema. ResolveFull completes one partial record; adapters whose search
// already returns full data implement it as a passthrough, others perform a
// second round-trip (a detail page, a linked company id, a cover image).
// Both honor context cancellation.
type Fetcher interface {
	// Source returns the stable human-readable source name.
	Source() string
	// CanSearch reports whether the adapter supports the search key kind.
	CanSearch(key KeyKind) bool
	// CanFetch reports whether the adapter can populate the collection type.
	CanFetch(typ catalog.Type) bool
	// Search issues the search and normalizes the response into partial
	// records. An empty request returns no results and no error.
	Search(ctx context.Context, req Request, schema *catalog.Schema) ([]*catalog.Record, error)
	// ResolveFull populates the remaining fields of one partial record.
	ResolveFull(ctx context.Context, req Request, rec *catalog.Record) (*catalog.Record, error)
	// UpdateRequest derives a refresh request from an existing record,
	// preferring the most specific usable key. When no usable field exists it
	// returns an empty request, which means "nothing to do".
	UpdateRequest(rec *catalog.Record) Request
	// OptionalFields advertises the non-default fields this adapter can
	// populate, keyed by field name with human-readable labels.
	OptionalFields() map[string]string
}
