package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quarto/internal/catalog"
	"quarto/internal/logging"
)

// stubFetcher is a controllable adapter for pipeline tests.
type stubFetcher struct {
	source   string
	keys     []KeyKind
	types    []catalog.Type
	titles   []string
	err      error
	block    chan struct{} // when non-nil, Search waits for a signal or ctx
	searches int
	mu       sync.Mutex
}

func (f *stubFetcher) Source() string { return f.source }

func (f *stubFetcher) CanSearch(key KeyKind) bool {
	for _, k := range f.keys {
		if k == key {
			return true
		}
	}
	return false
}

func (f *stubFetcher) CanFetch(typ catalog.Type) bool {
	for _, t := range f.types {
		if t == typ {
			return true
		}
	}
	return false
}

func (f *stubFetcher) Search(ctx context.Context, req Request, schema *catalog.Schema) ([]*catalog.Record, error) {
	f.mu.Lock()
	f.searches++
	f.mu.Unlock()
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	records := make([]*catalog.Record, 0, len(f.titles))
	for _, title := range f.titles {
		rec := catalog.NewRecord(schema)
		if err := rec.SetField("title", title); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (f *stubFetcher) ResolveFull(ctx context.Context, req Request, rec *catalog.Record) (*catalog.Record, error) {
	return rec, nil
}

func (f *stubFetcher) UpdateRequest(rec *catalog.Record) Request {
	if title := rec.Field("title"); title != "" {
		return Request{Key: KeyTitle, Value: title, Type: rec.Type()}
	}
	return Request{}
}

func (f *stubFetcher) OptionalFields() map[string]string { return nil }

func (f *stubFetcher) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches
}

func newTestJob(f Fetcher, req Request) (*job, *[]Result, *[]Message) {
	var (
		mu       sync.Mutex
		results  []Result
		messages []Message
	)
	j := newJob(f, req, catalog.SchemaFor(req.Type), nil, logging.NewNop(),
		func(source string, rec *catalog.Record) {
			mu.Lock()
			results = append(results, Result{Source: source, Record: rec})
			mu.Unlock()
		},
		func(msg Message) {
			mu.Lock()
			messages = append(messages, msg)
			mu.Unlock()
		})
	return j, &results, &messages
}

func bookRequest(value string) Request {
	return Request{Key: KeyTitle, Value: value, Type: catalog.TypeBook}
}

func TestJobRunEmitsResults(t *testing.T) {
	f := &stubFetcher{source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook}, titles: []string{"A", "B"}}
	j, results, _ := newTestJob(f, bookRequest("query"))

	j.run(context.Background())

	if got := j.currentState(); got != jobDone {
		t.Fatalf("expected done state, got %v", got)
	}
	if len(*results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(*results))
	}
	if (*results)[0].Record.Field("title") != "A" {
		t.Fatal("source order not preserved")
	}
}

func TestJobDuplicateStartIgnored(t *testing.T) {
	f := &stubFetcher{source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook}, titles: []string{"A"}}
	j, results, _ := newTestJob(f, bookRequest("query"))

	j.run(context.Background())
	j.run(context.Background())

	if f.searchCount() != 1 {
		t.Fatalf("expected a single search, got %d", f.searchCount())
	}
	if len(*results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(*results))
	}
}

func TestJobEmptyRequestIsNoop(t *testing.T) {
	f := &stubFetcher{source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook}, titles: []string{"A"}}
	j, results, messages := newTestJob(f, Request{Type: catalog.TypeBook})

	j.run(context.Background())

	if f.searchCount() != 0 {
		t.Fatal("empty request must not hit the network")
	}
	if len(*results) != 0 || len(*messages) != 0 {
		t.Fatal("empty request must complete silently")
	}
	if got := j.currentState(); got != jobDone {
		t.Fatalf("expected done state, got %v", got)
	}
}

func TestJobFailureBecomesWarningMessage(t *testing.T) {
	f := &stubFetcher{
		source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook},
		err: Wrap(ErrTransport, "stub", "search", errors.New("connection refused")),
	}
	j, results, messages := newTestJob(f, bookRequest("query"))

	j.run(context.Background())

	if len(*results) != 0 {
		t.Fatal("failed search must yield zero results")
	}
	if len(*messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(*messages))
	}
	if (*messages)[0].Severity != SeverityWarning {
		t.Fatalf("transport failure should warn, got %v", (*messages)[0].Severity)
	}
}

func TestJobConfigurationErrorIsDistinguishable(t *testing.T) {
	f := &stubFetcher{
		source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook},
		err: Wrap(ErrConfiguration, "stub", "search", errors.New("access key required")),
	}
	j, _, messages := newTestJob(f, bookRequest("query"))

	j.run(context.Background())

	if len(*messages) != 1 || (*messages)[0].Severity != SeverityError {
		t.Fatalf("expected configuration error message, got %v", *messages)
	}
}

func TestJobCancelBeforeResponseYieldsNoResults(t *testing.T) {
	f := &stubFetcher{
		source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook},
		titles: []string{"A"}, block: make(chan struct{}),
	}
	j, results, _ := newTestJob(f, bookRequest("query"))

	ran := make(chan struct{})
	go func() {
		j.run(context.Background())
		close(ran)
	}()

	// wait until the search is in flight, then cancel
	deadline := time.After(2 * time.Second)
	for f.searchCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("search never started")
		case <-time.After(time.Millisecond):
		}
	}
	j.Cancel()
	<-ran

	if got := j.currentState(); got != jobCancelled {
		t.Fatalf("expected cancelled state, got %v", got)
	}
	if len(*results) != 0 {
		t.Fatalf("cancel before response must suppress results, got %d", len(*results))
	}
}

func TestJobCancelAfterCompletionIsNoop(t *testing.T) {
	f := &stubFetcher{source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook}, titles: []string{"A"}}
	j, results, _ := newTestJob(f, bookRequest("query"))

	j.run(context.Background())
	j.Cancel()
	j.Cancel()

	if got := j.currentState(); got != jobDone {
		t.Fatalf("cancel after completion must not change state, got %v", got)
	}
	if len(*results) != 1 {
		t.Fatal("already-emitted results must remain valid")
	}
}

func TestJobCancelBeforeStartSuppressesRun(t *testing.T) {
	f := &stubFetcher{source: "stub", keys: []KeyKind{KeyTitle}, types: []catalog.Type{catalog.TypeBook}, titles: []string{"A"}}
	j, results, _ := newTestJob(f, bookRequest("query"))

	j.Cancel()
	j.run(context.Background())

	if f.searchCount() != 0 {
		t.Fatal("cancelled job must not search")
	}
	if len(*results) != 0 {
		t.Fatal("cancelled job must not emit")
	}
}
