package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"quarto/internal/catalog"
	"quarto/internal/logging"
)

// Orchestrator fans a logical request out to every adapter whose declared
// capabilities cover it and merges their results into a single stream.
type Orchestrator struct {
	fetchers []Fetcher
	limiter  *SourceLimiter
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSourceLimiter installs a per-source rate limiter waited on before each
// network search.
func WithSourceLimiter(limiter *SourceLimiter) Option {
	return func(o *Orchestrator) {
		o.limiter = limiter
	}
}

// NewOrchestrator creates an orchestrator over the given adapters.
func NewOrchestrator(logger *slog.Logger, fetchers []Fetcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		fetchers: fetchers,
		logger:   logging.NewComponentLogger(logger, "orchestrator"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Eligible returns the adapters able to serve the request.
func (o *Orchestrator) Eligible(req Request) []Fetcher {
	var eligible []Fetcher
	for _, fetcher := range o.fetchers {
		if fetcher.CanSearch(req.Key) && fetcher.CanFetch(req.Type) {
			eligible = append(eligible, fetcher)
		}
	}
	return eligible
}

// Fetchers returns all registered adapters.
func (o *Orchestrator) Fetchers() []Fetcher {
	out := make([]Fetcher, len(o.fetchers))
	copy(out, o.fetchers)
	return out
}

// UpdateRequest derives a refresh request for an existing record through the
// named adapter's hook. An unknown source or an unusable record yields an
// empty request, which adapters treat as "nothing to do".
func (o *Orchestrator) UpdateRequest(source string, rec *catalog.Record) Request {
	for _, fetcher := range o.fetchers {
		if fetcher.Source() == source {
			return fetcher.UpdateRequest(rec)
		}
	}
	return Request{}
}

// Execute starts one search. All eligible adapters run concurrently; results
// are delivered on the returned Search's channel in arrival order (no
// ordering across adapters, source order within one adapter). The channel is
// closed exactly once, after every started job reaches a terminal state.
func (o *Orchestrator) Execute(ctx context.Context, req Request) *Search {
	schema := catalog.SchemaFor(req.Type)
	ctx, cancel := context.WithCancel(ctx)

	search := &Search{
		request: req,
		schema:  schema,
		results: make(chan Result),
		done:    make(chan struct{}),
		cancel:  cancel,
		byID:    make(map[string]resultEntry),
	}

	eligible := o.Eligible(req)
	o.logger.Debug("dispatching search",
		logging.String(logging.FieldRequestKey, req.Key.String()),
		logging.String("collection_type", string(req.Type)),
		logging.Int("eligible_sources", len(eligible)))

	group, ctx := errgroup.WithContext(ctx)
	for _, fetcher := range eligible {
		fetcher := fetcher
		j := newJob(fetcher, req, schema, o.limiter, o.logger,
			func(source string, rec *catalog.Record) {
				search.addResult(ctx, fetcher, source, rec)
			},
			search.addMessage,
		)
		search.jobs = append(search.jobs, j)
	}
	for _, j := range search.jobs {
		j := j
		group.Go(func() error {
			j.run(ctx)
			return nil
		})
	}
	go func() {
		_ = group.Wait()
		close(search.results)
		close(search.done)
	}()
	return search
}

type resultEntry struct {
	fetcher Fetcher
	record  *catalog.Record
}

// Search is one in-flight orchestrator execution: a single-pass result
// stream, its cancellation handle, and the per-execution result registry
// used to resolve partial records later.
type Search struct {
	request Request
	schema  *catalog.Schema
	results chan Result
	done    chan struct{}
	cancel  context.CancelFunc
	jobs    []*job

	mu       sync.Mutex
	byID     map[string]resultEntry
	messages []Message
}

// Results returns the stream of fetch results. Delivery is unbuffered: jobs
// block until each result is received, so the stream must be consumed. The
// channel is closed once every adapter job has terminated.
func (s *Search) Results() <-chan Result {
	return s.results
}

// Done is closed when the whole execution has completed. Waiting on Done
// without draining Results stalls jobs that still have results to deliver;
// drain the stream, or call Cancel (or cancel the Execute context) first.
func (s *Search) Done() <-chan struct{} {
	return s.done
}

// Schema returns the schema shared by this execution's records.
func (s *Search) Schema() *catalog.Schema {
	return s.schema
}

// Cancel aborts every still-running job. Already-emitted results remain
// valid. Safe to call repeatedly and after completion.
func (s *Search) Cancel() {
	for _, j := range s.jobs {
		j.Cancel()
	}
	s.cancel()
}

// Messages returns the out-of-band source messages collected so far. Call
// after Done for the complete set.
func (s *Search) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// ResolveFull completes the partial record behind a previously emitted
// result id. Resolution runs under its own context and may be cancelled
// independently of the originating search.
func (s *Search) ResolveFull(ctx context.Context, id string) (*catalog.Record, error) {
	s.mu.Lock()
	entry, ok := s.byID[id]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("fetch result %s: unknown id", id)
	}
	resolved, err := entry.fetcher.ResolveFull(ctx, s.request, entry.record)
	if err != nil {
		s.addMessage(messageFromError(entry.fetcher.Source(), err))
		return nil, err
	}
	s.mu.Lock()
	s.byID[id] = resultEntry{fetcher: entry.fetcher, record: resolved}
	s.mu.Unlock()
	return resolved, nil
}

func (s *Search) addResult(ctx context.Context, fetcher Fetcher, source string, rec *catalog.Record) {
	id := uuid.NewString()
	s.mu.Lock()
	s.byID[id] = resultEntry{fetcher: fetcher, record: rec}
	s.mu.Unlock()

	select {
	case s.results <- Result{ID: id, Source: source, Request: s.request, Record: rec}:
	case <-ctx.Done():
	}
}

func (s *Search) addMessage(msg Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()
}
