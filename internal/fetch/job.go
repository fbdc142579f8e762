package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"quarto/internal/catalog"
	"quarto/internal/logging"
)

// jobState tracks one adapter invocation's lifecycle.
type jobState int

const (
	jobIdle jobState = iota
	jobStarted
	jobAwaitingResponse
	jobDone
	jobCancelled
)

func (s jobState) String() string {
	switch s {
	case jobIdle:
		return "idle"
	case jobStarted:
		return "started"
	case jobAwaitingResponse:
		return "awaiting_response"
	case jobDone:
		return "done"
	case jobCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// job is the controller for one adapter invocation. It runs the adapter's
// Search under a child context, reports results and messages through the
// orchestrator's callbacks, and guarantees the terminal transition happens
// exactly once: a response accepted before Cancel stands, a Cancel observed
// first guarantees zero results.
type job struct {
	fetcher Fetcher
	req     Request
	schema  *catalog.Schema
	limiter *SourceLimiter
	logger  *slog.Logger

	emit    func(source string, rec *catalog.Record)
	message func(Message)

	mu     sync.Mutex
	state  jobState
	cancel context.CancelFunc
}

func newJob(fetcher Fetcher, req Request, schema *catalog.Schema, limiter *SourceLimiter, logger *slog.Logger,
	emit func(string, *catalog.Record), message func(Message)) *job {
	return &job{
		fetcher: fetcher,
		req:     req,
		schema:  schema,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "fetchjob").With(logging.String(logging.FieldSource, fetcher.Source())),
		emit:    emit,
		message: message,
	}
}

// run executes the job to a terminal state. Re-running a job that already
// left Idle is a caller error, ignored defensively with a warning.
func (j *job) run(ctx context.Context) {
	j.mu.Lock()
	if j.state == jobCancelled {
		j.mu.Unlock()
		return
	}
	if j.state != jobIdle {
		state := j.state
		j.mu.Unlock()
		j.logger.Warn("ignoring duplicate start", logging.String("state", state.String()))
		return
	}
	j.state = jobStarted
	ctx, j.cancel = context.WithCancel(ctx)
	j.mu.Unlock()

	// the network handle is released unconditionally on exit, whichever side
	// of the cancellation race wins
	defer j.cancel()

	if j.req.IsEmpty() {
		j.finish(nil, nil)
		return
	}

	if err := j.limiter.Wait(ctx, j.fetcher.Source()); err != nil {
		j.finish(nil, Wrap(ErrTransport, j.fetcher.Source(), "rate limit wait", err))
		return
	}

	j.mu.Lock()
	if j.state == jobCancelled {
		j.mu.Unlock()
		return
	}
	j.state = jobAwaitingResponse
	j.mu.Unlock()

	records, err := j.fetcher.Search(ctx, j.req, j.schema)
	j.finish(records, err)
}

// finish performs the terminal transition. Results are discarded when a
// cancel won the race; otherwise they are emitted in source order before the
// job reports done.
func (j *job) finish(records []*catalog.Record, err error) {
	j.mu.Lock()
	if j.state == jobCancelled || j.state == jobDone {
		j.mu.Unlock()
		return
	}
	j.state = jobDone
	j.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		j.logger.Warn("source search failed", logging.Error(err))
		j.message(messageFromError(j.fetcher.Source(), err))
		return
	}
	for _, rec := range records {
		if rec == nil || rec.IsEmpty() {
			continue
		}
		j.emit(j.fetcher.Source(), rec)
	}
	j.logger.Debug("source search complete", logging.Int("results", len(records)))
}

// Cancel aborts the job if it has not already completed. It is idempotent
// and safe to call in any state, including before start and after natural
// completion.
func (j *job) Cancel() {
	j.mu.Lock()
	switch j.state {
	case jobDone, jobCancelled:
		j.mu.Unlock()
		return
	default:
		j.state = jobCancelled
	}
	cancel := j.cancel
	j.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// currentState reports the job's state for tests and debugging.
func (j *job) currentState() jobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}
