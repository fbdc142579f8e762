// Package fetch contains the multi-source fetch pipeline: the search key
// kinds, the Fetcher capability interface implemented by each source adapter,
// the per-adapter job controller, and the orchestrator that fans a logical
// request out to every eligible adapter and merges their results.
//
// Adapters perform blocking network calls under a caller context; the job
// controller wraps each adapter invocation in a small state machine
// (Idle -> Started -> AwaitingResponse -> Done | Cancelled) that guarantees
// exactly-once completion and well-defined cancellation. The orchestrator
// never blocks: it dispatches jobs and merges their result streams in
// arrival order.
package fetch
