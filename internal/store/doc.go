// Package store is the persistence facade of the cosnet control plane.
//
// It persists four fixed record shapes (service classes, requests, attempts,
// responses) in SQLite and serializes every statement issued by arbitrary
// caller goroutines through one FIFO queue drained by a single worker.
// Concurrency control is achieved by funneling, not by locking: callers never
// touch the connection, they block on a per-operation completion future until
// the worker has executed their statement.
//
// # Commit coalescing
//
// The worker commits only when it observes an empty queue right after a write.
// Bursts of back-to-back writes therefore share one commit at the end of the
// burst. This is a deliberate durability/throughput trade-off: a crash between
// a completed write and the next drain can lose that write even though the
// caller was already released.
//
// # Error policy
//
// Execution errors never cross the queue. The worker logs them, completes the
// operation, and the caller observes an empty result indistinguishable from
// "found nothing". The exported facade methods (Insert, Update, Select,
// SelectPage, AsCSV) likewise swallow construction errors at the boundary and
// return a coarse bool or nil; the typed error values in errors.go stay
// internal for logging and tests.
package store
