// Package workflow runs the per-worker scheduling loops that drain the
// ingestion queue.
//
// The Manager owns a fixed pool of workers, each with a stable 0-based
// ordinal. Every iteration a worker derives its current shard from the
// wall clock, tries to claim the oldest pending item in that shard, and if
// one is claimed runs the extraction and indexing stages under independent
// deadlines before recording exactly one terminal outcome. Workers never
// talk to each other; the queue table's conditional update is the only
// coordination point.
//
// The manager also owns crash recovery: leftover processing items are
// failed at startup, a per-item heartbeat is maintained while a stage
// runs, and a reclaimer demotes items whose heartbeat has expired,
// issuing the compensating vector-index delete for any partial writes.
package workflow
