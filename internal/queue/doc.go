// Package queue persists ingestion work items in SQLite and implements the
// claim/record operations the worker loops coordinate through.
//
// The table is the only shared mutable state between workers: the atomic
// conditional UPDATE in ClaimNext is the sole mutual-exclusion mechanism, so
// no in-process locks are needed. Items move pending → processing →
// completed|failed and never re-enter pending except through an explicit
// operator retry.
package queue
