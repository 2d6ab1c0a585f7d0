// Package services defines shared utilities consumed by the pipeline stage
// handlers and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp queue item IDs, document IDs, stage names,
//     worker ordinals, and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     consistently (validation vs timeout vs transient) and produce the
//     sanitized messages persisted to the queue.
//
// Use these helpers when wiring new stage logic so operational behaviour
// stays uniform across the pipeline.
package services
