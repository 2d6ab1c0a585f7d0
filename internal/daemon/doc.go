// Package daemon hosts the long-running ingestion service: it enforces
// single-instance execution with a lock file, owns the workflow manager
// lifecycle, accepts documents into the queue, and serves the HTTP status
// API. Control commands arrive over IPC from the CLI.
package daemon
