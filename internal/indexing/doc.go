// Package indexing implements the second pipeline stage: uploading staged
// document chunks to the vector index service in bounded batches with
// best-effort progress reporting.
package indexing
