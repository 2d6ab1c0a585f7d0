// Package vectorindex is the HTTP client for the external vector index
// service that stores document chunks for retrieval. The coordinator only
// needs three calls: batch insert, delete-by-document (the compensating
// action), and a health probe.
package vectorindex
