// Package extraction implements the first pipeline stage: decoding a
// source document to plain text, normalizing it, enforcing the empty and
// max-length content rules, and splitting it into the chunk artifact the
// indexing stage uploads.
package extraction
