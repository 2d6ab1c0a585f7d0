// Package textutil provides text processing utilities for document
// normalization and filename sanitization.
//
// Normalization produces the canonical form the splitter and the max-length
// check both operate on: NFKC-composed runes, folded whitespace, no control
// characters. Sanitization makes user-supplied names safe as path segments.
package textutil
