// Package api defines the transport DTOs shared by the HTTP status API and
// the IPC control surface, plus the conversions from queue records.
//
// The DTOs are deliberately flat JSON types so both surfaces serialize the
// same shapes and clients never depend on internal queue types.
package api
