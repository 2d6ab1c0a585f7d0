// Package logs provides offset-based log file tailing shared by the CLI,
// the IPC surface, and the HTTP status API.
//
// It reads with bounded memory, supports a negative offset for "last N
// lines", and powers follow mode for `verso logs --follow`. Callers supply
// context deadlines so polling stops cleanly when the client disconnects.
package logs
