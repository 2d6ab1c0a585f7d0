// Package logging configures the process-wide structured logger.
//
// It wraps log/slog with a console handler for interactive use, a JSON
// handler for log files, and shared field-name constants so components
// emit consistent attributes.
package logging
