package logging

import (
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so call sites can stay on the logging package.
type Attr = slog.Attr

// Value aliases slog.Value.
type Value = slog.Value

// Shared attribute keys. Components use these constants instead of ad hoc
// strings so log consumers can filter reliably.
const (
	FieldComponent     = "component"
	FieldItemID        = "item_id"
	FieldDocumentID    = "document_id"
	FieldKnowledgeBase = "kb_id"
	FieldStage         = "stage"
	FieldWorker        = "worker"
	FieldShard         = "shard"
	FieldRequestID     = "request_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldImpact        = "impact"
	FieldDuration      = "duration"
)

// String builds a string attribute.
func String(key, value string) Attr { return slog.String(key, value) }

// Int builds an int attribute.
func Int(key string, value int) Attr { return slog.Int(key, value) }

// Int64 builds an int64 attribute.
func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

// Uint64 builds a uint64 attribute.
func Uint64(key string, value uint64) Attr { return slog.Uint64(key, value) }

// Bool builds a bool attribute.
func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

// Duration builds a duration attribute.
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

// Time builds a time attribute.
func Time(key string, value time.Time) Attr { return slog.Time(key, value) }

// Any builds an attribute from an arbitrary value.
func Any(key string, value any) Attr { return slog.Any(key, value) }

// Group nests attributes under a single key.
func Group(key string, args ...any) Attr { return slog.Group(key, args...) }

// Error builds the conventional error attribute. A nil error yields an
// empty value so callers do not need to branch.
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Args converts a list of attributes into the variadic ...any form the
// slog logger methods accept.
func Args(attrs ...Attr) []any {
	out := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		out = append(out, attr)
	}
	return out
}
