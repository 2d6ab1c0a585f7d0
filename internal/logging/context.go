package logging

import (
	"context"
	"log/slog"

	"verso/internal/services"
)

// WithContext returns the logger enriched with any item, stage, or worker
// fields carried by the context. A nil logger yields the no-op logger so
// call sites can chain without checks.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	attrs := ContextFields(ctx)
	if len(attrs) == 0 {
		return logger
	}
	return logger.With(Args(attrs...)...)
}

// ContextFields extracts the shared attributes recorded on the context.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	var attrs []Attr
	if id, ok := services.ItemIDFromContext(ctx); ok {
		attrs = append(attrs, slog.Int64(FieldItemID, id))
	}
	if doc, ok := services.DocumentIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldDocumentID, doc))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldStage, stage))
	}
	if worker, ok := services.WorkerFromContext(ctx); ok {
		attrs = append(attrs, slog.Int(FieldWorker, worker))
	}
	if request, ok := services.RequestIDFromContext(ctx); ok {
		attrs = append(attrs, slog.String(FieldRequestID, request))
	}
	return attrs
}
