// Package sl - общие slog-атрибуты сервиса.
package sl

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// Err оборачивает ошибку в атрибут с единообразным ключом.
func Err(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Traced достает trace id текущего спана для корреляции логов с трейсами.
func Traced(ctx context.Context) slog.Attr {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if spanContext.HasTraceID() {
		return slog.String("trace_id", spanContext.TraceID().String())
	}

	return slog.Any("trace_id", nil)
}
