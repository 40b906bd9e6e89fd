// Package oteladapters provides OpenTelemetry implementations of the hydrate
// observability interfaces, for users who want plug-and-play trace
// correlation and metrics without writing the glue themselves.
package oteladapters

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/entityevent/hydrate-go/hydrate"
)

// SlogBridgeLogger implements hydrate.ContextualLogger through the
// OpenTelemetry slog bridge. This is the recommended implementation, it
// correlates log records with the active trace automatically and behaves
// like a plain slog logger otherwise.
type SlogBridgeLogger struct {
	logger *slog.Logger
}

// NewSlogBridgeLogger creates a contextual logger backed by the global
// OpenTelemetry LoggerProvider.
func NewSlogBridgeLogger(name string) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: otelslog.NewLogger(name)}
}

// NewSlogBridgeLoggerWithHandler creates a contextual logger from a specific
// slog.Handler. No trace correlation is added, the handler is used as-is.
func NewSlogBridgeLoggerWithHandler(handler slog.Handler) *SlogBridgeLogger {
	return &SlogBridgeLogger{logger: slog.New(handler)}
}

func (l *SlogBridgeLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

func (l *SlogBridgeLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}

var _ hydrate.ContextualLogger = (*SlogBridgeLogger)(nil)

// OTelLogger implements hydrate.ContextualLogger on the OpenTelemetry
// logging API directly, for callers who need control over the emitted log
// records.
type OTelLogger struct {
	logger log.Logger
}

// NewOTelLogger creates a contextual logger emitting through the given
// OpenTelemetry logger.
func NewOTelLogger(logger log.Logger) *OTelLogger {
	return &OTelLogger{logger: logger}
}

func (l *OTelLogger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityDebug, msg, args...)
}

func (l *OTelLogger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityInfo, msg, args...)
}

func (l *OTelLogger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityWarn, msg, args...)
}

func (l *OTelLogger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.emit(ctx, log.SeverityError, msg, args...)
}

// emit builds one OpenTelemetry log record from slog-style key-value args.
// Keys that are not strings are skipped, as is a trailing dangling value.
func (l *OTelLogger) emit(ctx context.Context, severity log.Severity, msg string, args ...any) {
	record := log.Record{}
	record.SetSeverity(severity)
	record.SetBody(log.StringValue(msg))

	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			record.AddAttributes(log.String(key, stringValue(args[i+1])))
		}
	}

	l.logger.Emit(ctx, record)
}

func stringValue(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return slog.AnyValue(v).String()
}

var _ hydrate.ContextualLogger = (*OTelLogger)(nil)
