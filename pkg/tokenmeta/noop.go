package tokenmeta

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
// Useful when configuration changes need no external notification or for testing
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

// BaseURIConfigured does nothing and returns nil
func (n *NoopEventSink) BaseURIConfigured(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error {
	return nil
}

// TokenURIChanged does nothing and returns nil
func (n *NoopEventSink) TokenURIChanged(ctx context.Context, id TokenID, uri string) error {
	return nil
}

// LoggingEventSink is an event sink that logs configuration changes but takes
// no other action. Useful for development and debugging.
type LoggingEventSink struct {
	logger *slog.Logger
}

// NewLoggingEventSink creates a new logging event sink. A nil logger falls
// back to slog.Default().
func NewLoggingEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingEventSink{logger: logger}
}

// BaseURIConfigured logs the base path configuration change
func (l *LoggingEventSink) BaseURIConfigured(ctx context.Context, id TokenID, baseURI string, useIDInPath bool) error {
	l.logger.InfoContext(ctx, "token base uri configured",
		"token_id", id.String(),
		"base_uri", baseURI,
		"use_id_in_path", useIDInPath)
	return nil
}

// TokenURIChanged logs the explicit URI change
func (l *LoggingEventSink) TokenURIChanged(ctx context.Context, id TokenID, uri string) error {
	l.logger.InfoContext(ctx, "token uri changed",
		"token_id", id.String(),
		"uri", uri)
	return nil
}
