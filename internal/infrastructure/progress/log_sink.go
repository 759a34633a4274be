package progress

import (
	"context"
	"log/slog"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

// LogSink reports progress to the application log. Used when no webhook is
// configured.
type LogSink struct {
	logger *slog.Logger
}

var _ ports.ProgressSink = (*LogSink)(nil)

// NewLogSink wires a logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Publish logs one event.
func (s *LogSink) Publish(ctx context.Context, event domain.ProgressEvent) error {
	if s.logger == nil {
		return nil
	}
	s.logger.Info("run progress",
		"run_id", event.RunID,
		"processed", event.Processed,
		"acted", event.Acted,
		"status", event.Status)
	return nil
}
