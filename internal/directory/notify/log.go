package notify

import (
	"context"
	"log/slog"
)

// Log writes each event to a structured logger.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Publish(ctx context.Context, event Event) error {
	l.logger.InfoContext(ctx, "user deleted event",
		"id", event.ID,
		"deleted_at", event.DeletedAt,
	)
	return nil
}
