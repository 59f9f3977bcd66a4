package notify

import (
	"context"
	"time"
)

// Event announces that a user was removed from the directory.
type Event struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// Sink delivers events to one downstream system.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}
