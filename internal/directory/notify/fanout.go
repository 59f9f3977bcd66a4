package notify

import (
	"context"
	"errors"
)

// Fanout publishes every event to all of its sinks, even when some fail.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Group hands each delete to several publishers, typically one per sink so
// that each keeps its own buffer, breaker and failure metrics.
type Group []*Publisher

func (g Group) NotifyDeleted(ctx context.Context, id string) error {
	var errs []error
	for _, p := range g {
		if err := p.NotifyDeleted(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close drains every publisher.
func (g Group) Close() {
	for _, p := range g {
		p.Close()
	}
}
