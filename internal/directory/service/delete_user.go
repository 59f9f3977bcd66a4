package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DeleteUser soft-deletes a user and removes it from every index. It returns
// false when the id is unknown or already deleted; of several concurrent
// deletes of one id exactly one returns true.
func (s *Service) DeleteUser(ctx context.Context, id string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "directory.DeleteUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	defer s.metrics.ObserveQuery("delete_user", time.Now())

	set, err := s.acquire(ctx)
	if err != nil {
		return false, err
	}
	s.logger.DebugContext(ctx, "delete user", "id", id)

	rec, ok := set.Identity.Get(id)
	if !ok || !rec.MarkDeleted() {
		return false, nil
	}

	// The flag is already set, so readers skip the record while the
	// structural removal below is still running.
	set.Remove(rec)
	s.metrics.IncrementDeleted()

	s.logger.InfoContext(ctx, "user deleted",
		"id", id,
		"country", rec.Country,
	)

	if s.notifier != nil {
		if err := s.notifier.NotifyDeleted(context.WithoutCancel(ctx), id); err != nil {
			s.logger.WarnContext(ctx, "delete notification failed",
				"id", id,
				"error", err,
			)
		}
	}
	return true, nil
}
