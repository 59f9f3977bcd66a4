package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"userdir/internal/directory/dates"
	"userdir/internal/directory/models"
)

// maxAge bounds age queries; anything above it cannot match a real birth date.
const maxAge = 200

// GetUser returns the live user with id. The bool is false when no such
// user exists or it was deleted.
func (s *Service) GetUser(ctx context.Context, id string) (models.User, bool, error) {
	ctx, span := s.tracer.Start(ctx, "directory.GetUser", trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()
	defer s.metrics.ObserveQuery("get_user", time.Now())

	set, err := s.acquire(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	s.logger.DebugContext(ctx, "get user by id", "id", id)

	rec, ok := set.Identity.Get(id)
	if !ok || rec.Deleted() {
		return models.User{}, false, nil
	}
	return rec.Snapshot(), true, nil
}

// GetUsersByName returns every live user with a name or name token starting
// with text, case-insensitively.
func (s *Service) GetUsersByName(ctx context.Context, text string) ([]models.User, error) {
	ctx, span := s.tracer.Start(ctx, "directory.GetUsersByName")
	defer span.End()
	defer s.metrics.ObserveQuery("get_users_by_name", time.Now())

	set, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "get users by name", "name", text)

	users := models.Snapshots(set.Names.Search(text))
	span.SetAttributes(attribute.Int("users.matched", len(users)))
	return users, nil
}

// GetUsersByCountry returns the live users of a country code, any case.
func (s *Service) GetUsersByCountry(ctx context.Context, code string) ([]models.User, error) {
	ctx, span := s.tracer.Start(ctx, "directory.GetUsersByCountry", trace.WithAttributes(attribute.String("user.country", code)))
	defer span.End()
	defer s.metrics.ObserveQuery("get_users_by_country", time.Now())

	set, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "get users by country", "country", code)

	return models.Snapshots(set.Countries.Get(code)), nil
}

// GetUsersByAge returns the live users whose current age in whole years is
// ageText. Text that is not a non-negative integer yields an empty list.
func (s *Service) GetUsersByAge(ctx context.Context, ageText string) ([]models.User, error) {
	ctx, span := s.tracer.Start(ctx, "directory.GetUsersByAge")
	defer span.End()
	defer s.metrics.ObserveQuery("get_users_by_age", time.Now())

	set, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "get users by age", "age", ageText)

	age, err := strconv.Atoi(strings.TrimSpace(ageText))
	if err != nil || age < 0 || age > maxAge {
		return []models.User{}, nil
	}
	minDoB, maxDoB := dates.AgeBounds(s.now(), age)
	return models.Snapshots(set.Ages.Range(minDoB, maxDoB)), nil
}

// Countries lists the country codes that still have users.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	set, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return set.Countries.Countries(), nil
}
