package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"userdir/internal/directory/dates"
	"userdir/internal/directory/index"
	"userdir/internal/directory/models"
	dErrors "userdir/pkg/domain-errors"
)

const initFlight = "initialize"

// Reasons a source record is rejected during load.
const (
	skipMissingID   = "missing_id"
	skipInvalidDOB  = "invalid_dob"
	skipDuplicateID = "duplicate_id"
)

// EnsureInitialized loads and indexes the dataset exactly once. Concurrent
// callers share the in-flight load and all observe its outcome. A failed
// load leaves the directory uninitialized so the next call retries.
//
// The load itself is detached from ctx: a caller giving up only stops that
// caller's wait, never the shared load.
func (s *Service) EnsureInitialized(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}

	ch := s.group.DoChan(initFlight, func() (any, error) {
		// A previous flight may have finished between our check and joining.
		if s.ready.Load() {
			return nil, nil
		}
		return nil, s.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "gave up waiting for directory initialization")
	}
}

func (s *Service) load(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "directory.load")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.ObserveInit(start, err) }()

	s.logger.InfoContext(ctx, "loading user directory")

	set := index.NewSet()
	loaded := 0
	streamErr := s.source.StreamUsers(ctx, func(u models.User) error {
		rec, reason := s.newRecord(ctx, u)
		if rec != nil && !set.Add(rec) {
			rec, reason = nil, skipDuplicateID
		}
		if rec == nil {
			s.metrics.IncrementSkipped(reason)
			s.logger.WarnContext(ctx, "skipping user record",
				"id", u.ID,
				"reason", reason,
			)
			return nil
		}
		loaded++
		return nil
	})
	if streamErr != nil {
		span.RecordError(streamErr)
		span.SetStatus(codes.Error, "load failed")
		s.logger.ErrorContext(ctx, "failed to load user directory",
			"error", streamErr,
			"records_read", loaded,
		)
		return dErrors.Wrap(streamErr, dErrors.CodeUnavailable, "failed to load users")
	}

	s.indexes.Store(set)
	s.ready.Store(true)
	s.metrics.RecordLoaded(loaded)
	span.SetAttributes(attribute.Int("users.loaded", loaded))

	s.logger.InfoContext(ctx, "user directory initialized",
		"users", loaded,
		"duration", time.Since(start),
	)
	return nil
}

func (s *Service) newRecord(ctx context.Context, u models.User) (*models.Record, string) {
	u.ID = strings.TrimSpace(u.ID)
	if u.ID == "" {
		return nil, skipMissingID
	}
	birth, err := dates.ParseDOB(u.DOB)
	if err != nil {
		s.logger.DebugContext(ctx, "unparseable birth date", "id", u.ID, "error", err)
		return nil, skipInvalidDOB
	}
	return models.NewRecord(u, birth), ""
}
