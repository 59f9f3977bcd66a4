package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Source,Notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"userdir/internal/directory/index"
	"userdir/internal/directory/models"
	"userdir/internal/platform/metrics"
)

// Source streams every user of the dataset once, in source order. It stops
// and returns the callback's error if the callback fails.
type Source interface {
	StreamUsers(ctx context.Context, fn func(models.User) error) error
}

// Notifier is told about deletes. Delivery is best effort; the directory
// logs failures and carries on.
type Notifier interface {
	NotifyDeleted(ctx context.Context, id string) error
}

// Service is the user directory. It lazily builds its indexes from the
// Source on first use and serves every query from them afterwards.
type Service struct {
	source   Source
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time

	group   singleflight.Group
	ready   atomic.Bool
	indexes atomic.Pointer[index.Set]
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithClock overrides the source of "today" used by age queries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service. Nothing is loaded until the first call that
// needs the indexes.
func New(source Source, opts ...Option) (*Service, error) {
	if source == nil {
		return nil, errors.New("user source is required")
	}
	s := &Service{
		source: source,
		logger: slog.Default(),
		tracer: otel.Tracer("userdir/internal/directory/service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Ready reports whether a load has completed successfully.
func (s *Service) Ready() bool {
	return s.ready.Load()
}

// Stats describes the current size of the directory.
type Stats struct {
	Users      int `json:"users"`
	NameKeys   int `json:"name_keys"`
	AgeEntries int `json:"age_entries"`
	Countries  int `json:"countries"`
}

// Stats reports index sizes, initializing the directory if needed.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	set, err := s.acquire(ctx)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		Users:      set.Identity.Len(),
		NameKeys:   set.Names.Len(),
		AgeEntries: set.Ages.Len(),
		Countries:  set.Countries.Len(),
	}, nil
}

// acquire is the first step of every public operation: no index is read
// before a load has fully completed.
func (s *Service) acquire(ctx context.Context) (*index.Set, error) {
	if err := s.EnsureInitialized(ctx); err != nil {
		return nil, err
	}
	return s.indexes.Load(), nil
}
