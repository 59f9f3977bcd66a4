package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"userdir/internal/platform/metrics"
)

var (
	ErrBufferFull    = errors.New("notification buffer full")
	ErrCircuitOpen   = errors.New("notification sink circuit open")
	ErrPublisherDone = errors.New("notification publisher closed")
)

// Publisher turns deletes into Events for a Sink. Without a buffer every
// NotifyDeleted call delivers synchronously; with one, events are queued and
// a background worker delivers them, dropping new events while the queue is
// full.
type Publisher struct {
	sink    Sink
	name    string
	logger  *slog.Logger
	metrics *metrics.Metrics
	breaker *breaker
	now     func() time.Time
	timeout time.Duration

	bufferSize int
	buffer     chan Event

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer enables asynchronous delivery with a queue of size n.
func WithAsyncBuffer(n int) PublisherOption {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

// WithName labels the sink in logs and metrics.
func WithName(name string) PublisherOption {
	return func(p *Publisher) {
		p.name = name
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithCircuitBreaker skips the sink for cooldown after threshold
// consecutive failures.
func WithCircuitBreaker(threshold int, cooldown time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.breaker = newBreaker(threshold, cooldown)
	}
}

// WithDeliveryTimeout bounds each asynchronous delivery.
func WithDeliveryTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		p.timeout = d
	}
}

func withClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(sink Sink, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		sink:    sink,
		name:    "default",
		logger:  slog.Default(),
		now:     time.Now,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker != nil {
		p.breaker.now = p.now
	}
	if p.bufferSize > 0 {
		p.buffer = make(chan Event, p.bufferSize)
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// NotifyDeleted publishes a deletion of id.
func (p *Publisher) NotifyDeleted(ctx context.Context, id string) error {
	event := Event{ID: id, DeletedAt: p.now().UTC()}
	if p.buffer == nil {
		return p.deliver(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherDone
	}
	select {
	case p.buffer <- event:
		return nil
	default:
		p.metrics.IncrementNotificationsDropped()
		p.logger.WarnContext(ctx, "notification buffer full, dropping event",
			"sink", p.name,
			"id", id,
		)
		return ErrBufferFull
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.buffer != nil {
		close(p.buffer)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) run() {
	defer p.wg.Done()
	for event := range p.buffer {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		_ = p.deliver(ctx, event)
		cancel()
	}
}

func (p *Publisher) deliver(ctx context.Context, event Event) error {
	if p.breaker != nil && !p.breaker.allow() {
		p.metrics.IncrementNotificationsDropped()
		return ErrCircuitOpen
	}

	err := p.sink.Publish(ctx, event)
	if err == nil {
		if p.breaker != nil {
			p.breaker.recordSuccess()
		}
		return nil
	}

	p.metrics.IncrementNotificationsFailed(p.name)
	p.logger.ErrorContext(ctx, "failed to deliver notification",
		"sink", p.name,
		"id", event.ID,
		"error", err,
	)
	if p.breaker != nil && p.breaker.recordFailure() {
		p.logger.WarnContext(ctx, "notification sink circuit opened",
			"sink", p.name,
		)
	}
	return err
}
