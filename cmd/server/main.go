package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"userdir/internal/directory/handler"
	"userdir/internal/directory/notify"
	"userdir/internal/directory/service"
	"userdir/internal/directory/source"
	"userdir/internal/platform/config"
	"userdir/internal/platform/httpserver"
	"userdir/internal/platform/kafka"
	"userdir/internal/platform/logger"
	"userdir/internal/platform/metrics"
	"userdir/internal/platform/middleware"
	"userdir/internal/platform/postgres"
	"userdir/internal/platform/redis"
)

// main wires dependencies, exposes the HTTP router and keeps the server
// lifecycle small. Directory logic lives in internal/directory.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "userdir: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	app := &application{cfg: cfg, log: log, metrics: m}
	defer app.close()

	src, err := app.buildSource(ctx)
	if err != nil {
		return err
	}
	notifier, err := app.buildNotifier(ctx)
	if err != nil {
		return err
	}

	directory, err := service.New(src,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithNotifier(notifier),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	handler.New(directory, log, cfg.Server.AdminToken).Register(r)
	r.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Server.Addr, r)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	if cfg.Server.WarmUp {
		g.Go(func() error {
			// A failed warm-up is retried by the first request.
			if err := directory.EnsureInitialized(gctx); err != nil {
				log.WarnContext(gctx, "directory warm-up failed", "error", err)
			}
			return nil
		})
	}

	log.Info("starting userdir",
		"addr", cfg.Server.Addr,
		"source", cfg.Source.Kind,
		"sinks", cfg.Notify.Sinks,
	)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("userdir stopped")
	return nil
}

// application owns the resources that must be released on shutdown.
type application struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	closers []func()
}

func (a *application) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition, so publishers
// drain before the clients they write to are closed.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *application) buildSource(ctx context.Context) (service.Source, error) {
	switch a.cfg.Source.Kind {
	case config.SourcePostgres:
		pool, err := postgres.Connect(ctx, a.cfg.Source.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.onClose(pool.Close)
		return source.NewPostgres(pool, a.cfg.Source.PostgresTable, source.WithOrderBy(a.cfg.Source.PostgresOrderBy...)), nil
	default:
		return source.NewCSV(a.cfg.Source.CSVPath, source.WithComma(a.cfg.Source.Comma())), nil
	}
}

func (a *application) buildNotifier(ctx context.Context) (service.Notifier, error) {
	var group notify.Group
	add := func(name string, sink notify.Sink) {
		pub := notify.NewPublisher(sink,
			notify.WithName(name),
			notify.WithLogger(a.log),
			notify.WithMetrics(a.metrics),
			notify.WithAsyncBuffer(a.cfg.Notify.BufferSize),
			notify.WithCircuitBreaker(a.cfg.Notify.FailureThreshold, a.cfg.Notify.Cooldown),
		)
		group = append(group, pub)
	}

	for _, name := range a.cfg.Notify.Sinks {
		switch name {
		case config.SinkLog:
			add(name, notify.NewLog(a.log))
		case config.SinkRedis:
			client, err := redis.New(ctx, a.cfg.Redis)
			if err != nil {
				return nil, err
			}
			a.onClose(func() { _ = client.Close() })
			sink, err := notify.NewRedis(client,
				notify.WithSetKey(a.cfg.Redis.SetKey),
				notify.WithChannel(a.cfg.Redis.Channel),
			)
			if err != nil {
				return nil, err
			}
			add(name, sink)
		case config.SinkKafka:
			client, err := a.kafkaClient(ctx)
			if err != nil {
				return nil, err
			}
			sink, err := notify.NewKafka(client, a.cfg.Kafka.Topic)
			if err != nil {
				return nil, err
			}
			add(name, sink)
		}
	}
	if len(group) == 0 {
		return nil, nil
	}
	a.onClose(group.Close)
	return group, nil
}

func (a *application) kafkaClient(ctx context.Context) (*kgo.Client, error) {
	client, err := kafka.New(ctx, a.cfg.Kafka, a.log)
	if err != nil {
		return nil, err
	}
	a.onClose(client.Close)
	if err := notify.EnsureTopic(ctx, client, a.cfg.Kafka.Topic, a.cfg.Kafka.Partitions, a.cfg.Kafka.Replicas); err != nil {
		return nil, err
	}
	return client, nil
}
