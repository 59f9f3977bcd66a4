// Package config loads server configuration from an optional YAML file and
// environment variables. Environment variables win over the file, and the
// file wins over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	liststr "userdir/pkg/platform/strings"
)

// Source kinds.
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Notification sinks.
const (
	SinkLog   = "log"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

type Config struct {
	Server  Server      `yaml:"server"`
	Logging Logging     `yaml:"logging"`
	Source  Source      `yaml:"source"`
	Notify  Notify      `yaml:"notify"`
	Redis   RedisConfig `yaml:"redis"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	AdminToken      string        `yaml:"admin_token"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// WarmUp loads the directory at startup instead of on the first request.
	WarmUp bool `yaml:"warm_up"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Source struct {
	Kind            string   `yaml:"kind"`
	CSVPath         string   `yaml:"csv_path"`
	CSVComma        string   `yaml:"csv_comma"`
	PostgresDSN     string   `yaml:"postgres_dsn"`
	PostgresTable   string   `yaml:"postgres_table"`
	// PostgresOrderBy lists the columns rows are streamed by; empty means id.
	PostgresOrderBy []string `yaml:"postgres_order_by"`
}

type Notify struct {
	Sinks            []string      `yaml:"sinks"`
	BufferSize       int           `yaml:"buffer_size"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SetKey       string        `yaml:"set_key"`
	Channel      string        `yaml:"channel"`
}

type KafkaConfig struct {
	Brokers    []string `yaml:"brokers"`
	Topic      string   `yaml:"topic"`
	ClientID   string   `yaml:"client_id"`
	Partitions int32    `yaml:"partitions"`
	Replicas   int16    `yaml:"replicas"`
}

// Default returns a config that serves ./users.csv on :8080 and logs deletes.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Logging: Logging{Level: "info", Format: "json"},
		Source: Source{
			Kind:          SourceCSV,
			CSVPath:       "users.csv",
			CSVComma:      ",",
			PostgresTable: "users",
		},
		Notify: Notify{
			Sinks:            []string{SinkLog},
			BufferSize:       1024,
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			SetKey:       "userdir:deleted",
			Channel:      "userdir.users.deleted",
		},
		Kafka: KafkaConfig{
			Topic:      "userdir.users.deleted",
			ClientID:   "userdir",
			Partitions: 3,
			Replicas:   1,
		},
	}
}

// FromEnv loads the file named by USERDIR_CONFIG, if any, then applies the
// environment.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("USERDIR_CONFIG"))
}

// Load reads path (skipped when empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := applyEnvironmentOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.Notify.Sinks = liststr.CleanList(cfg.Notify.Sinks, true)
	cfg.Kafka.Brokers = liststr.CleanList(cfg.Kafka.Brokers, false)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func applyEnvironmentOverrides(cfg *Config) error {
	setString(&cfg.Server.Addr, "USERDIR_ADDR")
	setString(&cfg.Server.AdminToken, "USERDIR_ADMIN_TOKEN")
	setString(&cfg.Logging.Level, "USERDIR_LOG_LEVEL")
	setString(&cfg.Logging.Format, "USERDIR_LOG_FORMAT")
	setString(&cfg.Source.Kind, "USERDIR_SOURCE")
	setString(&cfg.Source.CSVPath, "USERDIR_CSV_PATH")
	setString(&cfg.Source.PostgresDSN, "USERDIR_POSTGRES_DSN")
	setString(&cfg.Source.PostgresTable, "USERDIR_POSTGRES_TABLE")
	setList(&cfg.Source.PostgresOrderBy, "USERDIR_POSTGRES_ORDER_BY", false)
	setList(&cfg.Notify.Sinks, "USERDIR_NOTIFY", true)
	setString(&cfg.Redis.URL, "REDIS_URL")
	setList(&cfg.Kafka.Brokers, "KAFKA_BROKERS", false)
	setString(&cfg.Kafka.Topic, "KAFKA_TOPIC")

	if v := os.Getenv("USERDIR_WARM_UP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("USERDIR_WARM_UP: %w", err)
		}
		cfg.Server.WarmUp = b
	}
	if v := os.Getenv("USERDIR_NOTIFY_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("USERDIR_NOTIFY_BUFFER: %w", err)
		}
		cfg.Notify.BufferSize = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string, fold bool) {
	if v := os.Getenv(key); v != "" {
		*dst = liststr.SplitList(v, fold)
	}
}

// HasSink reports whether name is among the configured notification sinks.
func (c *Config) HasSink(name string) bool {
	return slices.Contains(c.Notify.Sinks, name)
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, errors.New("server.request_timeout must be positive"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.CSVPath == "" {
			errs = append(errs, errors.New("source.csv_path is required for the csv source"))
		}
		if len([]rune(c.Source.CSVComma)) != 1 {
			errs = append(errs, errors.New("source.csv_comma must be a single character"))
		}
	case SourcePostgres:
		if c.Source.PostgresDSN == "" {
			errs = append(errs, errors.New("source.postgres_dsn is required for the postgres source"))
		}
		if c.Source.PostgresTable == "" {
			errs = append(errs, errors.New("source.postgres_table is required for the postgres source"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind %q is not one of %q, %q", c.Source.Kind, SourceCSV, SourcePostgres))
	}
	for _, sink := range c.Notify.Sinks {
		switch sink {
		case SinkLog:
		case SinkRedis:
			if c.Redis.URL == "" {
				errs = append(errs, errors.New("redis.url is required for the redis sink"))
			}
		case SinkKafka:
			if len(c.Kafka.Brokers) == 0 {
				errs = append(errs, errors.New("kafka.brokers is required for the kafka sink"))
			}
			if c.Kafka.Topic == "" {
				errs = append(errs, errors.New("kafka.topic is required for the kafka sink"))
			}
		default:
			errs = append(errs, fmt.Errorf("notify sink %q is unknown", sink))
		}
	}
	if c.Notify.BufferSize < 0 {
		errs = append(errs, errors.New("notify.buffer_size must not be negative"))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q is not json or text", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// Comma returns the configured CSV delimiter.
func (s Source) Comma() rune {
	r := []rune(s.CSVComma)
	if len(r) != 1 {
		return ','
	}
	return r[0]
}
