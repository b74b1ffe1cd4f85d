package postgresengine

import (
	"time"

	"github.com/openshelf/library-catalog/catalog"
)

// Logger interface for SQL query logging, operational messages, warnings, and error reporting.
// It is intentionally dependency-free; log/slog, zap (through an adapter) and
// any comparable structured logger can satisfy it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsCollector interface for collecting CatalogStore performance and operational metrics.
// This interface follows the same dependency-free pattern as Logger, allowing users to
// integrate with any metrics backend (Prometheus, OpenTelemetry, StatsD, etc.)
// by implementing this interface.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Option defines a functional option for configuring CatalogStore.
type Option func(*CatalogStore) error

// WithBooksTableName sets the books table name for the CatalogStore.
func WithBooksTableName(tableName string) Option {
	return func(cs *CatalogStore) error {
		if tableName == "" {
			return catalog.ErrEmptyBooksTableName
		}

		cs.booksTableName = tableName

		return nil
	}
}

// WithIssuesTableName sets the issue ledger table name for the CatalogStore.
func WithIssuesTableName(tableName string) Option {
	return func(cs *CatalogStore) error {
		if tableName == "" {
			return catalog.ErrEmptyIssuesTableName
		}

		cs.issuesTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the CatalogStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Row counts, durations, issue conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(cs *CatalogStore) error {
		cs.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the CatalogStore.
// The collector will receive operation durations, issue conflict counts,
// and ledger inconsistency counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(cs *CatalogStore) error {
		cs.metricsCollector = collector
		return nil
	}
}
