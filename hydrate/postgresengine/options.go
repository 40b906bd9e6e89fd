package postgresengine

import (
	"github.com/entityevent/hydrate-go/hydrate"
)

// Option defines a configuration function for the Store.
type Option func(*Store) error

// WithRendererTableName overrides the default table the hint declarations
// are read from.
func WithRendererTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return ErrEmptyRendererTableName
		}

		s.rendererTableName = tableName

		return nil
	}
}

// WithRecordTable binds a record type to the table its rows live in. Only
// bound types can be fetched; a hinted type without a binding fails the load
// with hydrate.ErrUnknownRecordType.
func WithRecordTable(typeName hydrate.TypeNameString, tableName string) Option {
	return func(s *Store) error {
		if typeName == "" || tableName == "" {
			return ErrEmptyRecordTableBinding
		}

		s.recordTables[typeName] = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
func WithLogger(logger hydrate.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store. When both
// loggers are configured the contextual one is preferred.
func WithContextualLogger(logger hydrate.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store. It receives the
// duration of every query the store issues.
func WithMetrics(collector hydrate.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}
