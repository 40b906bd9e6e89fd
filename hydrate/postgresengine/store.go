package postgresengine

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/entityevent/hydrate-go/hydrate"
	"github.com/entityevent/hydrate-go/hydrate/postgresengine/internal/adapters"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyRendererTableName = errors.New("empty renderer table name supplied")
var ErrEmptyRecordTableBinding = errors.New("empty record type or table name supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingRecordsFailed = errors.New("querying records failed")
var ErrQueryingRenderersFailed = errors.New("querying context renderers failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrDecodingJSONBFailed = errors.New("decoding jsonb column failed")

const (
	defaultRendererTableName = "context_renderers"
	dialectPostgres          = "postgres"
	colID                    = "id"
	colPayload               = "payload"
	colRelations             = "relations"
	colSource                = "source"
	colRenderGroup           = "render_group"
	colHints                 = "hints"
	logMsgBuildQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgDecodeFailed       = "failed to decode jsonb column"
	logMsgRecordsFetched     = "records fetched"
	logMsgRenderersFetched   = "context renderers fetched"
	logMsgSQLExecuted        = "executed sql for: "
	logMsgOperation          = "store operation: "
	logAttrError             = "error"
	logAttrQuery             = "query"
	logAttrTypeName          = "type_name"
	logAttrRecordCount       = "record_count"
	logAttrRendererCount     = "renderer_count"
	logAttrDurationMS        = "duration_ms"
	logActionRecords         = "records"
	logActionRenderers       = "renderers"
)

// Store implements both hydrate.RecordStore and hydrate.HintSource against
// Postgres. It leverages a database adapter and supports customizable
// logging, metrics and table configuration.
type Store struct {
	db                adapters.DBAdapter
	rendererTableName string
	recordTables      map[hydrate.TypeNameString]string
	logger            hydrate.Logger
	contextualLogger  hydrate.ContextualLogger
	metricsCollector  hydrate.MetricsCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolWithReplica creates a new Store that reads from the
// given replica pool. The hydration stores never write, so all traffic goes
// to the replica.
func NewStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (Store, error) {
	if db == nil || replica == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (Store, error) {
	if db == nil {
		return Store{}, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (Store, error) {
	store := Store{
		db:                db,
		rendererTableName: defaultRendererTableName,
		recordTables:      make(map[hydrate.TypeNameString]string),
	}

	for _, option := range options {
		if err := option(&store); err != nil {
			return Store{}, err
		}
	}

	return store, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// decodeJSONB decodes a jsonb column into a map, preserving number fidelity.
func decodeJSONB(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	decoder := jsonAPI.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var decoded map[string]any
	if decodeErr := decoder.Decode(&decoded); decodeErr != nil {
		return nil, errors.Join(ErrDecodingJSONBFailed, decodeErr)
	}

	return decoded, nil
}

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (s Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	s.logDebug(ctx, logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
}

// logOperation logs operational information at info level if a logger is configured.
func (s Store) logOperation(ctx context.Context, action string, args ...any) {
	s.logInfo(ctx, logMsgOperation+action, args...)
}

// The log helpers prefer the contextual logger when both are configured.

func (s Store) logDebug(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s Store) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s Store) logWarn(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s Store) logError(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

func (s Store) recordQueryDuration(metric string, duration time.Duration, labels map[string]string) {
	if s.metricsCollector != nil {
		s.metricsCollector.RecordDuration(metric, duration, labels)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

var _ hydrate.RecordStore = Store{}
var _ hydrate.HintSource = Store{}
