package sqliteengine

import (
	"bytes"
	"database/sql"
	_ "embed"
	"errors"
	"time"

	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3" // database driver

	"github.com/entityevent/hydrate-go/hydrate"
)

//go:embed schema.sql
var schemaSQL string

var ErrOpeningDatabaseFailed = errors.New("opening sqlite database failed")
var ErrApplyingSchemaFailed = errors.New("applying sqlite schema failed")
var ErrEmptyRecordTableBinding = errors.New("empty record type or table name supplied")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingRecordsFailed = errors.New("querying records failed")
var ErrQueryingRenderersFailed = errors.New("querying context renderers failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrDecodingJSONFailed = errors.New("decoding json column failed")
var ErrSeedingFailed = errors.New("seeding sqlite database failed")

const (
	rendererTableName      = "context_renderers"
	dialectSQLite          = "sqlite3"
	colID                  = "id"
	colPayload             = "payload"
	colRelations           = "relations"
	colSource              = "source"
	colRenderGroup         = "render_group"
	colHints               = "hints"
	logMsgBuildQueryFailed = "failed to build select query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgRecordsFetched   = "records fetched"
	logMsgSQLExecuted      = "executed sql for: "
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrTypeName        = "type_name"
	logAttrRecordCount     = "record_count"
	logAttrDurationMS      = "duration_ms"
	logActionRecords       = "records"
	logActionRenderers     = "renderers"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// Store implements hydrate.RecordStore and hydrate.HintSource against a
// SQLite database file. It owns the database handle.
type Store struct {
	db           *sql.DB
	recordTables map[hydrate.TypeNameString]string
	logger       hydrate.Logger
}

// Open creates or opens the SQLite database at path, applies the pragmas and
// the schema, and returns a ready Store.
//
// SQLite supports one writer at a time, so the connection pool is capped at
// a single connection. WAL mode keeps reads possible during seeding.
func Open(path string, options ...Option) (*Store, error) {
	db, err := sql.Open(dialectSQLite, path)
	if err != nil {
		return nil, errors.Join(ErrOpeningDatabaseFailed, err)
	}

	if pingErr := db.Ping(); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrOpeningDatabaseFailed, pingErr)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if pragmaErr := applyPragmas(db); pragmaErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrApplyingSchemaFailed, pragmaErr)
	}

	if _, schemaErr := db.Exec(schemaSQL); schemaErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrApplyingSchemaFailed, schemaErr)
	}

	store := &Store{
		db:           db,
		recordTables: make(map[hydrate.TypeNameString]string),
	}

	for _, option := range options {
		if optionErr := option(store); optionErr != nil {
			_ = db.Close()
			return nil, optionErr
		}
	}

	return store, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) closeRows(rows *sql.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// decodeJSON decodes a json text column into a map, preserving number fidelity.
func decodeJSON(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}

	decoder := jsonAPI.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var decoded map[string]any
	if decodeErr := decoder.Decode(&decoded); decodeErr != nil {
		return nil, errors.Join(ErrDecodingJSONFailed, decodeErr)
	}

	return decoded, nil
}

func (s *Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	s.logDebug(logMsgSQLExecuted+action, logAttrDurationMS, duration.Milliseconds(), logAttrQuery, sqlQuery)
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Store) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

// Option defines a configuration function for the Store.
type Option func(*Store) error

// WithRecordTable binds a record type to the table its rows live in. Only
// bound types can be fetched or seeded.
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

var _ hydrate.RecordStore = (*Store)(nil)
var _ hydrate.HintSource = (*Store)(nil)
