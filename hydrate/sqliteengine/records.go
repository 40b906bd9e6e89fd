package sqliteengine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/entityevent/hydrate-go/hydrate"
)

// StoredRecord is one row materialized from a record table.
type StoredRecord struct {
	ID        hydrate.IdentifierInt64 `json:"id"`
	Payload   map[string]any          `json:"payload"`
	Relations map[string]any          `json:"relations"`
}

// RecordID implements hydrate.Record.
func (r StoredRecord) RecordID() hydrate.IdentifierInt64 {
	return r.ID
}

// FetchByIDs implements hydrate.RecordStore. The full relations column is
// read and the eager-load restriction from the spec is applied after
// decoding, SQLite has no server-side json projection worth using.
func (s *Store) FetchByIDs(
	ctx context.Context,
	typeName hydrate.TypeNameString,
	ids []hydrate.IdentifierInt64,
	spec hydrate.QuerySpec,
) ([]hydrate.Record, error) {

	table, bound := s.recordTables[typeName]
	if !bound {
		return nil, errors.Join(hydrate.ErrUnknownRecordType, fmt.Errorf("no table bound for type %q", typeName))
	}

	query := goqu.Dialect(dialectSQLite).
		From(table).
		Select(goqu.C(colID), goqu.C(colPayload), goqu.C(colRelations)).
		Where(goqu.C(colID).In(ids)).
		Order(goqu.C(colID).Asc())

	sqlQuery, _, err := query.ToSQL()
	if err != nil {
		s.logError(logMsgBuildQueryFailed, logAttrError, err.Error(), logAttrTypeName, string(typeName))
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	start := time.Now()

	rows, err := s.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, err.Error(), logAttrTypeName, string(typeName))
		return nil, errors.Join(ErrQueryingRecordsFailed, err)
	}
	defer s.closeRows(rows)

	records := make([]hydrate.Record, 0, len(ids))

	for rows.Next() {
		var (
			id        int64
			payload   []byte
			relations []byte
		)

		if scanErr := rows.Scan(&id, &payload, &relations); scanErr != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		decodedPayload, decodeErr := decodeJSON(payload)
		if decodeErr != nil {
			return nil, decodeErr
		}

		decodedRelations, decodeErr := decodeJSON(relations)
		if decodeErr != nil {
			return nil, decodeErr
		}

		records = append(records, StoredRecord{
			ID:        id,
			Payload:   decodedPayload,
			Relations: restrictRelations(decodedRelations, spec),
		})
	}

	s.logQueryWithDuration(sqlQuery, logActionRecords, time.Since(start))
	s.logDebug(logMsgRecordsFetched, logAttrTypeName, string(typeName), logAttrRecordCount, len(records))

	return records, nil
}

// restrictRelations keeps only the relation entries named by the spec's
// eager-load sets, mirroring what the Postgres engine projects in SQL.
func restrictRelations(relations map[string]any, spec hydrate.QuerySpec) map[string]any {
	restricted := make(map[string]any)

	for _, key := range spec.DirectEagerLoad {
		if value, exists := relations[key]; exists {
			restricted[key] = value
		}
	}

	for _, key := range spec.TransitiveEagerLoad {
		if value, exists := relations[key]; exists {
			restricted[key] = value
		}
	}

	return restricted
}
