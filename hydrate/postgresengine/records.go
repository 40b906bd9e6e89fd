package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/entityevent/hydrate-go/hydrate"
)

const (
	metricQueryDuration = "hydrate_store_query_duration_seconds"
	metricLabelAction   = "action"
)

// StoredRecord is one row materialized from a record table: the id, the
// decoded payload and the relation entries selected by the query spec.
type StoredRecord struct {
	ID        hydrate.IdentifierInt64 `json:"id"`
	Payload   map[string]any          `json:"payload"`
	Relations map[string]any          `json:"relations"`
}

// RecordID implements hydrate.Record.
func (r StoredRecord) RecordID() hydrate.IdentifierInt64 {
	return r.ID
}

// FetchByIDs implements hydrate.RecordStore. It issues exactly one SELECT
// against the table bound to typeName, restricted to the given ids, with the
// relations column projected down to the entries the spec asks for.
func (s Store) FetchByIDs(
	ctx context.Context,
	typeName hydrate.TypeNameString,
	ids []hydrate.IdentifierInt64,
	spec hydrate.QuerySpec,
) ([]hydrate.Record, error) {

	table, bound := s.recordTables[typeName]
	if !bound {
		return nil, errors.Join(hydrate.ErrUnknownRecordType, fmt.Errorf("no table bound for type %q", typeName))
	}

	sqlQuery, err := buildRecordsQuery(table, ids, spec)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, logAttrError, err.Error(), logAttrTypeName, string(typeName))
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	start := time.Now()

	rows, err := s.db.Query(ctx, sqlQuery)
	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, logAttrError, err.Error(), logAttrTypeName, string(typeName))
		return nil, errors.Join(ErrQueryingRecordsFailed, err)
	}
	defer s.closeRows(ctx, rows)

	records := make([]hydrate.Record, 0, len(ids))

	for rows.Next() {
		var (
			id        int64
			payload   []byte
			relations []byte
		)

		if scanErr := rows.Scan(&id, &payload, &relations); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error(), logAttrTypeName, string(typeName))
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		decodedPayload, decodeErr := decodeJSONB(payload)
		if decodeErr != nil {
			s.logError(ctx, logMsgDecodeFailed, logAttrError, decodeErr.Error(), logAttrTypeName, string(typeName))
			return nil, decodeErr
		}

		decodedRelations, decodeErr := decodeJSONB(relations)
		if decodeErr != nil {
			s.logError(ctx, logMsgDecodeFailed, logAttrError, decodeErr.Error(), logAttrTypeName, string(typeName))
			return nil, decodeErr
		}

		records = append(records, StoredRecord{ID: id, Payload: decodedPayload, Relations: decodedRelations})
	}

	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionRecords, duration)
	s.recordQueryDuration(metricQueryDuration, duration, map[string]string{metricLabelAction: logActionRecords})
	s.logOperation(ctx, logActionRecords, logAttrTypeName, string(typeName), logAttrRecordCount, len(records))

	return records, nil
}

func buildRecordsQuery(table string, ids []hydrate.IdentifierInt64, spec hydrate.QuerySpec) (string, error) {
	query := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.C(colID), goqu.C(colPayload), relationsProjection(spec)).
		Where(goqu.C(colID).In(ids)).
		Order(goqu.C(colID).Asc())

	sqlQuery, _, err := query.ToSQL()
	if err != nil {
		return "", err
	}

	return sqlQuery, nil
}

// relationsProjection narrows the relations jsonb down to the keys in the
// spec's eager-load sets. With nothing to eager-load the projection is an
// empty object, the full column never travels.
func relationsProjection(spec hydrate.QuerySpec) exp.AliasedExpression {
	keys := make([]string, 0, len(spec.DirectEagerLoad)+len(spec.TransitiveEagerLoad))
	keys = append(keys, spec.DirectEagerLoad...)
	keys = append(keys, spec.TransitiveEagerLoad...)

	if len(keys) == 0 {
		return goqu.L("'{}'::jsonb").As(colRelations)
	}

	quoted := make([]string, 0, len(keys))
	for _, key := range keys {
		quoted = append(quoted, pq.QuoteLiteral(key))
	}

	projection := "(SELECT COALESCE(jsonb_object_agg(key, value), '{}'::jsonb)" +
		" FROM jsonb_each(" + colRelations + ") WHERE key IN (" + strings.Join(quoted, ", ") + "))"

	return goqu.L(projection).As(colRelations)
}
