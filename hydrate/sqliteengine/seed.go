package sqliteengine

import (
	"context"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/entityevent/hydrate-go/hydrate"
)

// Seeding helpers for populating a fresh database, used by the demo command
// and the tests. They insert plainly, re-seeding an existing row is a
// constraint violation.

// SeedRecord inserts one record row into the table bound to typeName,
// creating the table first if it does not exist.
func (s *Store) SeedRecord(ctx context.Context, typeName hydrate.TypeNameString, record StoredRecord) error {
	table, bound := s.recordTables[typeName]
	if !bound {
		return errors.Join(hydrate.ErrUnknownRecordType, fmt.Errorf("no table bound for type %q", typeName))
	}

	if err := s.ensureRecordTable(ctx, table); err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	payload, err := jsonAPI.Marshal(record.Payload)
	if err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	relations, err := jsonAPI.Marshal(record.Relations)
	if err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	sqlQuery, _, err := goqu.Dialect(dialectSQLite).
		Insert(table).
		Rows(goqu.Record{
			colID:        record.ID,
			colPayload:   string(payload),
			colRelations: string(relations),
		}).
		ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}

	if _, execErr := s.db.ExecContext(ctx, sqlQuery); execErr != nil {
		return errors.Join(ErrSeedingFailed, execErr)
	}

	return nil
}

// SeedDeclaration inserts one renderer hint declaration.
func (s *Store) SeedDeclaration(ctx context.Context, declaration hydrate.HintDeclaration) error {
	stored := make(map[string]storedHintSpec, len(declaration.Hints))
	for contextKey, spec := range declaration.Hints {
		stored[contextKey] = storedHintSpec{
			Type:       spec.TypeName,
			Direct:     spec.DirectEagerLoad,
			Transitive: spec.TransitiveEagerLoad,
		}
	}

	hints, err := jsonAPI.Marshal(stored)
	if err != nil {
		return errors.Join(ErrSeedingFailed, err)
	}

	sqlQuery, _, err := goqu.Dialect(dialectSQLite).
		Insert(rendererTableName).
		Rows(goqu.Record{
			colSource:      declaration.Source,
			colRenderGroup: declaration.RenderGroup,
			colHints:       string(hints),
		}).
		ToSQL()
	if err != nil {
		return errors.Join(ErrBuildingQueryFailed, err)
	}

	if _, execErr := s.db.ExecContext(ctx, sqlQuery); execErr != nil {
		return errors.Join(ErrSeedingFailed, execErr)
	}

	return nil
}

func (s *Store) ensureRecordTable(ctx context.Context, table string) error {
	statement := fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %q (
			id        INTEGER PRIMARY KEY,
			payload   TEXT NOT NULL DEFAULT '{}',
			relations TEXT NOT NULL DEFAULT '{}'
		)`, table)

	_, err := s.db.ExecContext(ctx, statement)

	return err
}
