package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/entityevent/hydrate-go/hydrate"
)

// storedHintSpec is the jsonb shape of one hint entry in the renderer table.
type storedHintSpec struct {
	Type       hydrate.TypeNameString `json:"type"`
	Direct     []string               `json:"direct"`
	Transitive []string               `json:"transitive"`
}

// FetchDeclarations implements hydrate.HintSource. It issues one SELECT for
// all requested sources and render groups combined; filtering down to the
// requested pairs is the query's job, not the caller's.
func (s Store) FetchDeclarations(
	ctx context.Context,
	sources []hydrate.SourceString,
	renderGroups []hydrate.RenderGroupString,
) ([]hydrate.HintDeclaration, error) {

	sqlQuery, err := buildDeclarationsQuery(s.rendererTableName, sources, renderGroups)
	if err != nil {
		s.logError(ctx, logMsgBuildQueryFailed, logAttrError, err.Error())
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	start := time.Now()

	rows, err := s.db.Query(ctx, sqlQuery)
	if err != nil {
		s.logError(ctx, logMsgDBQueryFailed, logAttrError, err.Error())
		return nil, errors.Join(ErrQueryingRenderersFailed, err)
	}
	defer s.closeRows(ctx, rows)

	var declarations []hydrate.HintDeclaration

	for rows.Next() {
		var (
			source      string
			renderGroup string
			hintsJSON   []byte
		)

		if scanErr := rows.Scan(&source, &renderGroup, &hintsJSON); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		hints, decodeErr := decodeHints(hintsJSON)
		if decodeErr != nil {
			s.logError(ctx, logMsgDecodeFailed, logAttrError, decodeErr.Error())
			return nil, decodeErr
		}

		declarations = append(declarations, hydrate.HintDeclaration{
			Source:      source,
			RenderGroup: renderGroup,
			Hints:       hints,
		})
	}

	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, logActionRenderers, duration)
	s.recordQueryDuration(metricQueryDuration, duration, map[string]string{metricLabelAction: logActionRenderers})
	s.logOperation(ctx, logActionRenderers, logAttrRendererCount, len(declarations))

	return declarations, nil
}

func buildDeclarationsQuery(
	table string,
	sources []hydrate.SourceString,
	renderGroups []hydrate.RenderGroupString,
) (string, error) {

	query := goqu.Dialect(dialectPostgres).
		From(table).
		Select(goqu.C(colSource), goqu.C(colRenderGroup), goqu.C(colHints)).
		Where(
			goqu.C(colSource).In(sources),
			goqu.C(colRenderGroup).In(renderGroups)).
		Order(goqu.C(colSource).Asc(), goqu.C(colRenderGroup).Asc())

	sqlQuery, _, err := query.ToSQL()
	if err != nil {
		return "", err
	}

	return sqlQuery, nil
}

func decodeHints(data []byte) (map[hydrate.ContextKeyString]hydrate.HintSpec, error) {
	decoded := make(map[string]storedHintSpec)

	if len(data) > 0 {
		if decodeErr := jsonAPI.Unmarshal(data, &decoded); decodeErr != nil {
			return nil, errors.Join(ErrDecodingJSONBFailed, decodeErr)
		}
	}

	hints := make(map[hydrate.ContextKeyString]hydrate.HintSpec, len(decoded))
	for contextKey, spec := range decoded {
		hints[contextKey] = hydrate.HintSpec{
			TypeName:            spec.Type,
			DirectEagerLoad:     spec.Direct,
			TransitiveEagerLoad: spec.Transitive,
		}
	}

	return hints, nil
}
