package sqliteengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/entityevent/hydrate-go/hydrate"
)

// storedHintSpec is the JSON shape of one hint entry in the renderer table.
// It matches the Postgres engine so seeds are portable between the two.
type storedHintSpec struct {
	Type       hydrate.TypeNameString `json:"type"`
	Direct     []string               `json:"direct"`
	Transitive []string               `json:"transitive"`
}

// FetchDeclarations implements hydrate.HintSource.
func (s *Store) FetchDeclarations(
	ctx context.Context,
	sources []hydrate.SourceString,
	renderGroups []hydrate.RenderGroupString,
) ([]hydrate.HintDeclaration, error) {

	query := goqu.Dialect(dialectSQLite).
		From(rendererTableName).
		Select(goqu.C(colSource), goqu.C(colRenderGroup), goqu.C(colHints)).
		Where(
			goqu.C(colSource).In(sources),
			goqu.C(colRenderGroup).In(renderGroups)).
		Order(goqu.C(colSource).Asc(), goqu.C(colRenderGroup).Asc())

	sqlQuery, _, err := query.ToSQL()
	if err != nil {
		s.logError(logMsgBuildQueryFailed, logAttrError, err.Error())
		return nil, errors.Join(ErrBuildingQueryFailed, err)
	}

	start := time.Now()

	rows, err := s.db.QueryContext(ctx, sqlQuery)
	if err != nil {
		s.logError(logMsgDBQueryFailed, logAttrError, err.Error())
		return nil, errors.Join(ErrQueryingRenderersFailed, err)
	}
	defer s.closeRows(rows)

	var declarations []hydrate.HintDeclaration

	for rows.Next() {
		var (
			source      string
			renderGroup string
			hintsJSON   []byte
		)

		if scanErr := rows.Scan(&source, &renderGroup, &hintsJSON); scanErr != nil {
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		decoded := make(map[string]storedHintSpec)
		if len(hintsJSON) > 0 {
			if decodeErr := jsonAPI.Unmarshal(hintsJSON, &decoded); decodeErr != nil {
				return nil, errors.Join(ErrDecodingJSONFailed, decodeErr)
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

		declarations = append(declarations, hydrate.HintDeclaration{
			Source:      source,
			RenderGroup: renderGroup,
			Hints:       hints,
		})
	}

	s.logQueryWithDuration(sqlQuery, logActionRenderers, time.Since(start))

	return declarations, nil
}
