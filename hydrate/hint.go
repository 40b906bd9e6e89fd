package hydrate

import (
	"slices"
)

// HintSpec declares that one context key holds identifiers of one record
// type, plus the relations the backend should eagerly include when fetching
// that type for this key.
type HintSpec struct {
	TypeName            TypeNameString
	DirectEagerLoad     []string
	TransitiveEagerLoad []string
}

// HintDeclaration is the contribution of one renderer: for one (source,
// render group) pair, a map of context keys to hint specs.
//
// Declarations are fetched once per load call and treated as an immutable
// snapshot for its duration.
type HintDeclaration struct {
	Source      SourceString
	RenderGroup RenderGroupString
	Hints       map[ContextKeyString]HintSpec
}

// MergedHint is the union of all hint declarations that apply to one
// (source, context key) pair. The type name is the last-processed
// declaration's type; the eager-load sets are unions across contributors,
// kept sorted and unique.
type MergedHint struct {
	TypeName            TypeNameString
	DirectEagerLoad     []string
	TransitiveEagerLoad []string
}

// MergedHints is an alias type for merged hints grouped by source and context key.
type MergedHints = map[SourceString]map[ContextKeyString]*MergedHint

// MergeDeclarations merges per-renderer hint declarations into one canonical
// hint per (source, context key).
//
// Multiple renderers may hint the same key for the same source depending on
// the render target; merging combines their eager-load sets. Declarations
// are not expected to disagree on the type name, if they do the
// last-processed one wins silently. Declarations without hints are no-ops.
func MergeDeclarations(declarations []HintDeclaration) MergedHints {
	merged := make(MergedHints)

	for _, declaration := range declarations {
		forSource, exists := merged[declaration.Source]
		if !exists && len(declaration.Hints) > 0 {
			forSource = make(map[ContextKeyString]*MergedHint)
			merged[declaration.Source] = forSource
		}

		for contextKey, spec := range declaration.Hints {
			hint, hintExists := forSource[contextKey]
			if !hintExists {
				hint = &MergedHint{}
				forSource[contextKey] = hint
			}

			hint.TypeName = spec.TypeName
			hint.DirectEagerLoad = unionSorted(hint.DirectEagerLoad, spec.DirectEagerLoad)
			hint.TransitiveEagerLoad = unionSorted(hint.TransitiveEagerLoad, spec.TransitiveEagerLoad)
		}
	}

	return merged
}

// unionSorted merges two relation name sets into one sorted, unique slice.
// Empty names are dropped.
func unionSorted(existing []string, additional []string) []string {
	all := append(slices.Clone(existing), additional...)
	all = slices.DeleteFunc(
		all,
		func(relation string) bool {
			return relation == ""
		})
	slices.Sort(all)
	all = slices.Compact(all)
	all = slices.Clip(all)

	return all
}
