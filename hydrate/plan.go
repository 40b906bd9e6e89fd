package hydrate

// QuerySpec is the fetch specification for one record type: the union of the
// eager-load sets of every (source, context key) hint that references the
// type. It is a performance hint for the backend, which may ignore it.
type QuerySpec struct {
	TypeName            TypeNameString
	DirectEagerLoad     []string
	TransitiveEagerLoad []string
}

// PlanQueries turns merged hints into exactly one QuerySpec per record type.
//
// A type referenced by several context keys, or by several sources, still
// gets a single spec so the batch fetcher never issues more than one call
// per type.
func PlanQueries(merged MergedHints) map[TypeNameString]QuerySpec {
	specs := make(map[TypeNameString]QuerySpec)

	for _, forSource := range merged {
		for _, hint := range forSource {
			spec := specs[hint.TypeName]
			spec.TypeName = hint.TypeName
			spec.DirectEagerLoad = unionSorted(spec.DirectEagerLoad, hint.DirectEagerLoad)
			spec.TransitiveEagerLoad = unionSorted(spec.TransitiveEagerLoad, hint.TransitiveEagerLoad)
			specs[hint.TypeName] = spec
		}
	}

	return specs
}
