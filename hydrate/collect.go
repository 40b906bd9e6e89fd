package hydrate

// CollectIdentifiers walks every event's context with the merged hints for
// its source and returns the set of raw identifiers needed per record type.
//
// Events whose source has no merged hints are skipped entirely. Matched
// scalar values are treated as single-element lists. Elements that are not
// integer-like scalars are silently excluded from this phase (the hydrator
// still overwrites them later, see ApplyRecords).
func CollectIdentifiers(events Events, merged MergedHints) map[TypeNameString]IDSet {
	idsByType := make(map[TypeNameString]IDSet)

	for _, event := range events {
		forSource, exists := merged[event.Source]
		if !exists {
			continue
		}

		for contextKey, hint := range forSource {
			ids, idsExist := idsByType[hint.TypeName]
			if !idsExist {
				ids = make(IDSet)
				idsByType[hint.TypeName] = ids
			}

			for _, value := range FindKey(event.Context, contextKey) {
				for _, element := range asList(value) {
					if id, ok := AsIdentifier(element); ok {
						ids[id] = struct{}{}
					}
				}
			}
		}
	}

	return idsByType
}

// asList normalizes a matched value to a list, wrapping anything that is not
// already one as a single-element list.
func asList(value Value) List {
	if list, ok := value.(List); ok {
		return list
	}

	return List{value}
}
