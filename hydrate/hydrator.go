package hydrate

// reference is a located occurrence captured during the scan phase: the
// enclosing map, the matched key, and the value seen at scan time. Writing
// back through captured references keeps hydration independent of the
// mutations it performs itself.
type reference struct {
	container Map
	key       ContextKeyString
	value     Value
}

// ApplyRecords re-walks each event's context exactly as CollectIdentifiers
// does and substitutes fetched records for raw identifiers, in place.
//
// A matched list is rewritten element by element, preserving length and
// order; a matched scalar is replaced wholesale. A lookup miss writes the
// explicit null marker, never an error. Elements that were never
// integer-like are overwritten with the null marker as well, mirroring the
// blanket overwrite of the system this engine replaces. A matched value
// that is itself a map is left untouched (occurrences beneath it have their
// own references).
//
// The fetched maps are only read, so hydration of distinct events is safe
// to run concurrently should a caller want to shard the work.
func ApplyRecords(events Events, merged MergedHints, fetched FetchedRecords) {
	for _, event := range events {
		forSource, exists := merged[event.Source]
		if !exists {
			continue
		}

		for contextKey, hint := range forSource {
			recordsByID := fetched[hint.TypeName]

			for _, ref := range captureReferences(event.Context, contextKey) {
				writeBack(ref, recordsByID)
			}
		}
	}
}

// captureReferences materializes the scanner's lazy sequence before any
// mutation happens, so the write-back below never walks a tree it is
// modifying.
func captureReferences(tree Value, contextKey ContextKeyString) []reference {
	refs := make([]reference, 0)

	for container, value := range FindKey(tree, contextKey) {
		refs = append(refs, reference{container: container, key: contextKey, value: value})
	}

	return refs
}

func writeBack(ref reference, recordsByID map[IdentifierInt64]Record) {
	switch matched := ref.value.(type) {
	case List:
		for i, element := range matched {
			matched[i] = resolveElement(element, recordsByID)
		}

	case Scalar:
		ref.container[ref.key] = resolveElement(matched, recordsByID)
	}
}

// resolveElement looks the element up among the fetched records. Misses and
// non-identifier elements both resolve to the null marker.
func resolveElement(element Value, recordsByID map[IdentifierInt64]Record) Value {
	id, ok := AsIdentifier(element)
	if !ok {
		return Null()
	}

	record, found := recordsByID[id]
	if !found {
		return Null()
	}

	return Scalar{Val: record}
}
