package hydrate

import (
	"iter"
)

// FindKey walks a context tree and yields every occurrence of key at any
// depth as an (enclosing Map, value) pair.
//
// The walk recurses into a matched value as well, so a container appearing
// as a matched value is still scanned for further occurrences of the same
// key beneath it. There is no short-circuit on first match and no skipping
// of subtrees under a match.
//
// The sequence is lazy (consumers may stop early) and restartable, it is a
// pure function of the tree and the key.
func FindKey(tree Value, key ContextKeyString) iter.Seq2[Map, Value] {
	return func(yield func(Map, Value) bool) {
		findKey(tree, key, yield)
	}
}

func findKey(tree Value, key ContextKeyString, yield func(Map, Value) bool) bool {
	switch node := tree.(type) {
	case List:
		for _, element := range node {
			if !findKey(element, key, yield) {
				return false
			}
		}

	case Map:
		for childKey, child := range node {
			if childKey == key {
				if !yield(node, child) {
					return false
				}
			}

			if !findKey(child, key, yield) {
				return false
			}
		}
	}

	return true
}
