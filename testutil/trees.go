package testutil

import (
	"github.com/davecgh/go-spew/spew"

	"github.com/entityevent/hydrate-go/hydrate"
)

// S builds a scalar leaf.
func S(val any) hydrate.Scalar {
	return hydrate.Scalar{Val: val}
}

// L builds a list node.
func L(elements ...hydrate.Value) hydrate.List {
	return hydrate.List(elements)
}

// M builds a map node from alternating key/value pairs.
// Panics on an odd number of arguments or a non-string key; this is test
// wiring, failing loudly beats failing subtly.
func M(pairs ...any) hydrate.Map {
	if len(pairs)%2 != 0 {
		panic("testutil.M requires key/value pairs")
	}

	tree := make(hydrate.Map, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("testutil.M keys must be strings")
		}

		value, isValue := pairs[i+1].(hydrate.Value)
		if !isValue {
			value = hydrate.Scalar{Val: pairs[i+1]}
		}

		tree[key] = value
	}

	return tree
}

var treeDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpTree renders a context tree for failure messages, with map keys sorted
// and pointer noise suppressed so two dumps of equal trees compare equal.
func DumpTree(tree hydrate.Value) string {
	return treeDumper.Sdump(tree)
}
