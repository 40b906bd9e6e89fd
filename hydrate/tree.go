package hydrate

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var ErrInvalidContextJSON = errors.New("context json is not valid")

// Kind discriminates the three shapes a context tree node can take.
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindMap
)

// Value is one node of a context tree: a Scalar leaf, a List or a Map.
//
// Trees are built from these three shapes only, which keeps traversal
// exhaustive and total without runtime type inspection of arbitrary structs.
type Value interface {
	Kind() Kind
}

// Scalar is a leaf node. Val holds the raw value: a string, a number, a bool,
// nil, or - after hydration - an opaque Record. A Scalar with a nil Val is
// the explicit "not found" marker written by the hydrator.
type Scalar struct {
	Val any
}

func (Scalar) Kind() Kind { return KindScalar }

// List is an ordered sequence of child nodes. Hydration replaces elements in
// place and never changes a list's length or order.
type List []Value

func (List) Kind() Kind { return KindList }

// Map holds named child nodes. It is the only container the scanner yields
// references into; hydration writes back through it.
type Map map[string]Value

func (Map) Kind() Kind { return KindMap }

// Null is the explicit marker for an identifier that resolved to no record.
func Null() Scalar {
	return Scalar{}
}

// AsIdentifier reports whether v is an integer-like scalar and returns it as
// an IdentifierInt64. Strings, bools, nil, containers and non-integral
// numbers are not identifiers.
func AsIdentifier(v Value) (IdentifierInt64, bool) {
	scalar, ok := v.(Scalar)
	if !ok {
		return 0, false
	}

	switch val := scalar.Val.(type) {
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return 0, false
		}
		return int64(val), true
	case float32:
		return floatIdentifier(float64(val))
	case float64:
		return floatIdentifier(val)
	case json.Number:
		id, parseErr := strconv.ParseInt(val.String(), 10, 64)
		if parseErr != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

func floatIdentifier(f float64) (IdentifierInt64, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}

	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

// TreeFromJSON decodes a JSON document into a context tree.
//
// Numbers are decoded as json.Number so that large identifiers survive the
// round trip without float precision loss.
func TreeFromJSON(data []byte) (Value, error) {
	if !jsoniter.ConfigFastest.Valid(data) {
		return nil, ErrInvalidContextJSON
	}

	decoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw any
	if decodeErr := decoder.Decode(&raw); decodeErr != nil {
		return nil, errors.Join(ErrInvalidContextJSON, decodeErr)
	}

	return TreeFromAny(raw), nil
}

// TreeFromAny converts a decoded JSON-ish value (maps, slices, scalars) into
// a context tree. Unknown concrete types become Scalar leaves untouched.
func TreeFromAny(raw any) Value {
	switch node := raw.(type) {
	case map[string]any:
		tree := make(Map, len(node))
		for key, child := range node {
			tree[key] = TreeFromAny(child)
		}
		return tree
	case []any:
		tree := make(List, len(node))
		for i, child := range node {
			tree[i] = TreeFromAny(child)
		}
		return tree
	default:
		return Scalar{Val: node}
	}
}

// ToJSON encodes a context tree back into JSON. Hydrated records are
// marshaled like any other value; the null marker encodes as JSON null.
func ToJSON(tree Value) ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(treeToAny(tree))
}

func treeToAny(tree Value) any {
	switch node := tree.(type) {
	case Map:
		raw := make(map[string]any, len(node))
		for key, child := range node {
			raw[key] = treeToAny(child)
		}
		return raw
	case List:
		raw := make([]any, len(node))
		for i, child := range node {
			raw[i] = treeToAny(child)
		}
		return raw
	case Scalar:
		return node.Val
	default:
		return nil
	}
}
