// Copyright (c) 2024 the mandos authors

package mandos

import (
	"github.com/tidwall/gjson"
	"golang.org/x/exp/slices"
)

// ValueKind discriminates the three variants of a Value sub-tree.
type ValueKind int

const (
	KindStr ValueKind = iota
	KindList
	KindMap
)

// Value is the raw scalar carrier of spec §3.1: a recursive sum type over
// a mini-DSL string, an ordered list of sub-trees, or a string-keyed map
// of sub-trees. It is structurally immutable after parsing.
type Value struct {
	Kind ValueKind
	Str  string
	List []Value
	Map  map[string]Value
}

// NewStr wraps a mini-DSL string as a scalar Value.
func NewStr(s string) Value { return Value{Kind: KindStr, Str: s} }

// NewList wraps an ordered sequence of sub-trees.
func NewList(items ...Value) Value { return Value{Kind: KindList, List: items} }

// NewMap wraps a string-keyed mapping of sub-trees. Iteration order when
// interpreting or serialising is always lexicographic by key (spec §4.2),
// never the order m was built in.
func NewMap(m map[string]Value) Value { return Value{Kind: KindMap, Map: m} }

// ParseValue turns a gjson.Result into a Value sub-tree. This is the "JSON
// loader" collaborator of spec §3.5: gjson performs the tokenisation, this
// function only classifies the already-parsed shape into Str/List/Map.
func ParseValue(path Path, r gjson.Result) (Value, error) {
	switch r.Type {
	case gjson.String:
		return NewStr(r.String()), nil
	case gjson.JSON:
		if r.IsArray() {
			items := r.Array()
			out := make([]Value, len(items))
			for i, item := range items {
				v, err := ParseValue(path.Index(i), item)
				if err != nil {
					return Value{}, err
				}
				out[i] = v
			}
			return Value{Kind: KindList, List: out}, nil
		}
		if r.IsObject() {
			out := make(map[string]Value)
			var firstErr error
			r.ForEach(func(key, val gjson.Result) bool {
				v, err := ParseValue(path.Key(key.String()), val)
				if err != nil {
					firstErr = err
					return false
				}
				out[key.String()] = v
				return true
			})
			if firstErr != nil {
				return Value{}, firstErr
			}
			return Value{Kind: KindMap, Map: out}, nil
		}
		return Value{}, newError(Shape, path, "unexpected JSON value")
	default:
		return Value{}, newError(Shape, path, "expected a string, array, or object, got %s", gjsonTypeName(r.Type))
	}
}

func gjsonTypeName(t gjson.Type) string {
	switch t {
	case gjson.Null:
		return "null"
	case gjson.False, gjson.True:
		return "boolean"
	case gjson.Number:
		return "number"
	default:
		return "unknown"
	}
}

// sortedKeys returns m's keys in lexicographic byte order (spec §4.2,
// §4.5): map rule interpretation, and map-key ordering, must never depend
// on insertion order or locale-sensitive collation.
func sortedKeys(m map[string]Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// interpretSubtree implements spec §4.2: Str interprets through the
// mini-DSL, List concatenates children in document order, Map concatenates
// values in lexicographic key order (keys themselves never contribute
// bytes).
func interpretSubtree(v Value, ctx *InterpreterContext, path Path) ([]byte, error) {
	switch v.Kind {
	case KindStr:
		b, err := interpretString(v.Str, ctx)
		if err != nil {
			return nil, wrapError(Shape, path, err)
		}
		return b, nil
	case KindList:
		var out []byte
		for i, item := range v.List {
			b, err := interpretSubtree(item, ctx, path.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		if out == nil {
			out = []byte{}
		}
		return out, nil
	case KindMap:
		var out []byte
		for _, k := range sortedKeys(v.Map) {
			b, err := interpretSubtree(v.Map[k], ctx, path.Key(k))
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}
		if out == nil {
			out = []byte{}
		}
		return out, nil
	default:
		return nil, newError(Shape, path, "invalid value sub-tree")
	}
}
