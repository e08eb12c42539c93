// Package descriptor parses and validates project.js manifests.
//
// A manifest is first parsed into a Document, a generic tree whose objects
// keep the key order of the source text. Verify checks the Document against
// the manifest schema and Decode turns a verified Document into a typed
// Descriptor.
package descriptor

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Object is an insertion-ordered JSON-style object.
type Object = orderedmap.OrderedMap[string, any]

// NewObject returns an empty Object.
func NewObject() *Object {
	return orderedmap.New[string, any]()
}

// Kind is the closed set of value shapes a Document can hold.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindMap
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return "other"
	}
}

// KindOf classifies a Document value.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case float64, float32, int, int64, uint64:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case *Object:
		return KindMap
	default:
		return KindOther
	}
}

// Document is the generic tree produced by Parse. Root is usually an
// *Object but may be any decoded value.
type Document struct {
	Root any
}

// Object returns the root as an Object.
func (d Document) Object() (*Object, bool) {
	obj, ok := d.Root.(*Object)
	return obj, ok && obj != nil
}

// Lookup walks a key path from the root. It reports false as soon as a key
// is missing or an intermediate value is not an object.
func (d Document) Lookup(path ...string) (any, bool) {
	cur := d.Root
	for _, key := range path {
		obj, ok := cur.(*Object)
		if !ok || obj == nil {
			return nil, false
		}
		cur, ok = obj.Get(key)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Plain converts the Document into map[string]any / []any values, losing
// key order. Useful for comparisons and re-encoding.
func (d Document) Plain() any {
	return plain(d.Root)
}

func plain(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil
		}
		out := make(map[string]any, t.Len())
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out[pair.Key] = plain(pair.Value)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = plain(item)
		}
		return out
	default:
		return v
	}
}

// cloneValue deep-copies objects and arrays; scalars are returned as is.
func cloneValue(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return (*Object)(nil)
		}
		out := NewObject()
		for pair := t.Oldest(); pair != nil; pair = pair.Next() {
			out.Set(pair.Key, cloneValue(pair.Value))
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// CloneObject deep-copies an Object. A nil Object clones to nil.
func CloneObject(obj *Object) *Object {
	if obj == nil {
		return nil
	}
	return cloneValue(obj).(*Object)
}

// isEmpty reports emptiness the way manifest fields are judged: null,
// scalars other than non-empty strings, and zero-length collections are
// all empty.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case *Object:
		return t == nil || t.Len() == 0
	default:
		return true
	}
}
