// Package flat converts element trees into plain nested values.
//
// A flattened value is one of three shapes, and callers must be ready for any
// of them at any depth:
//
//	Scalar  a trimmed text leaf
//	List    an ordered sequence of values
//	Map     a mapping from tag or attribute name to value
//
// A fourth kind, Null, marks a missing measurement. Flatten never produces it;
// the event collector does for "NaN" chart values.
package flat

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the shape of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindList
	KindMap
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is a flattened node. The zero Value is Null.
type Value struct {
	kind   Kind
	scalar string
	list   []Value
	fields map[string]Value
}

// Null returns the missing-value sentinel.
func Null() Value {
	return Value{}
}

// Scalar returns a text leaf.
func Scalar(s string) Value {
	return Value{kind: KindScalar, scalar: s}
}

// List returns an ordered sequence.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Map returns a mapping. A nil map is replaced by an empty one.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindMap, fields: fields}
}

// StringMap returns a Map whose entries are all scalars.
func StringMap(m map[string]string) Value {
	fields := make(map[string]Value, len(m))
	for k, v := range m {
		fields[k] = Scalar(v)
	}
	return Map(fields)
}

// Kind returns the shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the missing-value sentinel.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Scalar returns the text of a scalar value.
func (v Value) Scalar() (string, bool) {
	if v.kind != KindScalar {
		return "", false
	}
	return v.scalar, true
}

// List returns the items of a list value.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list, true
}

// Map returns the entries of a map value. The returned map is shared with v.
func (v Value) Map() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.fields, true
}

// Get returns the entry stored under key when v is a map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	item, ok := v.fields[key]
	return item, ok
}

// Index returns the i-th item when v is a list.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// Len returns the number of items or entries, 0 for scalars and null.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.fields)
	}
	return 0
}

// Keys returns the map keys in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.fields))
	for k := range v.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts v to plain Go values: string, []any, map[string]any or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindScalar:
		return v.scalar
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.fields))
		for k, item := range v.fields {
			out[k] = item.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// String renders v in a compact debugging form.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.kind {
	case KindScalar:
		fmt.Fprintf(sb, "%q", v.scalar)
	case KindList:
		sb.WriteString("[")
		for i, item := range v.list {
			if i > 0 {
				sb.WriteString(" ")
			}
			item.write(sb)
		}
		sb.WriteString("]")
	case KindMap:
		sb.WriteString("{")
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(k)
			sb.WriteString(":")
			v.fields[k].write(sb)
		}
		sb.WriteString("}")
	default:
		sb.WriteString("null")
	}
}
