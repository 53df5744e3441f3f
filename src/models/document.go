package models

import (
	"fmt"
	"math"
	"reflect"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is an ordered, schema-less set of key/value pairs.
//
// A Document never exposes its internal elements: every accessor hands out
// copies, so a Document can be shared freely between the engine and the
// collections once it has been built.
type Document struct {
	elems bson.D
}

// NewDocument builds a Document from a bson.D. Nested maps are converted to
// ordered documents (keys sorted) and repeated keys collapse onto the first
// position with the last value, so every Document has unique keys.
func NewDocument(d bson.D) Document {
	return Document{elems: normalizeD(d)}
}

// Len returns the number of top level keys.
func (d Document) Len() int {
	return len(d.elems)
}

// Keys returns the top level keys in document order.
func (d Document) Keys() []string {
	keys := make([]string, 0, len(d.elems))
	for _, e := range d.elems {
		keys = append(keys, e.Key)
	}
	return keys
}

// Lookup returns a copy of the value stored under key.
func (d Document) Lookup(key string) (interface{}, bool) {
	v, ok := d.lookup(key)
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

func (d Document) lookup(key string) (interface{}, bool) {
	for _, e := range d.elems {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// D returns a deep copy of the document as a bson.D.
func (d Document) D() bson.D {
	return normalizeD(d.elems)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{elems: normalizeD(d.elems)}
}

// Equal reports whether both documents hold the same keys with structurally
// equal values. Key order is not significant.
func (d Document) Equal(other Document) bool {
	return docsEqual(d.elems, other.elems)
}

// Matches reports whether every key of query is present in d with an equal
// value. The first mismatching key stops the scan. An empty query matches
// every document.
func (d Document) Matches(query Document) bool {
	for _, q := range query.elems {
		v, ok := d.lookup(q.Key)
		if !ok || !valuesEqual(v, q.Value) {
			return false
		}
	}
	return true
}

// String renders the document as relaxed extended JSON.
func (d Document) String() string {
	if len(d.elems) == 0 {
		return "{}"
	}
	out, err := bson.MarshalExtJSON(d.elems, false, false)
	if err != nil {
		return fmt.Sprintf("%v", d.elems)
	}
	return string(out)
}

func normalizeD(d bson.D) bson.D {
	out := make(bson.D, 0, len(d))
	index := make(map[string]int, len(d))
	for _, e := range d {
		v := cloneValue(e.Value)
		if i, seen := index[e.Key]; seen {
			out[i].Value = v
			continue
		}
		index[e.Key] = len(out)
		out = append(out, bson.E{Key: e.Key, Value: v})
	}
	return out
}

func mapToD(m map[string]interface{}) bson.D {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := make(bson.D, 0, len(m))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: cloneValue(m[k])})
	}
	return d
}

func cloneValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case bson.D:
		return normalizeD(tv)
	case bson.M:
		return mapToD(tv)
	case map[string]interface{}:
		return mapToD(tv)
	case bson.A:
		out := make(bson.A, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(tv))
		for i, item := range tv {
			out[i] = cloneValue(item)
		}
		return out
	case []byte:
		return append([]byte(nil), tv...)
	default:
		return v
	}
}

func docsEqual(a, b bson.D) bool {
	if len(a) != len(b) {
		return false
	}
	for _, e := range a {
		found := false
		for _, f := range b {
			if f.Key == e.Key {
				if !valuesEqual(e.Value, f.Value) {
					return false
				}
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case bson.D:
		bv, ok := b.(bson.D)
		return ok && docsEqual(av, bv)
	case bson.A:
		bv, ok := b.(bson.A)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	}

	// int32, int64 and float64 all come out of the JSON parser and the
	// codec, so numbers compare by value across those kinds.
	ai, aIsInt := asInt(a)
	bi, bIsInt := asInt(b)
	af, aIsFloat := asFloat(a)
	bf, bIsFloat := asFloat(b)
	switch {
	case aIsInt && bIsInt:
		return ai == bi
	case aIsInt && bIsFloat:
		return intEqualsFloat(ai, bf)
	case aIsFloat && bIsInt:
		return intEqualsFloat(bi, af)
	case aIsFloat && bIsFloat:
		return af == bf
	case aIsInt || aIsFloat || bIsInt || bIsFloat:
		return false
	}

	return reflect.DeepEqual(a, b)
}

// intEqualsFloat compares exactly: f must be integral and inside the int64
// range, so large ints never match a rounded float.
func intEqualsFloat(i int64, f float64) bool {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= -math.MinInt64 {
		return false
	}
	return int64(f) == i
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
