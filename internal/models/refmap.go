// internal/models/refmap.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// RefMap is an insertion-ordered mapping from a typed key to a storage
// reference. Keys are unique. The zero value is an empty map ready to use.
type RefMap[K ~string] struct {
	keys []K
	refs map[K]string
}

// RefMapOf builds a RefMap from a plain map. Keys are ordered lexically
// since Go maps carry no order.
func RefMapOf[K ~string](m map[K]string) RefMap[K] {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var out RefMap[K]
	for _, k := range keys {
		out.Set(k, m[k])
	}
	return out
}

// Set stores ref under key. An existing key keeps its position.
func (r *RefMap[K]) Set(key K, ref string) {
	if r.refs == nil {
		r.refs = make(map[K]string)
	}
	if _, ok := r.refs[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.refs[key] = ref
}

// Get returns the reference stored under key.
func (r RefMap[K]) Get(key K) (string, bool) {
	ref, ok := r.refs[key]
	return ref, ok
}

// Has reports whether key is present.
func (r RefMap[K]) Has(key K) bool {
	_, ok := r.refs[key]
	return ok
}

// Keys returns the keys in insertion order.
func (r RefMap[K]) Keys() []K {
	out := make([]K, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of keys.
func (r RefMap[K]) Len() int {
	return len(r.keys)
}

// Merge unions other into r. Values from other overwrite existing ones,
// but an empty reference never replaces or creates an entry.
func (r *RefMap[K]) Merge(other RefMap[K]) {
	for _, k := range other.keys {
		ref := other.refs[k]
		if ref == "" {
			continue
		}
		r.Set(k, ref)
	}
}

// MergeMap is Merge for a plain map, applied in lexical key order.
func (r *RefMap[K]) MergeMap(m map[K]string) {
	r.Merge(RefMapOf(m))
}

// Clone returns an independent copy.
func (r RefMap[K]) Clone() RefMap[K] {
	var out RefMap[K]
	for _, k := range r.keys {
		out.Set(k, r.refs[k])
	}
	return out
}

// Map returns a plain copy of the entries.
func (r RefMap[K]) Map() map[K]string {
	out := make(map[K]string, len(r.keys))
	for _, k := range r.keys {
		out[k] = r.refs[k]
	}
	return out
}

// MarshalJSON encodes the map as a JSON object in key order.
func (r RefMap[K]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(string(k))
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.refs[k])
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the document's key order.
// A null document yields an empty map; null values are skipped.
func (r *RefMap[K]) UnmarshalJSON(data []byte) error {
	*r = RefMap[K]{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("refmap: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("refmap: expected string key, got %v", keyTok)
		}
		var ref *string
		if err := dec.Decode(&ref); err != nil {
			return fmt.Errorf("refmap: value for %q: %w", key, err)
		}
		if ref == nil {
			continue
		}
		r.Set(K(key), *ref)
	}

	_, err = dec.Token()
	return err
}

// Value stores the map as JSON for jsonb columns.
func (r RefMap[K]) Value() (driver.Value, error) {
	return r.MarshalJSON()
}

// Scan reads a jsonb column.
func (r *RefMap[K]) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = RefMap[K]{}
		return nil
	case []byte:
		return r.UnmarshalJSON(v)
	case string:
		return r.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("refmap: cannot scan %T", src)
	}
}
