package core

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// OrderedMap is a string-keyed map that remembers insertion order and
// serializes as a JSON object with keys in that order.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap creates an empty ordered map
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{values: make(map[string]V)}
}

// Set stores v under k. An existing key keeps its position.
func (m *OrderedMap[V]) Set(k string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, exists := m.values[k]; !exists {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *OrderedMap[V]) Get(k string) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (m *OrderedMap[V]) Range(fn func(k string, v V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// MarshalJSON implements json.Marshaler.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, k := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := json.Marshal(m.values[k])
			if err != nil {
				return nil, fmt.Errorf("marshal %q: %w", k, err)
			}
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving document key order.
func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	m.keys = nil
	m.values = make(map[string]V)
	return DecodeOrderedObject(data, func(key string, raw []byte) error {
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("unmarshal %q: %w", key, err)
		}
		m.Set(key, v)
		return nil
	})
}

// DecodeOrderedObject walks a JSON object and calls fn for each member in
// document order with the member's raw value.
func DecodeOrderedObject(data []byte, fn func(key string, raw []byte) error) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON")
	}
	obj := gjson.ParseBytes(data)
	if !obj.IsObject() {
		return fmt.Errorf("expected JSON object, got %s", obj.Type)
	}
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		err = fn(key.Str, []byte(value.Raw))
		return err == nil
	})
	return err
}
