// SPDX-License-Identifier: EPL-2.0

package audio

import "iter"

// Metadata is an insertion-ordered string map. Setting an existing key
// replaces its value and keeps its original position.
//
// A nil *Metadata behaves as an empty, read-only map.
type Metadata struct {
	keys   []string
	values map[string]string
}

func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

func (m *Metadata) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Metadata) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates key/value pairs in insertion order.
func (m *Metadata) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Merge copies every entry of other into m. On collision the value from
// other wins.
func (m *Metadata) Merge(other *Metadata) {
	for k, v := range other.All() {
		m.Set(k, v)
	}
}

func (m *Metadata) Clone() *Metadata {
	c := NewMetadata()
	c.Merge(m)
	return c
}

// Map returns an unordered copy.
func (m *Metadata) Map() map[string]string {
	out := make(map[string]string, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}
