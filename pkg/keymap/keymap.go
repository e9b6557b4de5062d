package keymap

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// KeyMap tracks used surrogate keys for deduplicated business values and
// provides the next available one.
//
// The core structure is a bijection: on one side a surrogate key K of some
// integer type, on the other a hashable value V. In tangent there is the
// next-key cursor, always the lowest non-negative key absent from the key
// side. If keys are ever removed from the backing table, later allocations
// backfill the lowest gap instead of growing unboundedly.
//
// A KeyMap is not safe for concurrent use; callers sharing one across
// goroutines must serialize access externally.
type KeyMap[K constraints.Integer, V comparable] struct {
	byKey map[K]V
	byVal map[V]K
	next  K
}

// New returns an empty KeyMap with a next key of zero.
func New[K constraints.Integer, V comparable]() *KeyMap[K, V] {
	return &KeyMap[K, V]{
		byKey: make(map[K]V),
		byVal: make(map[V]K),
	}
}

// FromMap builds a KeyMap from existing key/value pairs and computes the
// next available key. Two keys sharing a value would break the bijection,
// so duplicates are rejected.
func FromMap[K constraints.Integer, V comparable](pairs map[K]V) (*KeyMap[K, V], error) {
	m := New[K, V]()
	for k, v := range pairs {
		if err := m.insert(k, v); err != nil {
			return nil, err
		}
	}
	m.advance()
	return m, nil
}

// insert adds a pair, guarding both sides of the bijection. It does not
// move the next-key cursor.
func (m *KeyMap[K, V]) insert(k K, v V) error {
	if existing, ok := m.byKey[k]; ok {
		return fmt.Errorf("keymap: key %v already maps to %v", k, existing)
	}
	if existing, ok := m.byVal[v]; ok {
		return fmt.Errorf("keymap: value %v already has key %v", v, existing)
	}
	m.byKey[k] = v
	m.byVal[v] = k
	return nil
}

// advance moves the next-key cursor to the lowest unused key at or above
// its current position. Cost is proportional to the contiguous run of used
// keys, not the total entry count.
func (m *KeyMap[K, V]) advance() {
	for {
		if _, used := m.byKey[m.next]; !used {
			return
		}
		m.next++
	}
}

// Transact returns the key for v, allocating the lowest free key if v has
// none yet. Calling it twice with the same value returns the same key and
// allocates only once.
func (m *KeyMap[K, V]) Transact(v V) K {
	if k, ok := m.byVal[v]; ok {
		return k
	}
	k := m.next
	m.byKey[k] = v
	m.byVal[v] = k
	m.advance()
	return k
}

// NextKey returns the key the next allocation would use.
func (m *KeyMap[K, V]) NextKey() K {
	return m.next
}

// Key returns the key associated with v, if any.
func (m *KeyMap[K, V]) Key(v V) (K, bool) {
	k, ok := m.byVal[v]
	return k, ok
}

// Value returns the value associated with k, if any.
func (m *KeyMap[K, V]) Value(k K) (V, bool) {
	v, ok := m.byKey[k]
	return v, ok
}

// Len returns the number of pairs in the map.
func (m *KeyMap[K, V]) Len() int {
	return len(m.byKey)
}

// Pairs returns a copy of the key/value pairs.
func (m *KeyMap[K, V]) Pairs() map[K]V {
	pairs := make(map[K]V, len(m.byKey))
	for k, v := range m.byKey {
		pairs[k] = v
	}
	return pairs
}
