package tdfbundle

import (
	"sync"
)

// orderedMap is a map that remembers insertion order and is safe for
// concurrent use. Setting an existing key replaces its value in place.
type orderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
	mu     sync.RWMutex
}

func newOrderedMap[K comparable, V any]() *orderedMap[K, V] {
	return &orderedMap[K, V]{
		values: make(map[K]V),
	}
}

// Set adds a key-value pair to the map
func (om *orderedMap[K, V]) Set(key K, value V) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if _, exists := om.values[key]; !exists {
		om.keys = append(om.keys, key)
	}
	om.values[key] = value
}

// SetIfAbsent stores value unless key is present and returns whichever
// value ends up in the map.
func (om *orderedMap[K, V]) SetIfAbsent(key K, value V) V {
	om.mu.Lock()
	defer om.mu.Unlock()

	if existing, exists := om.values[key]; exists {
		return existing
	}
	om.keys = append(om.keys, key)
	om.values[key] = value
	return value
}

// Get retrieves a value from the map by key
func (om *orderedMap[K, V]) Get(key K) (V, bool) {
	om.mu.RLock()
	defer om.mu.RUnlock()

	val, exists := om.values[key]
	return val, exists
}

// Keys returns a slice of keys in the order they were inserted
func (om *orderedMap[K, V]) Keys() []K {
	om.mu.RLock()
	defer om.mu.RUnlock()

	return append([]K{}, om.keys...)
}
