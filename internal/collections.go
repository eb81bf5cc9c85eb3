package internal

import (
	"cmp"
	"slices"
)

// Set is a generic data structure that represents a collection of unique items.
// It uses a map internally for O(1) operations.
type Set[T comparable] struct {
	items map[T]struct{}
}

// NewSet creates and returns a new Set holding the given items.
func NewSet[T comparable](items ...T) *Set[T] {
	s := &Set[T]{
		items: make(map[T]struct{}, len(items)),
	}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts an item into the set. If the item already exists, it has no effect.
func (s *Set[T]) Add(item T) {
	s.items[item] = struct{}{}
}

// AddAll inserts every item of other into the set.
func (s *Set[T]) AddAll(other *Set[T]) {
	if other == nil {
		return
	}
	for item := range other.items {
		s.items[item] = struct{}{}
	}
}

// Remove deletes an item from the set. If the item doesn't exist, it has no effect.
func (s *Set[T]) Remove(item T) {
	delete(s.items, item)
}

// Contains checks if an item exists in the set.
func (s *Set[T]) Contains(item T) bool {
	if s == nil {
		return false
	}
	_, exists := s.items[item]
	return exists
}

// ContainsAll reports whether every item of other is in the set.
func (s *Set[T]) ContainsAll(other *Set[T]) bool {
	for item := range other.items {
		if !s.Contains(item) {
			return false
		}
	}
	return true
}

// Size returns the number of items in the set.
func (s *Set[T]) Size() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Clone returns an independent copy of the set.
func (s *Set[T]) Clone() *Set[T] {
	out := NewSet[T]()
	out.AddAll(s)
	return out
}

// Intersect returns the items present in both sets.
func (s *Set[T]) Intersect(other *Set[T]) *Set[T] {
	out := NewSet[T]()
	for item := range s.items {
		if other.Contains(item) {
			out.Add(item)
		}
	}
	return out
}

// Sorted returns the items ordered by compare.
func (s *Set[T]) Sorted(compare func(a, b T) int) []T {
	slice := make([]T, 0, s.Size())
	if s != nil {
		for item := range s.items {
			slice = append(slice, item)
		}
	}
	slices.SortFunc(slice, compare)
	return slice
}

// SortedKeys returns the keys of an ordered-key map in ascending order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// SortedKeysFunc returns the keys of m ordered by compare.
func SortedKeysFunc[K comparable, V any](m map[K]V, compare func(a, b K) int) []K {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, compare)
	return keys
}

// UnionOrdered concatenates the lists, keeping the first occurrence of each item.
func UnionOrdered[T comparable](lists ...[]T) []T {
	seen := make(map[T]struct{})
	var out []T
	for _, list := range lists {
		for _, it := range list {
			if _, ok := seen[it]; ok {
				continue
			}
			seen[it] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}
