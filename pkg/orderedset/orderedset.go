// Package orderedset provides a set with insertion-order-preserving iteration.
// Selection chips in the client render in the order the user picked them, so
// iteration order is part of the contract, not incidental.
package orderedset

import "encoding/json"

// Set holds unique values and remembers the order they were added in.
// The zero value is ready to use. Set is not safe for concurrent use.
type Set[T comparable] struct {
	values []T
	index  map[T]int
}

// New builds a set from the given values, keeping first occurrences only.
func New[T comparable](values ...T) *Set[T] {
	s := &Set[T]{}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add appends v if not already present. Returns true if the set changed.
func (s *Set[T]) Add(v T) bool {
	if s.Has(v) {
		return false
	}
	if s.index == nil {
		s.index = make(map[T]int)
	}
	s.index[v] = len(s.values)
	s.values = append(s.values, v)
	return true
}

// Remove deletes v, preserving the relative order of the remaining values.
// Returns true if the set changed.
func (s *Set[T]) Remove(v T) bool {
	pos, ok := s.index[v]
	if !ok {
		return false
	}
	s.values = append(s.values[:pos], s.values[pos+1:]...)
	delete(s.index, v)
	for i := pos; i < len(s.values); i++ {
		s.index[s.values[i]] = i
	}
	return true
}

// Toggle removes v if present, otherwise appends it.
// Returns true if v is a member after the call.
func (s *Set[T]) Toggle(v T) bool {
	if s.Remove(v) {
		return false
	}
	s.Add(v)
	return true
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of members.
func (s *Set[T]) Len() int {
	return len(s.values)
}

// Values returns the members in insertion order. The slice is a copy.
func (s *Set[T]) Values() []T {
	out := make([]T, len(s.values))
	copy(out, s.values)
	return out
}

// Clone returns an independent copy with the same order.
func (s *Set[T]) Clone() *Set[T] {
	return New(s.values...)
}

// Clear removes all members.
func (s *Set[T]) Clear() {
	s.values = nil
	s.index = nil
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s Set[T]) MarshalJSON() ([]byte, error) {
	if s.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.values)
}

// UnmarshalJSON decodes a JSON array, deduplicating while keeping first occurrences.
func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var values []T
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	s.Clear()
	for _, v := range values {
		s.Add(v)
	}
	return nil
}
