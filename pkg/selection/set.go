package selection

import "slices"

// Set is an unordered set of record ids. It is not safe for concurrent
// use on its own; Store guards it.
type Set struct {
	ids map[int64]struct{}
}

// NewSet creates a set holding ids.
func NewSet(ids ...int64) *Set {
	s := &Set{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s *Set) Add(id int64) bool {
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Remove deletes id and reports whether it was present.
func (s *Set) Remove(id int64) bool {
	if _, ok := s.ids[id]; !ok {
		return false
	}
	delete(s.ids, id)
	return true
}

// Has reports membership.
func (s *Set) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids.
func (s *Set) Len() int {
	return len(s.ids)
}

// Sorted returns the ids in ascending order.
func (s *Set) Sorted() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Clear removes every id.
func (s *Set) Clear() {
	clear(s.ids)
}
