package selection

import (
	"sync"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var selectionSize = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "selection_size",
	Help: "Number of record ids currently selected",
})

// Store is the single source of truth for which records are selected.
type Store struct {
	mu  sync.RWMutex
	set *Set
}

// NewStore wraps set. A nil set starts empty.
func NewStore(set *Set) *Store {
	if set == nil {
		set = NewSet()
	}
	selectionSize.Set(float64(set.Len()))
	return &Store{set: set}
}

// Toggle applies a table-level checkbox change. Every id in checked is
// selected; every id in presentOnPage that is not in checked is
// deselected. Ids outside presentOnPage keep their state.
func (s *Store) Toggle(checked, presentOnPage []int64) {
	keep := make(map[int64]struct{}, len(checked))
	for _, id := range checked {
		keep[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range checked {
		s.set.Add(id)
	}
	for _, id := range presentOnPage {
		if _, ok := keep[id]; !ok {
			s.set.Remove(id)
		}
	}
	selectionSize.Set(float64(s.set.Len()))
}

// AddAll unions ids into the selection and returns how many were new.
func (s *Store) AddAll(ids []int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, id := range ids {
		if s.set.Add(id) {
			added++
		}
	}
	selectionSize.Set(float64(s.set.Len()))
	return added
}

// VisibleSelection returns the page's selected records in page order.
func (s *Store) VisibleSelection(page *catalog.Page) []catalog.Record {
	visible := []catalog.Record{}
	if page == nil {
		return visible
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range page.Records {
		if s.set.Has(r.ID) {
			visible = append(visible, r)
		}
	}
	return visible
}

// Count returns the number of selected ids.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Len()
}

// Contains reports whether id is selected.
func (s *Store) Contains(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Has(id)
}

// IDs returns a sorted snapshot of the selection.
func (s *Store) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Sorted()
}

// Clear drops the whole selection.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.Clear()
	selectionSize.Set(0)
}
