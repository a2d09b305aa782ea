// Package trace holds named diameter/pressure series and the event list the
// figure pipeline reads from.
package trace

import (
	"sort"
)

// Well-known series keys produced by the data loader.
const (
	KeyInner       = "inner"
	KeyOuter       = "outer"
	KeyAvgPressure = "avg_pressure"
	KeySetPressure = "set_pressure"
)

type series struct {
	x, y []float64
}

// Store is an immutable-after-load collection of named (x, y) series. It
// satisfies the figure renderer's series lookup.
type Store struct {
	series map[string]series
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{series: make(map[string]series)}
}

// Put registers a series under a key. Mismatched lengths are truncated to the
// shorter slice.
func (s *Store) Put(key string, x, y []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	s.series[key] = series{x: x[:n], y: y[:n]}
}

// Series returns the series registered under key.
func (s *Store) Series(key string) (x, y []float64, ok bool) {
	sr, ok := s.series[key]
	if !ok {
		return nil, nil, false
	}
	return sr.x, sr.y, true
}

// Keys lists the registered series keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.series))
	for k := range s.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
