package domain

import "strings"

// ExclusionSet holds lead ids that must not be returned to the subscriber
// again: acquisition history, CRM contents and the in-progress accepted set.
// It is rebuilt for every request and is not safe for concurrent use.
type ExclusionSet struct {
	ids map[string]struct{}
}

// NewExclusionSet builds a set from any number of id sources.
func NewExclusionSet(sources ...[]string) *ExclusionSet {
	size := 0
	for _, src := range sources {
		size += len(src)
	}
	s := &ExclusionSet{ids: make(map[string]struct{}, size)}
	for _, src := range sources {
		for _, id := range src {
			s.Add(id)
		}
	}
	return s
}

// Contains reports whether id is excluded. Blank ids are always excluded
// since they cannot be deduplicated.
func (s *ExclusionSet) Contains(id string) bool {
	key := strings.TrimSpace(id)
	if key == "" {
		return true
	}
	_, ok := s.ids[key]
	return ok
}

// Add inserts id and reports whether it was new.
func (s *ExclusionSet) Add(id string) bool {
	key := strings.TrimSpace(id)
	if key == "" {
		return false
	}
	if _, ok := s.ids[key]; ok {
		return false
	}
	s.ids[key] = struct{}{}
	return true
}

// Len returns the number of excluded ids.
func (s *ExclusionSet) Len() int {
	return len(s.ids)
}
