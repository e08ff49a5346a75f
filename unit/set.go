package unit

import (
	"fmt"
	"sort"
)

// Set is a lookup of domains by name. Build it once at startup; it is
// not safe to Add concurrently with lookups.
type Set struct {
	domains map[string]Domain
}

// NewSet builds a set from the given domains.
func NewSet(domains ...Domain) (*Set, error) {
	s := &Set{domains: make(map[string]Domain, len(domains))}
	for _, d := range domains {
		if err := s.Add(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Default returns a set of the built-in domains: count, duration, bytes.
func Default() *Set {
	s, err := NewSet(Count, Duration, Bytes)
	if err != nil {
		panic(err)
	}
	return s
}

// Add registers a domain, rejecting duplicate names.
func (s *Set) Add(d Domain) error {
	if _, exists := s.domains[d.Name()]; exists {
		return fmt.Errorf("duplicate domain %q", d.Name())
	}
	s.domains[d.Name()] = d
	return nil
}

// Lookup returns the named domain.
func (s *Set) Lookup(name string) (Domain, bool) {
	d, ok := s.domains[name]
	return d, ok
}

// Names returns the domain names, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.domains))
	for name := range s.domains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
