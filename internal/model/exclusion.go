package model

import (
	"cmp"
	"slices"
)

// ExclusionPair is an unordered pair of participants who must not draw each other.
// Construct with NewExclusionPair so that A < B.
type ExclusionPair struct {
	A string
	B string
}

// NewExclusionPair returns the normalized pair for a and b
func NewExclusionPair(a, b string) ExclusionPair {
	if b < a {
		a, b = b, a
	}
	return ExclusionPair{A: a, B: b}
}

// Involves reports whether name is one side of the pair
func (p ExclusionPair) Involves(name string) bool {
	return p.A == name || p.B == name
}

// ExclusionSet is a symmetric, irreflexive relation over participant names.
// The zero value is read-only; use NewExclusionSet before adding.
type ExclusionSet map[string]map[string]struct{}

// NewExclusionSet builds a set from the given pairs
func NewExclusionSet(pairs ...ExclusionPair) ExclusionSet {
	s := make(ExclusionSet)
	for _, p := range pairs {
		s.Add(p.A, p.B)
	}
	return s
}

// Add records a and b as excluded from each other. Self-pairs are ignored.
// It reports whether the pair was newly added.
func (s ExclusionSet) Add(a, b string) bool {
	if a == b || s.Excludes(a, b) {
		return false
	}
	s.link(a, b)
	s.link(b, a)
	return true
}

func (s ExclusionSet) link(from, to string) {
	m, ok := s[from]
	if !ok {
		m = make(map[string]struct{})
		s[from] = m
	}
	m[to] = struct{}{}
}

// Remove deletes the pair in both directions
func (s ExclusionSet) Remove(a, b string) {
	s.unlink(a, b)
	s.unlink(b, a)
}

func (s ExclusionSet) unlink(from, to string) {
	m, ok := s[from]
	if !ok {
		return
	}
	delete(m, to)
	if len(m) == 0 {
		delete(s, from)
	}
}

// Excludes reports whether a and b must not be paired
func (s ExclusionSet) Excludes(a, b string) bool {
	_, ok := s[a][b]
	return ok
}

// RemoveAll deletes every pair involving name
func (s ExclusionSet) RemoveAll(name string) {
	for other := range s[name] {
		s.unlink(other, name)
	}
	delete(s, name)
}

// Of returns the names excluded with name, sorted
func (s ExclusionSet) Of(name string) []string {
	out := make([]string, 0, len(s[name]))
	for other := range s[name] {
		out = append(out, other)
	}
	slices.Sort(out)
	return out
}

// Pairs returns each unordered pair once, sorted
func (s ExclusionSet) Pairs() []ExclusionPair {
	var pairs []ExclusionPair
	for a, others := range s {
		for b := range others {
			if a < b {
				pairs = append(pairs, ExclusionPair{A: a, B: b})
			}
		}
	}
	slices.SortFunc(pairs, func(x, y ExclusionPair) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})
	return pairs
}

// Len returns the number of unordered pairs
func (s ExclusionSet) Len() int {
	n := 0
	for _, others := range s {
		n += len(others)
	}
	return n / 2
}

// Clone returns an independent copy
func (s ExclusionSet) Clone() ExclusionSet {
	return NewExclusionSet(s.Pairs()...)
}
