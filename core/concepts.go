package core

import "slices"

// TermCount pairs a concept key with its occurrence count.
type TermCount struct {
	Term  string
	Count int
}

// ConceptTable maps concept keys (lowercased surface text) to occurrence counts.
// Keys keep the order in which they were first added so that every
// enumeration is deterministic.
//
// The zero value is not usable; create tables with NewConceptTable.
type ConceptTable struct {
	order  []string
	counts map[string]int
}

// NewConceptTable creates an empty ConceptTable.
func NewConceptTable() *ConceptTable {
	return &ConceptTable{
		counts: make(map[string]int),
	}
}

// Add records one occurrence of key.
// Empty keys are ignored.
func (t *ConceptTable) Add(key string) {
	t.AddN(key, 1)
}

// AddN records n occurrences of key. Non-positive n and empty keys are ignored,
// so every key present always has a count of at least one.
func (t *ConceptTable) AddN(key string, n int) {
	if key == "" || n <= 0 {
		return
	}
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key] += n
}

// Count returns the occurrence count of key, or 0 if key is absent.
func (t *ConceptTable) Count(key string) int {
	return t.counts[key]
}

// Has reports whether key is present.
func (t *ConceptTable) Has(key string) bool {
	_, ok := t.counts[key]
	return ok
}

// Len returns the number of distinct concepts.
func (t *ConceptTable) Len() int {
	return len(t.order)
}

// Keys returns the concept keys in first-seen order.
func (t *ConceptTable) Keys() []string {
	return slices.Clone(t.order)
}

// Total returns the sum of all counts.
func (t *ConceptTable) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Sorted returns every (term, count) pair sorted by descending count.
// Ties keep first-seen order.
func (t *ConceptTable) Sorted() []TermCount {
	result := make([]TermCount, len(t.order))
	for i, key := range t.order {
		result[i] = TermCount{Term: key, Count: t.counts[key]}
	}
	slices.SortStableFunc(result, func(a, b TermCount) int {
		return b.Count - a.Count
	})
	return result
}

// Top returns the n most frequent concepts. A non-positive n returns all of them.
func (t *ConceptTable) Top(n int) []TermCount {
	sorted := t.Sorted()
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Map returns a copy of the table as a plain map.
func (t *ConceptTable) Map() map[string]int {
	result := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		result[k] = v
	}
	return result
}
