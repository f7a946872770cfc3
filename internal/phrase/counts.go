package phrase

import (
	"cmp"
	"maps"
	"slices"
)

// Counts is a two-level keyed container: target phrase → source phrase →
// value. It holds raw co-occurrence counts during aggregation and
// conditional probabilities after normalization.
//
// Reads never create keys: Get on an absent key returns 0. The zero value is
// ready to use. Counts is not safe for concurrent writers.
type Counts struct {
	m map[string]map[string]float64
}

// Translation is one source-phrase candidate of a target phrase.
type Translation struct {
	Source string
	Value  float64
}

// NewCounts returns an empty container.
func NewCounts() *Counts {
	return &Counts{m: make(map[string]map[string]float64)}
}

// Add increments the value of (target, source) by n, creating the keys on
// first observation. n is expected to be non-negative.
func (c *Counts) Add(target, source string, n float64) {
	if c.m == nil {
		c.m = make(map[string]map[string]float64)
	}
	sources, ok := c.m[target]
	if !ok {
		sources = make(map[string]float64)
		c.m[target] = sources
	}
	sources[source] += n
}

// Get returns the value of (target, source), or 0 if either key is absent.
func (c *Counts) Get(target, source string) float64 {
	return c.m[target][source]
}

// Has reports whether target has at least one candidate.
func (c *Counts) Has(target string) bool {
	return len(c.m[target]) > 0
}

// Len returns the number of target phrases.
func (c *Counts) Len() int {
	return len(c.m)
}

// Entries returns the number of (target, source) pairs.
func (c *Counts) Entries() int {
	n := 0
	for _, sources := range c.m {
		n += len(sources)
	}
	return n
}

// Targets returns the target phrases in ascending order.
func (c *Counts) Targets() []string {
	return slices.Sorted(maps.Keys(c.m))
}

// Total returns the sum of all values recorded for target.
func (c *Counts) Total(target string) float64 {
	var sum float64
	for _, n := range c.m[target] {
		sum += n
	}
	return sum
}

// Max returns the largest single value recorded for target, or 0.
func (c *Counts) Max(target string) float64 {
	var best float64
	for _, n := range c.m[target] {
		best = max(best, n)
	}
	return best
}

// Translations returns target's candidates ordered by value descending,
// ties broken by source phrase ascending.
func (c *Counts) Translations(target string) []Translation {
	sources := c.m[target]
	if len(sources) == 0 {
		return nil
	}
	out := make([]Translation, 0, len(sources))
	for s, n := range sources {
		out = append(out, Translation{Source: s, Value: n})
	}
	slices.SortFunc(out, func(a, b Translation) int {
		if d := cmp.Compare(b.Value, a.Value); d != 0 {
			return d
		}
		return cmp.Compare(a.Source, b.Source)
	})
	return out
}

// DeleteTarget removes target and all its candidates.
func (c *Counts) DeleteTarget(target string) {
	delete(c.m, target)
}

// DeleteSource removes one candidate; the target goes with its last candidate.
func (c *Counts) DeleteSource(target, source string) {
	sources, ok := c.m[target]
	if !ok {
		return
	}
	delete(sources, source)
	if len(sources) == 0 {
		delete(c.m, target)
	}
}

// Merge adds every value of other into c.
func (c *Counts) Merge(other *Counts) {
	if other == nil {
		return
	}
	for target, sources := range other.m {
		for source, n := range sources {
			c.Add(target, source, n)
		}
	}
}

// Clone returns a deep copy of c.
func (c *Counts) Clone() *Counts {
	out := NewCounts()
	for target, sources := range c.m {
		out.m[target] = maps.Clone(sources)
	}
	return out
}

// Map returns a deep copy of the contents as plain nested maps.
func (c *Counts) Map() map[string]map[string]float64 {
	return c.Clone().m
}
