// Package setcover reduces a coverage relation to a small set of
// monitoring wells that still observes every coverable producer.
package setcover

import (
	"sort"

	"github.com/Vladislav-Dmitriev/well-net/pkg/coverage"
)

// Selection is the outcome of one reduction.
type Selection struct {
	// Required are unique coverers of at least one producer.
	Required []string `json:"required"`
	// Optional survived redundancy elimination.
	Optional []string `json:"optional"`
	// Uncovered producers have no coverer in the relation.
	Uncovered []string `json:"uncovered"`
}

// All returns Required and Optional merged and sorted.
func (s Selection) All() []string {
	out := make([]string, 0, len(s.Required)+len(s.Optional))
	out = append(out, s.Required...)
	out = append(out, s.Optional...)
	sort.Strings(out)
	return out
}

type set map[string]struct{}

func (s set) add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

func (s set) has(n string) bool {
	_, ok := s[n]
	return ok
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reduce picks every unique coverer, strips what they cover from the
// remaining candidates and drops candidates that add nothing to the
// union of the others, cheapest (smallest coverage) first. The result
// covers every producer with at least one coverer and no optional member
// can be removed without uncovering a producer.
func Reduce(rel *coverage.Relation) Selection {
	sel := Selection{Required: []string{}, Optional: []string{}, Uncovered: []string{}}

	required := set{}
	for _, p := range rel.Producers {
		switch len(rel.CoveredBy[p]) {
		case 0:
			sel.Uncovered = append(sel.Uncovered, p)
		case 1:
			required.add(rel.CoveredBy[p][0])
		}
	}
	covered := set{}
	for r := range required {
		covered.add(rel.Covers[r]...)
	}

	pool := make(map[string][]string)
	for _, c := range rel.Candidates {
		if required.has(c) {
			continue
		}
		var rest []string
		for _, p := range rel.Covers[c] {
			if !covered.has(p) {
				rest = append(rest, p)
			}
		}
		if len(rest) > 0 {
			pool[c] = rest
		}
	}

	order := make([]string, 0, len(pool))
	for c := range pool {
		order = append(order, c)
	}
	sort.Slice(order, func(i, j int) bool {
		if len(pool[order[i]]) != len(pool[order[j]]) {
			return len(pool[order[i]]) < len(pool[order[j]])
		}
		return order[i] < order[j]
	})

	for _, c := range order {
		if redundant(c, pool[c], pool) {
			delete(pool, c)
		}
	}

	sel.Required = required.sorted()
	for c := range pool {
		sel.Optional = append(sel.Optional, c)
	}
	sort.Strings(sel.Optional)
	return sel
}

// redundant reports whether every producer in covers is also covered by
// another pool member.
func redundant(c string, covers []string, pool map[string][]string) bool {
	others := set{}
	for o, s := range pool {
		if o != c {
			others.add(s...)
		}
	}
	for _, p := range covers {
		if !others.has(p) {
			return false
		}
	}
	return true
}

// ReduceRanked resolves producers that monitor each other. Candidates are
// taken in rank order (the caller ranks by ascending production rate);
// a candidate not yet observed by an earlier pick becomes a monitoring
// point and observes itself plus everything its zone covers. Picks that
// turn out redundant are then removed in reverse rank order. Excluded
// producers are never picked; those left unobserved are Uncovered.
func ReduceRanked(rel *coverage.Relation, rank []string, excluded []string) Selection {
	sel := Selection{Required: []string{}, Optional: []string{}, Uncovered: []string{}}
	skip := set{}
	skip.add(excluded...)
	isCandidate := set{}
	isCandidate.add(rel.Candidates...)

	observes := func(c string) []string {
		return append([]string{c}, rel.Covers[c]...)
	}

	observed := set{}
	var picked []string
	for _, c := range rank {
		if skip.has(c) || !isCandidate.has(c) || observed.has(c) {
			continue
		}
		picked = append(picked, c)
		observed.add(observes(c)...)
	}

	keep := make(map[string][]string, len(picked))
	for _, c := range picked {
		keep[c] = observes(c)
	}
	for i := len(picked) - 1; i >= 0; i-- {
		c := picked[i]
		if redundant(c, keep[c], keep) {
			delete(keep, c)
		}
	}

	final := set{}
	for c, obs := range keep {
		sel.Optional = append(sel.Optional, c)
		final.add(obs...)
	}
	sort.Strings(sel.Optional)
	for _, p := range rel.Producers {
		if !final.has(p) {
			sel.Uncovered = append(sel.Uncovered, p)
		}
	}
	return sel
}
