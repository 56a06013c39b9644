package massshift

import (
	"math"
	"sort"
)

// MassIndex is a read-only view over a Catalog: the modification masses
// sorted ascending, plus a precomputed table of pairwise sums for fast
// 2-combination lookups. It is built once from a catalog snapshot and
// safe for concurrent readers.
type MassIndex struct {
	cat *Catalog

	order []int     // catalog indices sorted by mass
	mass  []float64 // sorted masses, parallel to order

	pairMass []float64 // sorted pairwise sums
	pairIdx  [][2]int  // catalog index pairs, i <= j, parallel to pairMass
}

// NewMassIndex builds the index in O(n log n) for the single-mass table
// plus O(n^2) for the pair table. Modification catalogs are in the low
// thousands, so the pair table stays manageable.
func NewMassIndex(cat *Catalog) *MassIndex {
	n := cat.Len()
	x := &MassIndex{
		cat:   cat,
		order: make([]int, n),
		mass:  make([]float64, n),
	}
	for i := 0; i < n; i++ {
		x.order[i] = i
	}
	sort.Slice(x.order, func(a, b int) bool {
		return cat.Mod(x.order[a]).DeltaMass < cat.Mod(x.order[b]).DeltaMass
	})
	for k, i := range x.order {
		x.mass[k] = cat.Mod(i).DeltaMass
	}

	// Pair table over catalog indices with i <= j, so {A,B} and {B,A}
	// are one entry and a modification may pair with itself.
	x.pairMass = make([]float64, 0, n*(n+1)/2)
	x.pairIdx = make([][2]int, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		mi := cat.Mod(i).DeltaMass
		for j := i; j < n; j++ {
			x.pairMass = append(x.pairMass, mi+cat.Mod(j).DeltaMass)
			x.pairIdx = append(x.pairIdx, [2]int{i, j})
		}
	}
	perm := make([]int, len(x.pairMass))
	for i := range perm {
		perm[i] = i
	}
	sort.Slice(perm, func(a, b int) bool { return x.pairMass[perm[a]] < x.pairMass[perm[b]] })
	sortedMass := make([]float64, len(perm))
	sortedIdx := make([][2]int, len(perm))
	for k, p := range perm {
		sortedMass[k] = x.pairMass[p]
		sortedIdx[k] = x.pairIdx[p]
	}
	x.pairMass = sortedMass
	x.pairIdx = sortedIdx
	return x
}

// RangeQuery returns all single modifications with mass in [lo, hi],
// in ascending mass order.
func (x *MassIndex) RangeQuery(lo, hi float64) []Modification {
	return x.Pool().RangeQuery(lo, hi)
}

// PairRangeQuery returns all 2-combinations with summed mass in
// [lo, hi], in ascending sum order, deduplicated so {A,B} and {B,A}
// are one entry.
func (x *MassIndex) PairRangeQuery(lo, hi float64) [][2]Modification {
	return x.Pool().PairRangeQuery(lo, hi)
}

// Pool returns the unrestricted search pool over the whole index.
func (x *MassIndex) Pool() *Pool {
	return &Pool{idx: x, order: x.order, mass: x.mass}
}

// Restrict returns a search pool containing only the modifications for
// which allow returns true. Restricting before searching (rather than
// filtering results) matters for deep searches: the branch-and-bound
// mass bounds are taken from the restricted pool.
func (x *MassIndex) Restrict(allow func(Modification) bool) *Pool {
	p := &Pool{idx: x, allowed: make([]bool, x.cat.Len())}
	for k, i := range x.order {
		if allow(x.cat.Mod(i)) {
			p.allowed[i] = true
			p.order = append(p.order, i)
			p.mass = append(p.mass, x.mass[k])
		}
	}
	return p
}

// Pool is a possibly restricted view of a MassIndex used by the
// combination search. The zero Pool is empty; obtain one from Pool()
// or Restrict().
type Pool struct {
	idx     *MassIndex
	allowed []bool    // by catalog index; nil = no restriction
	order   []int     // catalog indices sorted by mass
	mass    []float64 // sorted masses, parallel to order
}

// Len returns the number of modifications in the pool.
func (p *Pool) Len() int { return len(p.order) }

// MinMass and MaxMass return the smallest and largest signed delta mass
// in the pool. Both may be negative (mass losses); callers must not
// assume a sign.
func (p *Pool) MinMass() float64 {
	if len(p.mass) == 0 {
		return math.Inf(1)
	}
	return p.mass[0]
}

func (p *Pool) MaxMass() float64 {
	if len(p.mass) == 0 {
		return math.Inf(-1)
	}
	return p.mass[len(p.mass)-1]
}

func (p *Pool) contains(catIdx int) bool {
	return p.allowed == nil || p.allowed[catIdx]
}

// massRange returns the half-open range [a, b) of pool positions whose
// mass lies in [lo, hi].
func (p *Pool) massRange(lo, hi float64) (int, int) {
	a := sort.SearchFloat64s(p.mass, lo)
	b := sort.Search(len(p.mass), func(i int) bool { return p.mass[i] > hi })
	return a, b
}

// RangeQuery returns the pool's modifications with mass in [lo, hi] in
// ascending mass order.
func (p *Pool) RangeQuery(lo, hi float64) []Modification {
	a, b := p.massRange(lo, hi)
	if a >= b {
		return nil
	}
	out := make([]Modification, 0, b-a)
	for k := a; k < b; k++ {
		out = append(out, p.idx.cat.Mod(p.order[k]))
	}
	return out
}

// PairRangeQuery returns the pool's 2-combinations with summed mass in
// [lo, hi] in ascending sum order. The shared pair table is scanned
// within the sum window; entries with a member outside the pool are
// skipped, which yields exactly the pairs over the restricted pool.
func (p *Pool) PairRangeQuery(lo, hi float64) [][2]Modification {
	pm := p.idx.pairMass
	a := sort.SearchFloat64s(pm, lo)
	b := sort.Search(len(pm), func(i int) bool { return pm[i] > hi })
	var out [][2]Modification
	for k := a; k < b; k++ {
		pr := p.idx.pairIdx[k]
		if !p.contains(pr[0]) || !p.contains(pr[1]) {
			continue
		}
		out = append(out, [2]Modification{p.idx.cat.Mod(pr[0]), p.idx.cat.Mod(pr[1])})
	}
	return out
}
