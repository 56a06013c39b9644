package massshift

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// Candidate is one explanation of a mass shift: a canonical (ordered by
// id) multiset of modifications whose summed delta mass lies within
// tolerance of the observed shift. An empty Mods slice is the
// zero-modification explanation.
type Candidate struct {
	Mods      []Modification
	TotalMass float64
	Error     float64 // observed delta minus TotalMass

	// Sites lists the feasible placements per modification (parallel
	// to Mods) when the query carried sequence context; nil otherwise.
	Sites [][]SiteLoc
}

// Size returns the number of modifications in the candidate.
func (c Candidate) Size() int { return len(c.Mods) }

// IDString returns the canonical "+"-joined id list, empty for the
// zero-modification candidate. It is the deterministic tie breaker in
// ranking and the deduplication key.
func (c Candidate) IDString() string {
	s := ""
	for i, m := range c.Mods {
		if i > 0 {
			s += "+"
		}
		s += m.ID
	}
	return s
}

type searchSpec struct {
	target     float64 // delta mass to explain
	eps        float64 // absolute tolerance, already resolved from ppm if needed
	maxDepth   int     // largest combination size considered
	exhaustive bool    // keep searching deeper after the first matching depth
}

// search enumerates candidates by increasing combination size.
// Depth 0 is the zero-modification explanation, depth 1 uses the sorted
// single-mass table, depth 2 the precomputed pair-sum table, and deeper
// levels run a branch-and-bound enumeration in non-decreasing pool
// order so no permutation duplicates arise. Unless an exhaustive search
// is requested, the first depth that yields any candidate ends the
// search: fewer simultaneous modifications are the preferred
// explanation of the same shift.
//
// An empty result is a normal outcome. The context is checked between
// depth levels; cancellation returns the candidates found so far
// together with an error wrapping ErrSearchCancelled.
func (p *Pool) search(ctx context.Context, s searchSpec) ([]Candidate, error) {
	var out []Candidate
	lo, hi := s.target-s.eps, s.target+s.eps

	// Fixed-depth buffers reused across depth levels.
	var picks []int
	var sums []float64
	if s.maxDepth >= 3 {
		picks = make([]int, s.maxDepth)
		sums = make([]float64, s.maxDepth+1)
	}

	for d := 0; d <= s.maxDepth; d++ {
		select {
		case <-ctx.Done():
			return out, fmt.Errorf("%w: %v", ErrSearchCancelled, ctx.Err())
		default:
		}
		before := len(out)
		switch d {
		case 0:
			if math.Abs(s.target) <= s.eps {
				out = append(out, Candidate{Error: s.target})
			}
		case 1:
			for _, m := range p.RangeQuery(lo, hi) {
				out = append(out, newCandidate([]Modification{m}, s.target))
			}
		case 2:
			for _, pr := range p.PairRangeQuery(lo, hi) {
				out = append(out, newCandidate([]Modification{pr[0], pr[1]}, s.target))
			}
		default:
			p.searchDepth(d, s.target, s.eps, picks, sums, func(positions []int) {
				mods := make([]Modification, d)
				for k, pos := range positions {
					mods[k] = p.idx.cat.Mod(p.order[pos])
				}
				out = append(out, newCandidate(mods, s.target))
			})
		}
		if len(out) > before && !s.exhaustive {
			break
		}
	}
	return out, nil
}

func newCandidate(mods []Modification, target float64) Candidate {
	sort.Slice(mods, func(i, j int) bool { return mods[i].ID < mods[j].ID })
	total := 0.0
	for _, m := range mods {
		total += m.DeltaMass
	}
	return Candidate{Mods: mods, TotalMass: total, Error: target - total}
}

// searchDepth enumerates all multisets of exactly d pool members whose
// summed mass lies in [target-eps, target+eps]. Members are chosen as
// non-decreasing pool positions (repeats allowed), using an explicit
// stack rather than recursion. Branches are pruned against the pool's
// mass bounds: with r picks remaining and partial sum S, a branch at
// position i is dead when even r times the smallest remaining mass
// overshoots (S + r*mass[i] > target+eps, masses ascending) or when
// even the largest pool mass cannot reach the window
// (S + mass[i] + (r-1)*maxMass < target-eps).
func (p *Pool) searchDepth(d int, target, eps float64, picks []int, sums []float64, emit func([]int)) {
	n := len(p.mass)
	if n == 0 {
		return
	}
	maxM := p.MaxMass()
	level := 0
	picks[0] = 0
	sums[0] = 0
	for level >= 0 {
		i := picks[level]
		if i >= n {
			level--
			if level >= 0 {
				picks[level]++
			}
			continue
		}
		sum := sums[level]
		rem := d - level // picks still to make, including this one
		if sum+float64(rem)*p.mass[i] > target+eps {
			// Larger positions only overshoot further.
			level--
			if level >= 0 {
				picks[level]++
			}
			continue
		}
		if sum+p.mass[i]+float64(rem-1)*maxM < target-eps {
			picks[level]++
			continue
		}
		if rem == 1 {
			// Last slot: take every mass in the remaining window
			// directly from the sorted table.
			a := sort.SearchFloat64s(p.mass, target-eps-sum)
			if a < i {
				a = i
			}
			b := sort.Search(n, func(k int) bool { return p.mass[k] > target+eps-sum })
			for k := a; k < b; k++ {
				picks[level] = k
				emit(picks[:d])
			}
			level--
			if level >= 0 {
				picks[level]++
			}
			continue
		}
		sums[level+1] = sum + p.mass[i]
		level++
		picks[level] = i
	}
}
