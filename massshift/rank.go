package massshift

import (
	"math"
	"sort"
)

// Rank orders candidates best first:
//
//  1. combination size ascending (parsimony),
//  2. absolute mass error ascending,
//  3. summed classification prior descending,
//  4. canonical id string ascending (deterministic final tie break).
//
// Priors map classification tags to weights; tags without an entry get
// the lowest configured weight (uniform zero when no priors are given).
// Rank is pure: the input slice is not modified.
func Rank(cands []Candidate, priors map[string]float64) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	low := lowestPrior(priors)
	priorSum := func(c Candidate) float64 {
		s := 0.0
		for _, m := range c.Mods {
			if w, ok := priors[m.Classification]; ok {
				s += w
			} else {
				s += low
			}
		}
		return s
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Size() != b.Size() {
			return a.Size() < b.Size()
		}
		ea, eb := math.Abs(a.Error), math.Abs(b.Error)
		if ea != eb {
			return ea < eb
		}
		pa, pb := priorSum(a), priorSum(b)
		if pa != pb {
			return pa > pb
		}
		return a.IDString() < b.IDString()
	})
	return out
}

func lowestPrior(priors map[string]float64) float64 {
	low := math.Inf(1)
	for _, w := range priors {
		if w < low {
			low = w
		}
	}
	if math.IsInf(low, 1) {
		return 0
	}
	return low
}
