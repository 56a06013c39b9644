package massshift

// Context is the optional peptide sequence context of a query, used to
// restrict the modification pool to chemically feasible candidates.
type Context struct {
	Sequence string // peptide residues, single letter upper case

	// Existing modifications block their site for further placement.
	NTermOccupied bool
	CTermOccupied bool
	Occupied      []bool // per residue, optional; nil = all free

	// Peptide position within the protein, for protein-terminal
	// modifications.
	ProteinNTerm bool
	ProteinCTerm bool

	// Protein residues immediately flanking the peptide, in protein
	// order. Amino-acid-addition candidates are only feasible when
	// their residues match a flank; empty flanks leave them
	// unrestricted.
	PrecedingResidues string
	FollowingResidues string
}

func (c *Context) occupied(i int) bool {
	return c.Occupied != nil && i < len(c.Occupied) && c.Occupied[i]
}

// SiteLoc is one feasible placement within a context: a 0-based residue
// index, or a terminus (Index -1, Term set).
type SiteLoc struct {
	Index int
	Term  PosClass
}

// Compatible reports whether a modification can be placed somewhere in
// the given context. A nil context, or a modification without target
// restrictions, is always compatible. Compatibility is evaluated
// before combination search, restricting the effective search pool, so
// infeasible modifications never participate in deep combinations.
func Compatible(m Modification, ctx *Context) bool {
	if ctx == nil {
		return true
	}
	if m.Classification == ClassAAAddition {
		return flankMatch(m.Name, ctx)
	}
	if len(m.Targets) == 0 {
		return true
	}
	return len(FeasibleSites(m, ctx)) > 0
}

// flankMatch reports whether the residues of an amino-acid-addition
// candidate actually precede or follow the peptide in the protein. The
// candidate's residues are a canonical (sorted) multiset, so the flank
// is compared order insensitively. Without flank information the
// candidate stays unrestricted.
func flankMatch(residues string, ctx *Context) bool {
	if ctx.PrecedingResidues == "" && ctx.FollowingResidues == "" {
		return true
	}
	k := len(residues)
	if pre := ctx.PrecedingResidues; len(pre) >= k &&
		sortResidues(pre[len(pre)-k:]) == residues {
		return true
	}
	if post := ctx.FollowingResidues; len(post) >= k &&
		sortResidues(post[:k]) == residues {
		return true
	}
	return false
}

func sortResidues(s string) string {
	b := []byte(s)
	// Flanks are at most a few residues
	for i := 1; i < len(b); i++ {
		for j := i; j > 0 && b[j] < b[j-1]; j-- {
			b[j], b[j-1] = b[j-1], b[j]
		}
	}
	return string(b)
}

// FeasibleSites lists the admissible placements of a modification in a
// context, in sequence order with terminal placements first. For an
// unrestricted modification it returns nil: any site is admissible and
// enumerating them adds no information.
func FeasibleSites(m Modification, ctx *Context) []SiteLoc {
	if ctx == nil || len(m.Targets) == 0 {
		return nil
	}
	var locs []SiteLoc
	seenTerm := map[PosClass]bool{}
	seenIdx := map[int]bool{}
	seq := ctx.Sequence
	for _, t := range m.Targets {
		switch t.Position {
		case PosAnyNTerm, PosProteinNTerm:
			if t.Position == PosProteinNTerm && !ctx.ProteinNTerm {
				continue
			}
			if ctx.NTermOccupied || seenTerm[PosAnyNTerm] {
				continue
			}
			if t.Residue != "" && (len(seq) == 0 || seq[:1] != t.Residue) {
				continue
			}
			seenTerm[PosAnyNTerm] = true
			locs = append(locs, SiteLoc{Index: -1, Term: t.Position})
		case PosAnyCTerm, PosProteinCTerm:
			if t.Position == PosProteinCTerm && !ctx.ProteinCTerm {
				continue
			}
			if ctx.CTermOccupied || seenTerm[PosAnyCTerm] {
				continue
			}
			if t.Residue != "" && (len(seq) == 0 || seq[len(seq)-1:] != t.Residue) {
				continue
			}
			seenTerm[PosAnyCTerm] = true
			locs = append(locs, SiteLoc{Index: -1, Term: t.Position})
		default:
			for i := 0; i < len(seq); i++ {
				if ctx.occupied(i) || seenIdx[i] {
					continue
				}
				if t.Residue != "" && seq[i:i+1] != t.Residue {
					continue
				}
				seenIdx[i] = true
				locs = append(locs, SiteLoc{Index: i, Term: PosAnywhere})
			}
		}
	}
	// Terminal placements first, then residues in sequence order.
	sortSiteLocs(locs)
	return locs
}

func sortSiteLocs(locs []SiteLoc) {
	// Small slices; insertion sort keeps this allocation free.
	for i := 1; i < len(locs); i++ {
		for j := i; j > 0 && siteLocLess(locs[j], locs[j-1]); j-- {
			locs[j], locs[j-1] = locs[j-1], locs[j]
		}
	}
}

func siteLocLess(a, b SiteLoc) bool {
	if (a.Index < 0) != (b.Index < 0) {
		return a.Index < 0
	}
	if a.Index < 0 {
		return a.Term < b.Term
	}
	return a.Index < b.Index
}
