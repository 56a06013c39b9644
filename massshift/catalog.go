package massshift

import (
	"fmt"
	"sort"
	"strconv"
)

// Catalog is an immutable collection of validated modifications.
// It is built once per session; hot reloading means building a new
// Catalog (and Engine) and swapping, never mutating a live one.
type Catalog struct {
	mods []Modification // sorted by ID
	byID map[string]int
}

// LoadCatalog validates raw records into a Catalog. It fails with an
// error wrapping ErrCatalogLoad on the first malformed record
// (missing id, non-numeric mass) or duplicate id.
func LoadCatalog(records []RawModification) (*Catalog, error) {
	c := &Catalog{
		mods: make([]Modification, 0, len(records)),
		byID: make(map[string]int, len(records)),
	}
	for _, r := range records {
		m, err := r.validate()
		if err != nil {
			return nil, err
		}
		if _, dup := c.byID[m.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrCatalogLoad, m.ID)
		}
		c.byID[m.ID] = 0 // reserved; indices assigned after sorting
		c.mods = append(c.mods, m)
	}
	sort.Slice(c.mods, func(i, j int) bool { return c.mods[i].ID < c.mods[j].ID })
	for i, m := range c.mods {
		c.byID[m.ID] = i
	}
	return c, nil
}

// Len returns the number of modifications in the catalog.
func (c *Catalog) Len() int { return len(c.mods) }

// Mod returns the modification at index i (0..Len()-1), in id order.
func (c *Catalog) Mod(i int) Modification { return c.mods[i] }

// Lookup returns the modification with the given id, or an error
// wrapping ErrNotFound.
func (c *Catalog) Lookup(id string) (Modification, error) {
	i, ok := c.byID[id]
	if !ok {
		return Modification{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c.mods[i], nil
}

// Monoisotopic masses of amino acid residues (minus H2O)
var residueMass = map[rune]float64{
	'A': 71.0371138,
	'C': 103.0091848,
	'D': 115.0269430,
	'E': 129.0425931,
	'F': 147.0684139,
	'G': 57.0214637,
	'H': 137.0589119,
	'I': 113.0840640,
	'K': 128.0949630,
	'L': 113.0840640,
	'M': 131.0404849,
	'N': 114.0429274,
	'P': 97.0527638,
	'Q': 128.0585775,
	'R': 156.1011110,
	'S': 87.0320284,
	'T': 101.0476785,
	'V': 99.0684139,
	'W': 186.0793129,
	'Y': 163.0633285,
}

const aaAlphabet = "ACDEFGHIKLMNPQRSTVWY"

// ClassAAAddition tags the pseudo-modifications generated by
// AminoAcidCombinations. Candidates carrying this classification are
// feasibility checked against the protein residues flanking the
// peptide when the query context provides them.
const ClassAAAddition = "AA addition"

// AminoAcidCombinations generates pseudo-modification records for all
// amino acid additions of length 1..n. A mass shift matching such a
// record indicates a missed or extended cleavage rather than a
// chemical modification. The records are meant to be appended to the
// raw record list before LoadCatalog.
func AminoAcidCombinations(n int) []RawModification {
	var recs []RawModification
	// Only alphabetically sorted strings are generated, so each
	// multiset of residues appears once.
	var gen func(prefix string, mass float64, depth int, start int)
	gen = func(prefix string, mass float64, depth int, start int) {
		if prefix != "" {
			recs = append(recs, RawModification{
				ID:             "AA:" + prefix,
				Name:           prefix,
				Mass:           strconv.FormatFloat(mass, 'f', -1, 64),
				Classification: ClassAAAddition,
			})
		}
		if depth == 0 {
			return
		}
		for i := start; i < len(aaAlphabet); i++ {
			aa := rune(aaAlphabet[i])
			gen(prefix+string(aa), mass+residueMass[aa], depth-1, i)
		}
	}
	gen("", 0, n, 0)
	return recs
}

// DefaultModifications returns a built-in list of common Unimod
// modifications, usable when no external catalog is given. Masses are
// monoisotopic.
func DefaultModifications() []RawModification {
	return []RawModification{
		{ID: "UNIMOD:1", Name: "Acetyl", Mass: "42.010565",
			Sites:          []string{"K", "@any-n-term"},
			Classification: "Multiple"},
		{ID: "UNIMOD:4", Name: "Carbamidomethyl", Mass: "57.021464",
			Sites:          []string{"C"},
			Classification: "Chemical derivative"},
		{ID: "UNIMOD:5", Name: "Carbamyl", Mass: "43.005814",
			Sites:          []string{"K", "@any-n-term"},
			Classification: "Artefact"},
		{ID: "UNIMOD:7", Name: "Deamidated", Mass: "0.984016",
			Sites:          []string{"N", "Q"},
			Classification: "Artefact"},
		{ID: "UNIMOD:21", Name: "Phospho", Mass: "79.966331",
			Sites:          []string{"S", "T", "Y"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:23", Name: "Dehydrated", Mass: "-18.010565",
			Sites:          []string{"S", "T"},
			Classification: "Chemical derivative"},
		{ID: "UNIMOD:27", Name: "Glu->pyro-Glu", Mass: "-18.010565",
			Sites:          []string{"E@any-n-term"},
			Classification: "Artefact"},
		{ID: "UNIMOD:28", Name: "Gln->pyro-Glu", Mass: "-17.026549",
			Sites:          []string{"Q@any-n-term"},
			Classification: "Artefact"},
		{ID: "UNIMOD:34", Name: "Methyl", Mass: "14.015650",
			Sites:          []string{"K", "R"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:35", Name: "Oxidation", Mass: "15.994915",
			Sites:          []string{"M", "W"},
			Classification: "Artefact"},
		{ID: "UNIMOD:36", Name: "Dimethyl", Mass: "28.031300",
			Sites:          []string{"K", "R"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:37", Name: "Trimethyl", Mass: "42.046950",
			Sites:          []string{"K"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:39", Name: "Methylthio", Mass: "45.987721",
			Sites:          []string{"C"},
			Classification: "Chemical derivative"},
		{ID: "UNIMOD:40", Name: "Sulfo", Mass: "79.956815",
			Sites:          []string{"S", "T", "Y"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:41", Name: "Hex", Mass: "162.052824",
			Sites:          []string{"S", "T"},
			Classification: "Glycosylation"},
		{ID: "UNIMOD:43", Name: "HexNAc", Mass: "203.079373",
			Sites:          []string{"S", "T", "N"},
			Classification: "Glycosylation"},
		{ID: "UNIMOD:58", Name: "Propionyl", Mass: "56.026215",
			Sites:          []string{"K", "@any-n-term"},
			Classification: "Multiple"},
		{ID: "UNIMOD:121", Name: "GG", Mass: "114.042927",
			Sites:          []string{"K"},
			Classification: "Post-translational"},
		{ID: "UNIMOD:312", Name: "Cysteinyl", Mass: "119.004099",
			Sites:          []string{"C"},
			Classification: "Multiple"},
		{ID: "UNIMOD:354", Name: "Nitro", Mass: "44.985078",
			Sites:          []string{"W", "Y"},
			Classification: "Chemical derivative"},
		{ID: "UNIMOD:385", Name: "Ammonia-loss", Mass: "-17.026549",
			Sites:          []string{"N", "C@any-n-term"},
			Classification: "Artefact"},
		{ID: "UNIMOD:425", Name: "Dioxidation", Mass: "31.989829",
			Sites:          []string{"M", "W", "C"},
			Classification: "Artefact"},
		{ID: "UNIMOD:30", Name: "Cation:Na", Mass: "21.981943",
			Sites:          []string{"D", "E", "@any-c-term"},
			Classification: "Artefact"},
	}
}
