// Package massshift resolves observed residual mass differences from
// open/error-tolerant peptide searches into ranked combinations of known
// chemical modifications.
package massshift

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PosClass restricts where on a peptide a modification may be placed.
type PosClass int

const (
	PosAnywhere PosClass = iota
	PosAnyNTerm
	PosAnyCTerm
	PosProteinNTerm
	PosProteinCTerm
)

func (p PosClass) String() string {
	switch p {
	case PosAnyNTerm:
		return "any-n-term"
	case PosAnyCTerm:
		return "any-c-term"
	case PosProteinNTerm:
		return "protein-n-term"
	case PosProteinCTerm:
		return "protein-c-term"
	}
	return "anywhere"
}

// Site is one admissible placement of a modification: a residue
// (single letter amino acid code, empty for "any residue") and a
// position class.
type Site struct {
	Residue  string
	Position PosClass
}

// Terminal reports whether the site is restricted to a terminus.
func (s Site) Terminal() bool {
	return s.Position != PosAnywhere
}

// Modification is a validated reference modification. Instances are
// owned by a Catalog and must not be mutated after load.
type Modification struct {
	ID             string  // stable identifier, e.g. Unimod accession
	Name           string  // human readable label
	DeltaMass      float64 // signed monoisotopic mass contribution
	Targets        []Site  // empty = unrestricted
	Classification string  // ranking prior tag, e.g. "artifact"
}

// RawModification is a loosely typed record as produced by catalog
// loaders (tabular files, XML dumps). It is re-validated into a
// Modification by LoadCatalog; downstream code never sees raw fields.
type RawModification struct {
	ID             string
	Name           string
	Mass           string   // numeric text, validated at load time
	Sites          []string // "residue@position" forms, see ParseSite
	Classification string
}

// ParseSite parses a target-site string into a Site. Accepted forms:
//
//	"M"              residue M, anywhere
//	"M@anywhere"     same
//	"K@any-n-term"   residue K at peptide N-terminus
//	"@any-c-term"    any residue at peptide C-terminus
//
// Position names follow the Unimod position classes. The boolean
// return is false for empty or unrecognized strings, which callers
// treat as unrestricted rather than as an error.
func ParseSite(s string) (Site, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Site{}, false
	}
	var site Site
	residue, pos, found := strings.Cut(s, "@")
	site.Residue = strings.ToUpper(strings.TrimSpace(residue))
	if !found {
		return site, site.Residue != ""
	}
	switch normalizePos(pos) {
	case "anywhere":
		site.Position = PosAnywhere
	case "anynterm", "nterm":
		site.Position = PosAnyNTerm
	case "anycterm", "cterm":
		site.Position = PosAnyCTerm
	case "proteinnterm":
		site.Position = PosProteinNTerm
	case "proteincterm":
		site.Position = PosProteinCTerm
	default:
		return Site{}, false
	}
	return site, true
}

func normalizePos(s string) string {
	s = strings.ToLower(s)
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' || r == '_' {
			return -1
		}
		return r
	}, s)
	return s
}

// validate converts a raw record into a strict Modification.
func (r RawModification) validate() (Modification, error) {
	var m Modification
	if strings.TrimSpace(r.ID) == "" {
		return m, fmt.Errorf("%w: record %q has no id", ErrCatalogLoad, r.Name)
	}
	mass, err := strconv.ParseFloat(strings.TrimSpace(r.Mass), 64)
	if err != nil || math.IsNaN(mass) || math.IsInf(mass, 0) {
		return m, fmt.Errorf("%w: modification %s: non-numeric mass %q",
			ErrCatalogLoad, r.ID, r.Mass)
	}
	m.ID = strings.TrimSpace(r.ID)
	m.Name = strings.TrimSpace(r.Name)
	if m.Name == "" {
		m.Name = m.ID
	}
	m.DeltaMass = mass
	m.Classification = strings.TrimSpace(r.Classification)
	for _, s := range r.Sites {
		if site, ok := ParseSite(s); ok {
			m.Targets = append(m.Targets, site)
		}
	}
	return m, nil
}
