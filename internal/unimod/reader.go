// Package unimod reads modification definitions from Unimod XML dumps
// into raw catalog records.
package unimod

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/524D/mzshift/massshift"
)

var ErrNoModifications = errors.New("unimod: no modification records found")

// Read reads a Unimod XML dump from an io.Reader
func Read(reader io.Reader) (Unimod, error) {
	var u Unimod
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// The dump may be wrapped in other elements; skip ahead to the
	// unimod element and decode only that.
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return u, tokenErr
		}
		switch t := t.(type) {
		case xml.StartElement:
			if t.Name.Local == "unimod" {
				if err := d.DecodeElement(&u.content, &t); err != nil {
					return u, err
				}
				return u, nil
			}
		}
	}
	return u, ErrNoModifications
}

// NumMods returns the number of modification entries in the dump,
// including entries that Records filters out.
func (u *Unimod) NumMods() int { return len(u.content.Mods) }

// Records converts the dump into raw catalog records. Following common
// open-search practice, user-submitted entries, crosslinkers and
// isobaric labelling reagents ("plex" reagents) are skipped, as are
// specificities classified as isotopic labels. One record per
// modification is produced; its sites merge the remaining
// specificities.
func (u *Unimod) Records() []massshift.RawModification {
	recs := make([]massshift.RawModification, 0, len(u.content.Mods))
	for _, m := range u.content.Mods {
		if m.UsernameOfPoster != "" && m.UsernameOfPoster != "unimod" {
			continue
		}
		if strings.Contains(m.Title, "Xlink") || strings.Contains(m.Title, "plex") {
			continue
		}
		var sites []string
		classification := ""
		for _, sp := range m.Specificities {
			if sp.Classification == "Isotopic label" {
				continue
			}
			if classification == "" {
				classification = sp.Classification
			}
			sites = append(sites, siteString(sp))
		}
		if len(m.Specificities) > 0 && len(sites) == 0 {
			// Isotopic label only
			continue
		}
		recs = append(recs, massshift.RawModification{
			ID:             "UNIMOD:" + m.RecordID,
			Name:           m.Title,
			Mass:           m.Delta.MonoMass,
			Sites:          sites,
			Classification: classification,
		})
	}
	return recs
}

// siteString maps one Unimod specificity to the catalog's
// "residue@position" form. Unimod uses the site values "N-term" and
// "C-term" for terminal modifications without residue restriction.
func siteString(sp specificity) string {
	residue := sp.Site
	switch residue {
	case "N-term", "C-term":
		residue = ""
	}
	switch sp.Position {
	case "Any N-term", "N-term":
		return residue + "@any-n-term"
	case "Any C-term", "C-term":
		return residue + "@any-c-term"
	case "Protein N-term":
		return residue + "@protein-n-term"
	case "Protein C-term":
		return residue + "@protein-c-term"
	}
	return residue + "@anywhere"
}
