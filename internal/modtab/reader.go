// Package modtab reads tabular (TSV/CSV) modification lists into raw
// catalog records.
//
// Expected columns: id, mass (required), name, sites, classification
// (optional). Sites are ";"-separated "residue@position" strings.
package modtab

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/524D/mzshift/massshift"
)

// Read parses a modification table. The first non-empty line is the
// header; the delimiter (tab or comma) is taken from it.
func Read(r io.Reader) ([]massshift.RawModification, error) {
	scanner := bufio.NewScanner(r)

	var header []string
	sep := "\t"
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.Contains(line, "\t") {
			sep = ","
		}
		header = splitFields(line, sep)
		break
	}
	if header == nil {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("modtab: empty input")
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(h)] = i
	}
	for _, required := range []string{"id", "mass"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("modtab: missing required column %q", required)
		}
	}

	field := func(fields []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return fields[i]
	}

	var recs []massshift.RawModification
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := splitFields(line, sep)
		if len(fields) < 2 {
			return nil, fmt.Errorf("modtab: line %d: expected at least 2 fields", lineNum)
		}
		rec := massshift.RawModification{
			ID:             field(fields, "id"),
			Name:           field(fields, "name"),
			Mass:           field(fields, "mass"),
			Classification: field(fields, "classification"),
		}
		if s := field(fields, "sites"); s != "" {
			for _, site := range strings.Split(s, ";") {
				if site = strings.TrimSpace(site); site != "" {
					rec.Sites = append(rec.Sites, site)
				}
			}
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("modtab: %w", err)
	}
	return recs, nil
}

func splitFields(line, sep string) []string {
	fields := strings.Split(line, sep)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}
