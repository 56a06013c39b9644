// Package psmtab reads tabular PSM exports (TSV/CSV) carrying observed
// mass shifts.
//
// Required columns: spectrum_id, delta_mass. Optional columns:
// sequence, precursor_mass, protein, is_decoy.
package psmtab

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Record is one PSM row with an observed mass shift.
type Record struct {
	SpectrumID    string
	Sequence      string
	DeltaMass     float64
	PrecursorMass float64 // 0 when absent
	Protein       string  // accession in the protein database, optional
	IsDecoy       bool
}

// Read parses a PSM table. The first non-empty line is the header; the
// delimiter (tab or comma) is taken from it.
func Read(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	// PSM exports can have long lines (full protein lists etc.)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

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
		header = strings.Split(line, sep)
		break
	}
	if header == nil {
		if err := scanner.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("psmtab: empty input")
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"spectrum_id", "delta_mass"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("psmtab: missing required column %q", required)
		}
	}

	field := func(fields []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	var recs []Record
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		var rec Record
		rec.SpectrumID = field(fields, "spectrum_id")
		rec.Sequence = strings.ToUpper(field(fields, "sequence"))
		rec.Protein = field(fields, "protein")

		deltaStr := field(fields, "delta_mass")
		delta, err := strconv.ParseFloat(deltaStr, 64)
		if err != nil {
			return nil, fmt.Errorf("psmtab: line %d: invalid delta_mass %q: %w",
				lineNum, deltaStr, err)
		}
		rec.DeltaMass = delta

		if s := field(fields, "precursor_mass"); s != "" {
			rec.PrecursorMass, err = strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("psmtab: line %d: invalid precursor_mass %q: %w",
					lineNum, s, err)
			}
		}
		if s := field(fields, "is_decoy"); s != "" {
			rec.IsDecoy = s == "1" || strings.EqualFold(s, "true")
		}
		recs = append(recs, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("psmtab: %w", err)
	}
	return recs, nil
}
