// Copyright 2024 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/524D/mzshift/massshift"
)

// writeTSV writes one row per ranked candidate. Queries without any
// explanation get a single row with an empty modification list, so
// every valid input query appears in the report. Failed queries leave
// a zero-valued result slot; those are skipped here and reported in
// the log and the JSON failure list instead.
func writeTSV(w io.Writer, results []massshift.MatchResult, failed []massshift.QueryError) error {
	skip := make(map[int]bool, len(failed))
	for _, qe := range failed {
		skip[qe.Index] = true
	}
	_, err := fmt.Fprintln(w, "spectrum_id\tdelta_mass\trank\tn_mods\tmodifications\ttotal_mass\terror\texact_zero\tsites")
	if err != nil {
		return err
	}
	for i, res := range results {
		if skip[i] {
			continue
		}
		if len(res.Candidates) == 0 {
			_, err = fmt.Fprintf(w, "%s\t%f\t\t\t\t\t\t%t\t\n",
				res.Query.SpectrumID, res.Query.ObservedDelta, res.IsExactZero)
			if err != nil {
				return err
			}
			continue
		}
		for rank, c := range res.Candidates {
			_, err = fmt.Fprintf(w, "%s\t%f\t%d\t%d\t%s\t%f\t%f\t%t\t%s\n",
				res.Query.SpectrumID, res.Query.ObservedDelta,
				rank+1, c.Size(), modNames(c), c.TotalMass, c.Error,
				res.IsExactZero, formatSites(c))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func modNames(c massshift.Candidate) string {
	names := make([]string, len(c.Mods))
	for i, m := range c.Mods {
		names[i] = m.Name
	}
	return strings.Join(names, "+")
}

// formatSites renders the feasible placements of a candidate, one
// ";"-separated group per modification, positions 1-based.
func formatSites(c massshift.Candidate) string {
	if c.Sites == nil {
		return ""
	}
	groups := make([]string, len(c.Sites))
	for i, locs := range c.Sites {
		pos := make([]string, len(locs))
		for j, loc := range locs {
			pos[j] = formatSiteLoc(loc)
		}
		groups[i] = strings.Join(pos, ",")
	}
	return strings.Join(groups, ";")
}

func formatSiteLoc(loc massshift.SiteLoc) string {
	if loc.Index < 0 {
		switch loc.Term {
		case massshift.PosAnyNTerm, massshift.PosProteinNTerm:
			return "N-term"
		default:
			return "C-term"
		}
	}
	return strconv.Itoa(loc.Index + 1)
}

// JSON output structures. Changes that are not backwards compatible
// must bump outputFormatVersion.
type candidateV1 struct {
	Rank      int      `json:"rank"`
	ModIDs    []string `json:"mod_ids"`
	ModNames  []string `json:"mod_names"`
	TotalMass float64  `json:"total_mass"`
	Error     float64  `json:"error"`
	Sites     []string `json:"sites,omitempty"`
}

type resultV1 struct {
	SpectrumID string        `json:"spectrum_id"`
	DeltaMass  float64       `json:"delta_mass"`
	ExactZero  bool          `json:"exact_zero"`
	Candidates []candidateV1 `json:"candidates"`
}

type failureV1 struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

type reportV1 struct {
	Program       string      `json:"program"`
	Version       string      `json:"version"`
	FormatVersion string      `json:"format_version"`
	Offset        float64     `json:"offset"`
	Results       []resultV1  `json:"results"`
	Failures      []failureV1 `json:"failures,omitempty"`
}

func writeJSON(w io.Writer, results []massshift.MatchResult,
	failed []massshift.QueryError, offset float64) error {
	rep := reportV1{
		Program:       progName,
		Version:       progVersion,
		FormatVersion: outputFormatVersion,
		Offset:        offset,
		Results:       make([]resultV1, 0, len(results)),
	}
	for _, res := range results {
		rv := resultV1{
			SpectrumID: res.Query.SpectrumID,
			DeltaMass:  res.Query.ObservedDelta,
			ExactZero:  res.IsExactZero,
			Candidates: make([]candidateV1, 0, len(res.Candidates)),
		}
		for rank, c := range res.Candidates {
			cv := candidateV1{
				Rank:      rank + 1,
				ModIDs:    make([]string, len(c.Mods)),
				ModNames:  make([]string, len(c.Mods)),
				TotalMass: c.TotalMass,
				Error:     c.Error,
			}
			for i, m := range c.Mods {
				cv.ModIDs[i] = m.ID
				cv.ModNames[i] = m.Name
			}
			for _, locs := range c.Sites {
				pos := make([]string, len(locs))
				for j, loc := range locs {
					pos[j] = formatSiteLoc(loc)
				}
				cv.Sites = append(cv.Sites, strings.Join(pos, ","))
			}
			rv.Candidates = append(rv.Candidates, cv)
		}
		rep.Results = append(rep.Results, rv)
	}
	for _, qe := range failed {
		rep.Failures = append(rep.Failures, failureV1{Index: qe.Index, Error: qe.Err.Error()})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

type summary struct {
	total      int
	explained  int
	exactZero  int
	meanAbsErr float64
	medAbsErr  float64
}

// summarize computes report statistics over the top candidate of each
// explained query.
func summarize(results []massshift.MatchResult) summary {
	var s summary
	s.total = len(results)
	var absErrs []float64
	for _, res := range results {
		if res.IsExactZero {
			s.exactZero++
		}
		if len(res.Candidates) > 0 {
			s.explained++
			absErrs = append(absErrs, math.Abs(res.Candidates[0].Error))
		}
	}
	if len(absErrs) > 0 {
		sort.Float64s(absErrs)
		s.meanAbsErr = stat.Mean(absErrs, nil)
		s.medAbsErr = stat.Quantile(0.5, stat.Empirical, absErrs, nil)
	}
	return s
}

func (s summary) print(w io.Writer) {
	fmt.Fprintf(w, "%d of %d mass shifts explained (%d within tolerance of zero)\n",
		s.explained, s.total, s.exactZero)
	if s.explained > 0 {
		fmt.Fprintf(w, "Top candidate error: mean abs %g, median abs %g\n",
			s.meanAbsErr, s.medAbsErr)
	}
}
