// This file contains code to help debugging, and is
// separated in from the rest in order not to litter
// the main code with debugging stuff

package main

import (
	"flag"
	"fmt"

	"github.com/524D/mzshift/massshift"
)

var debugQueries *string // Print debug output for given query range

func init() {
	debugQueries = flag.String("debug", "",
		"Print debug output for given query `range` e.g. 3:6")
}

func debugLogResults(results []massshift.MatchResult, par params) {
	if *debugQueries != `` {
		debugMin, debugMax, _ := parseIntRange(*debugQueries, 0, len(results))
		for i, res := range results {
			if i >= debugMin && i <= debugMax {
				fmt.Printf("Query:%d spectrum:%s delta:%f tol:%f Da exactZero:%t\n",
					i, res.Query.SpectrumID, res.Query.ObservedDelta,
					res.Query.EffectiveTol(), res.IsExactZero)
				for rank, c := range res.Candidates {
					fmt.Printf("%d mods:%s total:%f err:%f", rank+1, c.IDString(), c.TotalMass, c.Error)
					if c.Sites != nil {
						fmt.Printf(" sites:%s", formatSites(c))
					}
					fmt.Printf("\n")
				}
			}
		}
	}
}
