package massshift

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// The catalog used throughout the search tests: common modifications
// with 4-decimal masses.
func testSearchCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadCatalog([]RawModification{
		{ID: "UNIMOD:35", Name: "Oxidation", Mass: "15.9949",
			Sites: []string{"M", "W"}, Classification: "Artefact"},
		{ID: "UNIMOD:1", Name: "Acetyl", Mass: "42.0106",
			Sites: []string{"K"}, Classification: "Multiple"},
		{ID: "UNIMOD:21", Name: "Phospho", Mass: "79.9663",
			Sites: []string{"S", "T", "Y"}, Classification: "Post-translational"},
		{ID: "UNIMOD:4", Name: "Carbamidomethyl", Mass: "57.0215",
			Sites: []string{"C"}, Classification: "Chemical derivative"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return cat
}

func candIDs(cands []Candidate) []string {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.IDString()
	}
	return ids
}

func TestSearchSingle(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	cands, err := pool.search(context.Background(),
		searchSpec{target: 15.9949, eps: 0.01, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %v", len(cands), candIDs(cands))
	}
	if cands[0].IDString() != "UNIMOD:35" {
		t.Errorf("Expected UNIMOD:35, got %s", cands[0].IDString())
	}
	if math.Abs(cands[0].Error) > 1e-9 {
		t.Errorf("Expected error ~0, got %g", cands[0].Error)
	}
}

func TestSearchNoMatch(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	cands, err := pool.search(context.Background(),
		searchSpec{target: 57.9999, eps: 0.005, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("Expected no candidates, got %v", candIDs(cands))
	}
}

func TestSearchPair(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	target := 15.9949 + 79.9663
	cands, err := pool.search(context.Background(),
		searchSpec{target: target, eps: 0.01, maxDepth: 2})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) != 1 {
		t.Fatalf("Expected 1 candidate, got %d: %v", len(cands), candIDs(cands))
	}
	// Mods are in canonical id order
	if diff := cmp.Diff([]string{"UNIMOD:21+UNIMOD:35"}, candIDs(cands)); diff != "" {
		t.Errorf("Candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchRepeatedMod(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	cands, err := pool.search(context.Background(),
		searchSpec{target: 2 * 15.9949, eps: 0.001, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff([]string{"UNIMOD:35+UNIMOD:35"}, candIDs(cands)); diff != "" {
		t.Errorf("Candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchDepth3(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	cands, err := pool.search(context.Background(),
		searchSpec{target: 3 * 15.9949, eps: 0.001, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff([]string{"UNIMOD:35+UNIMOD:35+UNIMOD:35"}, candIDs(cands)); diff != "" {
		t.Errorf("Candidate mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchToleranceInvariant(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	for _, target := range []float64{10, 58.0, 100, 137.98, 170} {
		cands, err := pool.search(context.Background(),
			searchSpec{target: target, eps: 0.05, maxDepth: 4, exhaustive: true})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		seen := map[string]bool{}
		for _, c := range cands {
			if math.Abs(target-c.TotalMass) > 0.05 {
				t.Errorf("target %f: candidate %s outside tolerance (total %f)",
					target, c.IDString(), c.TotalMass)
			}
			if seen[c.IDString()] {
				t.Errorf("target %f: duplicate candidate %s", target, c.IDString())
			}
			seen[c.IDString()] = true
		}
	}
}

func TestSearchParsimonyStop(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()

	// Both Carbamidomethyl (57.0215) and Oxidation+Acetyl (58.0055)
	// lie within 1.0 of the target. The default search stops at the
	// shallowest matching depth.
	cands, err := pool.search(context.Background(),
		searchSpec{target: 57.5, eps: 1.0, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if diff := cmp.Diff([]string{"UNIMOD:4"}, candIDs(cands)); diff != "" {
		t.Errorf("Candidate mismatch (-want +got):\n%s", diff)
	}

	// Exhaustive search keeps going and finds the pair as well.
	cands, err = pool.search(context.Background(),
		searchSpec{target: 57.5, eps: 1.0, maxDepth: 2, exhaustive: true})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) < 2 {
		t.Fatalf("Expected at least 2 candidates, got %v", candIDs(cands))
	}
}

func TestSearchCancelled(t *testing.T) {
	pool := NewMassIndex(testSearchCatalog(t)).Pool()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pool.search(ctx, searchSpec{target: 15.9949, eps: 0.01, maxDepth: 3})
	if !errors.Is(err, ErrSearchCancelled) {
		t.Errorf("Expected ErrSearchCancelled, got: %v", err)
	}
}

func TestSearchRestrictedPoolBounds(t *testing.T) {
	idx := NewMassIndex(testSearchCatalog(t))
	pool := idx.Restrict(func(m Modification) bool { return m.ID != "UNIMOD:35" })

	// Oxidation is out of the pool, so 3x its mass must stay
	// unexplained even at depth 3.
	cands, err := pool.search(context.Background(),
		searchSpec{target: 3 * 15.9949, eps: 0.001, maxDepth: 3})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(cands) != 0 {
		t.Errorf("Expected no candidates, got %v", candIDs(cands))
	}
}
