package massshift

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testIndexCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := LoadCatalog([]RawModification{
		{ID: "m1", Name: "one", Mass: "1.0"},
		{ID: "m2", Name: "two", Mass: "2.0"},
		{ID: "m5", Name: "five", Mass: "5.0"},
		{ID: "mneg", Name: "loss", Mass: "-2.9"},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	return cat
}

func TestRangeQuery(t *testing.T) {
	idx := NewMassIndex(testIndexCatalog(t))

	got := idx.RangeQuery(0.5, 2.5)
	ids := modIDs(got)
	if diff := cmp.Diff([]string{"m1", "m2"}, ids); diff != "" {
		t.Errorf("RangeQuery mismatch (-want +got):\n%s", diff)
	}

	// Bounds are inclusive
	got = idx.RangeQuery(1.0, 1.0)
	if len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("Expected exactly m1, got %v", modIDs(got))
	}

	// Negative masses sort first
	got = idx.RangeQuery(-10, 10)
	ids = modIDs(got)
	if diff := cmp.Diff([]string{"mneg", "m1", "m2", "m5"}, ids); diff != "" {
		t.Errorf("RangeQuery mismatch (-want +got):\n%s", diff)
	}

	if idx.RangeQuery(10, 20) != nil {
		t.Error("Expected nil for empty window")
	}
}

func TestPairRangeQuery(t *testing.T) {
	idx := NewMassIndex(testIndexCatalog(t))

	// Window [1.9, 3.1] holds 1+1=2, 5-2.9=2.1 and 1+2=3. Self pairs
	// are included, {A,B} appears once.
	got := idx.PairRangeQuery(1.9, 3.1)
	var pairs [][2]string
	for _, pr := range got {
		pairs = append(pairs, [2]string{pr[0].ID, pr[1].ID})
	}
	want := [][2]string{
		{"m1", "m1"},
		{"mneg", "m5"},
		{"m1", "m2"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("PairRangeQuery mismatch (-want +got):\n%s", diff)
	}
}

func TestRestrict(t *testing.T) {
	idx := NewMassIndex(testIndexCatalog(t))

	pool := idx.Restrict(func(m Modification) bool { return m.DeltaMass > 0 })
	if pool.Len() != 3 {
		t.Errorf("Expected 3 pool members, got %d", pool.Len())
	}
	if pool.MinMass() != 1.0 || pool.MaxMass() != 5.0 {
		t.Errorf("Expected bounds [1, 5], got [%f, %f]", pool.MinMass(), pool.MaxMass())
	}

	// Pairs with an excluded member are dropped: the 5-2.9=2.1 pair
	// from the unrestricted table must not show up.
	got := pool.PairRangeQuery(1.9, 3.1)
	var pairs [][2]string
	for _, pr := range got {
		pairs = append(pairs, [2]string{pr[0].ID, pr[1].ID})
	}
	want := [][2]string{
		{"m1", "m1"},
		{"m1", "m2"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("PairRangeQuery mismatch (-want +got):\n%s", diff)
	}

	empty := idx.Restrict(func(m Modification) bool { return false })
	if empty.Len() != 0 {
		t.Errorf("Expected empty pool, got %d members", empty.Len())
	}
	if !math.IsInf(empty.MinMass(), 1) || !math.IsInf(empty.MaxMass(), -1) {
		t.Errorf("Expected infinite bounds for empty pool, got [%f, %f]",
			empty.MinMass(), empty.MaxMass())
	}
	if empty.RangeQuery(-100, 100) != nil {
		t.Error("Expected no matches in empty pool")
	}
}

func modIDs(mods []Modification) []string {
	ids := make([]string, len(mods))
	for i, m := range mods {
		ids[i] = m.ID
	}
	return ids
}
