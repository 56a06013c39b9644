package massshift

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// TolUnit selects how Query.Tol is interpreted.
type TolUnit int

const (
	TolPPM TolUnit = iota // parts per million, the default
	TolDa                 // absolute daltons
)

// ParseTolUnit parses "ppm" or "da" (case insensitive).
func ParseTolUnit(s string) (TolUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ppm":
		return TolPPM, nil
	case "da", "dalton", "abs":
		return TolDa, nil
	}
	return 0, fmt.Errorf("%w: unknown tolerance unit %q", ErrInvalidQuery, s)
}

// Mode selects whether sequence context restricts the search pool.
type Mode int

const (
	Unrestricted Mode = iota
	ContextAware
)

// ParseMode parses "unrestricted" or "context-aware".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unrestricted":
		return Unrestricted, nil
	case "context-aware", "contextaware", "context":
		return ContextAware, nil
	}
	return 0, fmt.Errorf("invalid localization mode %q", s)
}

// Query asks for an explanation of one observed mass shift.
type Query struct {
	SpectrumID    string  // caller's identifier, passed through to the result
	ObservedDelta float64 // mass difference to explain
	Tol           float64 // tolerance in Unit
	Unit          TolUnit

	// PrecursorMass is the neutral precursor mass, used as the ppm
	// reference when known. When zero, ppm tolerances fall back to the
	// magnitude of the observed delta.
	PrecursorMass float64

	Context *Context // optional sequence context
	MaxMods int      // max combination size; 0 = engine default
}

func (q Query) validate() error {
	if math.IsNaN(q.ObservedDelta) || math.IsInf(q.ObservedDelta, 0) {
		return fmt.Errorf("%w: non-finite delta mass", ErrInvalidQuery)
	}
	if math.IsNaN(q.Tol) || math.IsInf(q.Tol, 0) || q.Tol < 0 {
		return fmt.Errorf("%w: invalid tolerance %v", ErrInvalidQuery, q.Tol)
	}
	if q.MaxMods < 0 {
		return fmt.Errorf("%w: negative max combination size %d", ErrInvalidQuery, q.MaxMods)
	}
	if math.IsNaN(q.PrecursorMass) || math.IsInf(q.PrecursorMass, 0) || q.PrecursorMass < 0 {
		return fmt.Errorf("%w: invalid precursor mass %v", ErrInvalidQuery, q.PrecursorMass)
	}
	return nil
}

// EffectiveTol resolves the tolerance to absolute daltons.
func (q Query) EffectiveTol() float64 {
	if q.Unit == TolDa {
		return q.Tol
	}
	ref := q.PrecursorMass
	if ref == 0 {
		ref = math.Abs(q.ObservedDelta)
	}
	return q.Tol * ref / 1e6
}

// MatchResult is the outcome of resolving one query.
type MatchResult struct {
	Query      Query
	Candidates []Candidate // ranked best first
	// IsExactZero is true when the observed delta is within tolerance
	// of zero, i.e. no modification is needed to explain it.
	IsExactZero bool
}

// QueryError reports a failed query within a batch.
type QueryError struct {
	Index int
	Err   error
}

func (e QueryError) Error() string {
	return fmt.Sprintf("query %d: %v", e.Index, e.Err)
}

func (e QueryError) Unwrap() error { return e.Err }

// DefaultMaxMods bounds the combination size when neither the query
// nor the engine configuration specifies one.
const DefaultMaxMods = 3

// Config controls a resolution engine.
type Config struct {
	MaxMods      int                // default combination size bound (0 = DefaultMaxMods)
	Exhaustive   bool               // search all depths up to the bound, not just the shallowest hit
	Priors       map[string]float64 // classification ranking priors
	Localization Mode
	Workers      int     // batch parallelism (0 = NumCPU)
	Offset       float64 // systematic delta-mass offset, subtracted from observed deltas
}

// Engine resolves mass-shift queries against one catalog snapshot.
// The engine and its index are immutable after New and safe for
// concurrent use.
type Engine struct {
	cat *Catalog
	idx *MassIndex
	cfg Config
}

// New builds an engine, including the mass index, from a catalog.
func New(cat *Catalog, cfg Config) *Engine {
	if cfg.MaxMods <= 0 {
		cfg.MaxMods = DefaultMaxMods
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	return &Engine{cat: cat, idx: NewMassIndex(cat), cfg: cfg}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog { return e.cat }

// Index returns the engine's mass index.
func (e *Engine) Index() *MassIndex { return e.idx }

// Resolve explains a single mass shift. An empty candidate list with a
// nil error means the shift is unexplained, which is a normal outcome.
// On cancellation the candidates found so far are returned together
// with an error wrapping ErrSearchCancelled.
func (e *Engine) Resolve(ctx context.Context, q Query) (MatchResult, error) {
	res := MatchResult{Query: q}
	if err := q.validate(); err != nil {
		return res, err
	}
	eps := q.EffectiveTol()
	target := q.ObservedDelta - e.cfg.Offset
	maxMods := q.MaxMods
	if maxMods == 0 {
		maxMods = e.cfg.MaxMods
	}

	pool := e.idx.Pool()
	if e.cfg.Localization == ContextAware && q.Context != nil {
		seqCtx := q.Context
		pool = e.idx.Restrict(func(m Modification) bool {
			return Compatible(m, seqCtx)
		})
	}

	cands, err := pool.search(ctx, searchSpec{
		target:     target,
		eps:        eps,
		maxDepth:   maxMods,
		exhaustive: e.cfg.Exhaustive,
	})
	if q.Context != nil {
		for i := range cands {
			annotateSites(&cands[i], q.Context)
		}
	}
	res.Candidates = Rank(cands, e.cfg.Priors)
	res.IsExactZero = math.Abs(target) <= eps
	return res, err
}

func annotateSites(c *Candidate, ctx *Context) {
	if len(c.Mods) == 0 {
		return
	}
	c.Sites = make([][]SiteLoc, len(c.Mods))
	for i, m := range c.Mods {
		c.Sites[i] = FeasibleSites(m, ctx)
	}
}

// ResolveBatch resolves an ordered sequence of independent queries
// using a worker pool over the shared read-only index. The returned
// results preserve input order; entries whose query failed are zero
// valued and reported in the failure list instead. A malformed query
// never aborts the batch; cancellation does, returning the work
// completed so far and a non-nil error.
func (e *Engine) ResolveBatch(ctx context.Context, queries []Query) ([]MatchResult, []QueryError, error) {
	results := make([]MatchResult, len(queries))
	errs := make([]error, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i := range queries {
		i := i
		g.Go(func() error {
			r, err := e.Resolve(gctx, queries[i])
			if err != nil {
				if errors.Is(err, ErrInvalidQuery) {
					errs[i] = err
					return nil
				}
				return err
			}
			results[i] = r
			return nil
		})
	}
	err := g.Wait()

	var failed []QueryError
	for i, qerr := range errs {
		if qerr != nil {
			failed = append(failed, QueryError{Index: i, Err: qerr})
		}
	}
	return results, failed, err
}
