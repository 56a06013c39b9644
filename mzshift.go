// Copyright 2024 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/524D/mzshift/internal/config"
	"github.com/524D/mzshift/internal/fasta"
	"github.com/524D/mzshift/internal/fileutil"
	"github.com/524D/mzshift/internal/modtab"
	"github.com/524D/mzshift/internal/mzid"
	"github.com/524D/mzshift/internal/psmtab"
	"github.com/524D/mzshift/internal/unimod"
	"github.com/524D/mzshift/massshift"
)

// Program name and version, reported in JSON output
const progName = "mzShift"

var progVersion = `Unknown`

// Format of output, if it ever changes we should still be able to parse
// output from old versions
const outputFormatVersion = "1.0"

const massProton = float64(1.007276466879)

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Command line parameters
type params struct {
	psmFilename    *string // set from the last command line argument
	modsFilename   *string // modification database (Unimod XML or TSV/CSV)
	fastaFilename  *string // protein database for flanking-residue checks
	outFilename    *string // TSV report output
	jsonFilename   *string // optional JSON report output
	configFilename *string // optional TOML configuration file
	tolerance      *float64
	toleranceUnit  *string
	maxMods        *int
	exhaustive     *bool
	localization   *string
	workers        *int
	calibrate      *bool    // estimate systematic offset and resolve again
	aaCombo        *int     // add amino acid combinations up to this length
	decoys         *bool    // keep decoy PSMs
	priorsSpec     *string  // classification priors, e.g. 'Post-translational(1.0)Artefact(0.5)'
	verbosity      int      // verbosity of progress messages (infoDefault...)
	args           []string // additional values passed on the command line
}

var errRangeSpec = errors.New("invalid range specified")

// Parse string like "-12:6" into 2 values, -12 and 6
// Parameters min and max are the "default" min/max values,
// when a value is not specified (e.g. "-12:"), the default is assigned
func parseIntRange(r string, min int, max int) (int, int, error) {
	re := regexp.MustCompile(`\s*(\-?\d*):(\-?\d*)`)
	m := re.FindStringSubmatch(r)
	minOut := min
	maxOut := max
	if len(m) >= 2 && m[1] != "" {
		minOut, _ = strconv.Atoi(m[1])
		if minOut < min {
			minOut = min
		}
	}
	if len(m) >= 3 && m[2] != "" {
		maxOut, _ = strconv.Atoi(m[2])
		if maxOut > max {
			maxOut = max
		}
	}
	var err error
	if minOut > maxOut {
		err = errRangeSpec
		minOut = maxOut
	}
	return minOut, maxOut, err
}

// parsePriors parses a classification priors specification like
// 'Post-translational(1.0)Artefact(0.5)' into a weight map.
func parsePriors(spec string) (map[string]float64, error) {
	if spec == "" {
		return nil, nil
	}
	priors := make(map[string]float64)
	re := regexp.MustCompile(`([^\(]+)\(([^\)]*)\)`)
	for _, m := range re.FindAllStringSubmatch(spec, -1) {
		tag := strings.TrimSpace(m[1])
		if _, ok := priors[tag]; ok {
			return nil, errors.New(tag + ` defined more than once.`)
		}
		w, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return nil, errors.New(`Invalid prior for classification ` + tag)
		}
		priors[tag] = w
	}
	return priors, nil
}

// loadModRecords collects raw modification records: the built-in list
// or an external database, plus optional amino acid combination
// pseudo-modifications.
func loadModRecords(par params, cfg *config.Config) ([]massshift.RawModification, error) {
	var recs []massshift.RawModification
	if *par.modsFilename == "" {
		recs = massshift.DefaultModifications()
	} else {
		f, err := fileutil.Open(*par.modsFilename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if isXMLFile(*par.modsFilename) {
			u, err := unimod.Read(f)
			if err != nil {
				return nil, fmt.Errorf("unimod.Read: %w", err)
			}
			recs = u.Records()
		} else {
			recs, err = modtab.Read(f)
			if err != nil {
				return nil, err
			}
		}
	}
	if cfg.AACombo > 0 {
		recs = append(recs, massshift.AminoAcidCombinations(cfg.AACombo)...)
	}
	return recs, nil
}

func isXMLFile(path string) bool {
	for _, suffix := range []string{".gz", ".xz"} {
		path = strings.TrimSuffix(path, suffix)
	}
	return strings.EqualFold(filepath.Ext(path), ".xml")
}

// loadFasta reads the optional protein database used to verify
// amino-acid-addition candidates against the residues that actually
// flank each peptide in its protein.
func loadFasta(par params) (fasta.DB, error) {
	if *par.fastaFilename == "" {
		return nil, nil
	}
	f, err := fileutil.Open(*par.fastaFilename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return fasta.Read(f)
}

// maxFlankResidues bounds the stored protein flanks; amino acid
// combinations are at most this long (see config aa_combinations).
const maxFlankResidues = 3

// proteinFlanks locates the peptide in its protein and returns the
// residues immediately before and after it. Unknown proteins or
// peptides not found in them yield empty flanks, leaving amino acid
// addition candidates unrestricted.
func proteinFlanks(proteins fasta.DB, protein, peptide string) (pre, post string) {
	seq, ok := proteins.Sequence(protein)
	if !ok || peptide == "" {
		return "", ""
	}
	start := strings.Index(seq, peptide)
	if start < 0 {
		return "", ""
	}
	end := start + len(peptide)
	preStart := start - maxFlankResidues
	if preStart < 0 {
		preStart = 0
	}
	postEnd := end + maxFlankResidues
	if postEnd > len(seq) {
		postEnd = len(seq)
	}
	return seq[preStart:start], seq[end:postEnd]
}

// loadQueries reads the PSM file and converts each match into a
// mass-shift query. mzIdentML files are detected by extension, any
// other file is read as a TSV/CSV table.
func loadQueries(par params, cfg *config.Config, proteins fasta.DB) ([]massshift.Query, error) {
	unit, err := massshift.ParseTolUnit(cfg.ToleranceUnit)
	if err != nil {
		return nil, err
	}
	f, err := fileutil.Open(*par.psmFilename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	base := *par.psmFilename
	for _, suffix := range []string{".gz", ".xz"} {
		base = strings.TrimSuffix(base, suffix)
	}
	if strings.EqualFold(filepath.Ext(base), ".mzid") {
		return queriesFromMzID(f, cfg, unit)
	}
	return queriesFromTable(f, par, cfg, unit, proteins)
}

func queriesFromMzID(f io.Reader, cfg *config.Config, unit massshift.TolUnit) ([]massshift.Query, error) {
	m, err := mzid.Read(f)
	if err != nil {
		return nil, fmt.Errorf("mzid.Read: %w", err)
	}
	queries := make([]massshift.Query, 0, m.NumPSMs())
	for i := 0; i < m.NumPSMs(); i++ {
		psm, err := m.PSM(i)
		if err != nil {
			return nil, err
		}
		if !psm.PassedFilter || psm.Charge <= 0 {
			continue
		}
		z := float64(psm.Charge)
		q := massshift.Query{
			SpectrumID:    psm.SpecID,
			ObservedDelta: (psm.ExpMz - psm.CalcMz) * z,
			PrecursorMass: psm.ExpMz*z - z*massProton,
			Tol:           cfg.Tolerance,
			Unit:          unit,
			MaxMods:       cfg.MaxMods,
			Context:       contextFromPSM(psm),
		}
		queries = append(queries, q)
	}
	return queries, nil
}

// contextFromPSM builds the sequence context of an identified peptide.
// Sites that already carry a modification are marked occupied so they
// are not offered again for localization.
func contextFromPSM(psm mzid.PSM) *massshift.Context {
	if psm.PepSeq == "" {
		return nil
	}
	ctx := &massshift.Context{Sequence: strings.ToUpper(psm.PepSeq)}
	if len(psm.ModLocs) > 0 {
		ctx.Occupied = make([]bool, len(ctx.Sequence))
		for _, loc := range psm.ModLocs {
			switch {
			case loc == 0:
				ctx.NTermOccupied = true
			case loc == len(ctx.Sequence)+1:
				ctx.CTermOccupied = true
			case loc >= 1 && loc <= len(ctx.Sequence):
				ctx.Occupied[loc-1] = true
			}
		}
	}
	return ctx
}

func queriesFromTable(f io.Reader, par params, cfg *config.Config, unit massshift.TolUnit, proteins fasta.DB) ([]massshift.Query, error) {
	recs, err := psmtab.Read(f)
	if err != nil {
		return nil, err
	}
	queries := make([]massshift.Query, 0, len(recs))
	for _, rec := range recs {
		if rec.IsDecoy && !*par.decoys {
			continue
		}
		q := massshift.Query{
			SpectrumID:    rec.SpectrumID,
			ObservedDelta: rec.DeltaMass,
			PrecursorMass: rec.PrecursorMass,
			Tol:           cfg.Tolerance,
			Unit:          unit,
			MaxMods:       cfg.MaxMods,
		}
		if rec.Sequence != "" {
			q.Context = &massshift.Context{Sequence: rec.Sequence}
			if proteins != nil && rec.Protein != "" {
				q.Context.PrecedingResidues, q.Context.FollowingResidues =
					proteinFlanks(proteins, rec.Protein, rec.Sequence)
			}
		}
		queries = append(queries, q)
	}
	return queries, nil
}

func engineConfig(cfg *config.Config, priors map[string]float64) (massshift.Config, error) {
	mode, err := massshift.ParseMode(cfg.Localization)
	if err != nil {
		return massshift.Config{}, err
	}
	if priors == nil {
		priors = cfg.Priors
	}
	return massshift.Config{
		MaxMods:      cfg.MaxMods,
		Exhaustive:   cfg.Exhaustive,
		Priors:       priors,
		Localization: mode,
		Workers:      cfg.Workers,
	}, nil
}

// resolveAll runs batch resolution, optionally followed by offset
// calibration and a second pass with the estimated offset applied.
func resolveAll(ctx context.Context, par params, ecfg massshift.Config,
	cat *massshift.Catalog, queries []massshift.Query) (
	[]massshift.MatchResult, []massshift.QueryError, float64, error) {

	engine := massshift.New(cat, ecfg)
	t := time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Resolving %d mass shifts: ", len(queries))
	}
	results, failed, err := engine.ResolveBatch(ctx, queries)
	if err != nil {
		return results, failed, 0, err
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
	}

	if !*par.calibrate {
		return results, failed, 0, nil
	}

	offset, ok := massshift.EstimateOffset(results)
	if !ok {
		if par.verbosity != infoSilent {
			log.Println("Too few explained shifts for offset calibration, skipping")
		}
		return results, failed, 0, nil
	}
	if par.verbosity != infoSilent {
		log.Printf("Systematic offset %.6f, resolving again", offset)
	}
	ecfg.Offset = offset
	engine = massshift.New(cat, ecfg)
	t = time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Resolving with offset applied: ")
	}
	results, failed, err = engine.ResolveBatch(ctx, queries)
	if par.verbosity == infoVerbose && err == nil {
		fmt.Fprintf(os.Stderr, "%s\n", time.Since(t))
	}
	return results, failed, offset, err
}

func run(par params) error {
	cfg, err := resolveConfig(par)
	if err != nil {
		return err
	}
	priors, err := parsePriors(*par.priorsSpec)
	if err != nil {
		return fmt.Errorf("invalid parameter 'priors': %w", err)
	}
	ecfg, err := engineConfig(cfg, priors)
	if err != nil {
		return err
	}

	t := time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Loading modification database: ")
	}
	recs, err := loadModRecords(par, cfg)
	if err != nil {
		return err
	}
	cat, err := massshift.LoadCatalog(recs)
	if err != nil {
		return err
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s (%d modifications)\n", time.Since(t), cat.Len())
	}

	proteins, err := loadFasta(par)
	if err != nil {
		return err
	}

	t = time.Now()
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "Reading PSMs from %s: ", *par.psmFilename)
	}
	queries, err := loadQueries(par, cfg, proteins)
	if err != nil {
		return err
	}
	if par.verbosity == infoVerbose {
		fmt.Fprintf(os.Stderr, "%s (%d queries)\n", time.Since(t), len(queries))
	}

	// Interrupt cancels the search between depth levels; results
	// computed so far are discarded because the report would be
	// misleadingly incomplete.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, failed, offset, err := resolveAll(ctx, par, ecfg, cat, queries)
	if err != nil {
		return err
	}
	for _, qe := range failed {
		log.Printf("Skipped %s: %v", queries[qe.Index].SpectrumID, qe.Err)
	}
	debugLogResults(results, par)

	f, err := os.Create(*par.outFilename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err = writeTSV(f, results, failed); err != nil {
		return err
	}
	if *par.jsonFilename != "" {
		jf, err := os.Create(*par.jsonFilename)
		if err != nil {
			return err
		}
		defer jf.Close()
		if err = writeJSON(jf, results, failed, offset); err != nil {
			return err
		}
	}

	if par.verbosity != infoSilent {
		summarize(results).print(os.Stderr)
	}
	return nil
}

// resolveConfig merges the configuration file (if any) with the
// command line. Flags that were explicitly set take precedence over
// file values.
func resolveConfig(par params) (*config.Config, error) {
	cfg := config.Default()
	if *par.configFilename != "" {
		var err error
		cfg, err = config.Load(*par.configFilename)
		if err != nil {
			return nil, err
		}
	}
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["tol"] {
		cfg.Tolerance = *par.tolerance
	}
	if set["tolunit"] {
		cfg.ToleranceUnit = *par.toleranceUnit
	}
	if set["maxmods"] {
		cfg.MaxMods = *par.maxMods
	}
	if set["exhaustive"] {
		cfg.Exhaustive = *par.exhaustive
	}
	if set["local"] {
		cfg.Localization = *par.localization
	}
	if set["workers"] {
		cfg.Workers = *par.workers
	}
	if set["calibrate"] {
		cfg.Calibrate = *par.calibrate
	}
	if set["aacomb"] {
		cfg.AACombo = *par.aaCombo
	}
	// The calibrate flag default comes from the file
	if !set["calibrate"] {
		*par.calibrate = cfg.Calibrate
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// sanatizeParams does some checks on parameters, and fills missing
// filenames if possible
func sanatizeParams(par *params) {
	exeName := filepath.Base(os.Args[0])

	if len(par.args) != 1 {
		fmt.Fprintf(os.Stderr, `Last argument must be name of PSM file.
Type %s --help for usage
`, exeName)
		os.Exit(2)
	}
	psm := par.args[0]
	par.psmFilename = &psm

	if *par.outFilename == "" {
		*par.outFilename = fileutil.BaseName(psm) + "-shift.tsv"
	}
}

func usage() {
	exeName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr,
		`USAGE:
  %s [options] <PSMfile>

  This program explains the residual mass differences ("mass shifts")
  of peptide identifications from an open or error-tolerant search as
  combinations of known modifications. The PSM file can be an mzIdentML
  file or a TSV/CSV table with columns spectrum_id and delta_mass
  (optionally sequence, precursor_mass, is_decoy). Files compressed
  with gzip or xz are read transparently.

OPTIONS:
`, exeName)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr,
		`
BUILT-IN MODIFICATIONS:
  When no modification database is specified with -mods, %s uses a
  built-in list of common Unimod modifications.

USAGE EXAMPLES:
  %s yeast.mzid
    Explain the mass shifts of all identifications in yeast.mzid with at
    most 3 simultaneous modifications; write the report to
    yeast-shift.tsv.

  %s -mods unimod.xml.gz -tol 0.01 -tolunit da -local context-aware yeast.mzid
    Idem, against the full Unimod database, with an absolute tolerance
    of 0.01 Da and only modifications that fit the peptide sequence.
`, exeName, exeName, exeName)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var par params

	par.modsFilename = flag.String("mods",
		"",
		"modification database `filename` (Unimod XML or TSV/CSV).\nIf empty, a built-in list of common modifications is used.")
	par.outFilename = flag.String("o",
		"",
		"`filename` of TSV output report")
	par.jsonFilename = flag.String("json",
		"",
		"`filename` of JSON output report")
	par.configFilename = flag.String("config",
		"",
		"TOML configuration `filename`")
	par.tolerance = flag.Float64("tol",
		10.0,
		`mass tolerance for matching combinations`)
	par.toleranceUnit = flag.String("tolunit",
		"ppm",
		"tolerance `unit`, \"ppm\" (relative to the precursor mass) or \"da\"")
	par.maxMods = flag.Int("maxmods",
		3,
		`maximum number of simultaneous modifications per explanation`)
	par.exhaustive = flag.Bool("exhaustive", false,
		`search all combination sizes up to maxmods.
By default the search stops at the smallest size that explains the
shift (simpler explanations are preferred).`)
	par.localization = flag.String("local",
		"unrestricted",
		"localization `mode`:\n    unrestricted: any modification can explain any shift\n    context-aware: only modifications that fit the peptide sequence")
	par.workers = flag.Int("workers",
		0,
		`number of parallel resolution workers (0 = number of CPUs)`)
	par.calibrate = flag.Bool("calibrate", false,
		`estimate the systematic delta-mass offset from explained shifts
and resolve again with the offset applied`)
	par.aaCombo = flag.Int("aacomb",
		0,
		`add amino acid combinations up to this length as candidate
explanations (detects missed/extended cleavage); 0 disables`)
	par.fastaFilename = flag.String("fasta",
		"",
		"protein database `filename` (FASTA). With -local context-aware,\namino acid combination candidates are only accepted when their\nresidues flank the peptide in its protein (TSV/CSV input with a\nprotein column).")
	par.decoys = flag.Bool("decoys", false,
		`keep decoy PSMs (TSV/CSV input only)`)
	par.priorsSpec = flag.String("priors",
		"",
		"classification ranking priors. Format:\n<classification1>(<weight1>)<classification2>(<weight2>)...\ne.g. 'Post-translational(1.0)Artefact(0.5)'.\nClassifications without a weight get the lowest configured weight.")
	version := flag.Bool("version", false,
		`Show software version`)
	verbose := flag.Bool("verbose", false,
		`Print more verbose progress information`)
	quiet := flag.Bool("quiet", false,
		`Don't print any output except for errors`)
	flag.Usage = usage
	flag.Parse()
	if *version {
		fmt.Fprintf(os.Stderr, "%s version %s\n", progName, progVersion)
		return
	}
	if *verbose {
		par.verbosity = infoVerbose
	}
	if *quiet {
		par.verbosity = infoSilent
	}
	par.args = flag.Args()

	sanatizeParams(&par)
	if err := run(par); err != nil {
		log.Fatalf("%s: %v", progName, err)
	}
}
