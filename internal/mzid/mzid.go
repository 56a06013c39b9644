package mzid

import (
	"encoding/xml"
	"errors"
)

// Types for parsing mzIdentML

// MzID holds only the part of mzIdentML files in which we are
// interested: peptide sequences with their fixed modifications, and
// per-spectrum identification items with experimental and calculated
// mass-to-charge values.
type MzID struct {
	seqID2PepIdx map[string]int
	psmList      []psmRef
	content      mzIdentMLContent
}

type psmRef struct {
	specResultIdx int // Index into SpectrumIdentificationResult
	specItemIdx   int // Index into SpectrumIdentificationItem
}

// PSM is one peptide-spectrum match from the file.
type PSM struct {
	SpecID       string
	PepSeq       string
	Charge       int
	ExpMz        float64 // experimental mass-to-charge
	CalcMz       float64 // search engine calculated mass-to-charge
	ModLocs      []int   // 1-based locations of existing modifications; 0 = N-term, len+1 = C-term
	ModMass      float64 // summed delta mass of existing modifications
	PassedFilter bool
}

type mzIdentMLContent struct {
	XMLName                      xml.Name                       `xml:"MzIdentML"`
	Peptide                      []peptide                      `xml:"SequenceCollection>Peptide"`
	SpectrumIdentificationResult []spectrumIdentificationResult `xml:"DataCollection>AnalysisData>SpectrumIdentificationList>SpectrumIdentificationResult"`
}

type peptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	// Note: monoisotopicMassDelta is optional according to the schema,
	// but there appears to be no other way to determine the mass of
	// existing modifications
	MonoisotopicMassDelta float64 `xml:"monoisotopicMassDelta,attr"`
	Location              int     `xml:"location,attr"`
}

type spectrumIdentificationResult struct {
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectrumIdentificationItem []spectrumIdentificationItem
}

type spectrumIdentificationItem struct {
	ChargeState    int     `xml:"chargeState,attr"`
	ExperimentalMz float64 `xml:"experimentalMassToCharge,attr"`
	CalculatedMz   float64 `xml:"calculatedMassToCharge,attr"`
	PeptideRef     string  `xml:"peptide_ref,attr"`
	PassThreshold  string  `xml:"passThreshold,attr"`
}

var (
	ErrInvalidPSMIndex = errors.New("mzid: invalid PSM index")
)
