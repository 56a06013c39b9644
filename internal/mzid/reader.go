// Package mzid reads the peptide-spectrum matches of an mzIdentML file
// that carry an unexplained precursor mass difference.
package mzid

import (
	"encoding/xml"
	"io"

	"golang.org/x/net/html/charset"
)

// Read reads mzIdentML content from an io.Reader
func Read(reader io.Reader) (MzID, error) {
	var m MzID
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	err := d.Decode(&m.content)
	if err != nil {
		return m, err
	}
	m.buildPepID2Sequence()
	m.buildPSMList()
	return m, err
}

func (m *MzID) buildPepID2Sequence() {
	m.seqID2PepIdx = make(map[string]int, len(m.content.Peptide))
	for i, p := range m.content.Peptide {
		m.seqID2PepIdx[p.ID] = i
	}
}

func (m *MzID) buildPSMList() {
	for i := range m.content.SpectrumIdentificationResult {
		for j := range m.content.SpectrumIdentificationResult[i].SpectrumIdentificationItem {
			m.psmList = append(m.psmList, psmRef{specResultIdx: i, specItemIdx: j})
		}
	}
}

// NumPSMs returns the total number of peptide-spectrum matches in the
// file. Note that for some spectra, multiple identifications may be
// present. The matches can be accessed using the PSM() method, which
// takes an index from 0 to NumPSMs()-1.
func (m *MzID) NumPSMs() int { return len(m.psmList) }

// PSM returns one peptide-spectrum match by index.
func (m *MzID) PSM(i int) (PSM, error) {
	var p PSM
	if i < 0 || i >= len(m.psmList) {
		return p, ErrInvalidPSMIndex
	}
	result := &m.content.SpectrumIdentificationResult[m.psmList[i].specResultIdx]
	item := &result.SpectrumIdentificationItem[m.psmList[i].specItemIdx]

	p.SpecID = result.SpectrumID
	p.Charge = item.ChargeState
	p.ExpMz = item.ExperimentalMz
	p.CalcMz = item.CalculatedMz
	p.PassedFilter = item.PassThreshold != "false"

	pepIdx, ok := m.seqID2PepIdx[item.PeptideRef]
	if !ok {
		return p, ErrInvalidPSMIndex
	}
	pep := &m.content.Peptide[pepIdx]
	p.PepSeq = pep.PeptideSequence
	for _, mod := range pep.Modification {
		p.ModMass += mod.MonoisotopicMassDelta
		p.ModLocs = append(p.ModLocs, mod.Location)
	}
	return p, nil
}
