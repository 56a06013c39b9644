package unimod

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unimodXML = `<?xml version="1.0" encoding="UTF-8"?>
<umod:unimod xmlns:umod="http://www.unimod.org/xmlns/schema/unimod_2">
  <umod:modifications>
    <umod:mod title="Oxidation" full_name="Oxidation or Hydroxylation" record_id="35">
      <umod:specificity site="M" position="Anywhere" classification="Artefact" hidden="0"/>
      <umod:specificity site="W" position="Anywhere" classification="Artefact" hidden="1"/>
      <umod:delta mono_mass="15.994915" avge_mass="15.9994"/>
    </umod:mod>
    <umod:mod title="Acetyl" full_name="Acetylation" record_id="1">
      <umod:specificity site="K" position="Anywhere" classification="Multiple" hidden="0"/>
      <umod:specificity site="N-term" position="Any N-term" classification="Multiple" hidden="0"/>
      <umod:delta mono_mass="42.010565" avge_mass="42.0367"/>
    </umod:mod>
    <umod:mod title="Gln-&gt;pyro-Glu" full_name="Pyro-glu from Q" record_id="28">
      <umod:specificity site="Q" position="Any N-term" classification="Artefact" hidden="0"/>
      <umod:delta mono_mass="-17.026549" avge_mass="-17.0305"/>
    </umod:mod>
    <umod:mod title="Homebrew" full_name="User submitted" record_id="9001" username_of_poster="someuser">
      <umod:specificity site="C" position="Anywhere" classification="Chemical derivative" hidden="1"/>
      <umod:delta mono_mass="123.456" avge_mass="123.5"/>
    </umod:mod>
    <umod:mod title="Label:13C(6)" full_name="13C(6) Silac label" record_id="188">
      <umod:specificity site="K" position="Anywhere" classification="Isotopic label" hidden="0"/>
      <umod:delta mono_mass="6.020129" avge_mass="5.9559"/>
    </umod:mod>
    <umod:mod title="Xlink:DSS" full_name="Crosslinker" record_id="1898">
      <umod:specificity site="K" position="Anywhere" classification="Chemical derivative" hidden="1"/>
      <umod:delta mono_mass="156.078644" avge_mass="156.18"/>
    </umod:mod>
  </umod:modifications>
</umod:unimod>`

func TestRead(t *testing.T) {
	u, err := Read(strings.NewReader(unimodXML))
	require.NoError(t, err)
	assert.Equal(t, 6, u.NumMods())

	recs := u.Records()
	require.Len(t, recs, 3)

	assert.Equal(t, "UNIMOD:35", recs[0].ID)
	assert.Equal(t, "Oxidation", recs[0].Name)
	assert.Equal(t, "15.994915", recs[0].Mass)
	assert.Equal(t, []string{"M@anywhere", "W@anywhere"}, recs[0].Sites)
	assert.Equal(t, "Artefact", recs[0].Classification)

	// The residue-free terminal specificity keeps its position
	assert.Equal(t, "UNIMOD:1", recs[1].ID)
	assert.Equal(t, []string{"K@anywhere", "@any-n-term"}, recs[1].Sites)

	assert.Equal(t, "UNIMOD:28", recs[2].ID)
	assert.Equal(t, []string{"Q@any-n-term"}, recs[2].Sites)
	assert.Equal(t, "-17.026549", recs[2].Mass)
}

func TestReadNoModifications(t *testing.T) {
	_, err := Read(strings.NewReader(`<?xml version="1.0"?><other></other>`))
	assert.ErrorIs(t, err, ErrNoModifications)
}

func TestReadBadXML(t *testing.T) {
	_, err := Read(strings.NewReader(`<unimod><modifications>`))
	assert.Error(t, err)
}
