package psmtab

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTSV(t *testing.T) {
	in := "spectrum_id\tsequence\tdelta_mass\tprecursor_mass\tis_decoy\tprotein\n" +
		"scan=100\tpeptidek\t15.9944\t1532.75\t0\tsp|P12345|TEST_HUMAN\n" +
		"scan=101\tELVISK\t-0.0002\t704.41\ttrue\t\n" +
		"scan=102\t\t79.9661\t\t\t\n"
	recs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, "scan=100", recs[0].SpectrumID)
	assert.Equal(t, "PEPTIDEK", recs[0].Sequence)
	assert.InDelta(t, 15.9944, recs[0].DeltaMass, 1e-9)
	assert.InDelta(t, 1532.75, recs[0].PrecursorMass, 1e-9)
	assert.False(t, recs[0].IsDecoy)
	assert.Equal(t, "sp|P12345|TEST_HUMAN", recs[0].Protein)

	assert.True(t, recs[1].IsDecoy)
	assert.Equal(t, "", recs[1].Protein)

	assert.Equal(t, "", recs[2].Sequence)
	assert.Equal(t, 0.0, recs[2].PrecursorMass)
}

func TestReadCSV(t *testing.T) {
	in := "spectrum_id,delta_mass\ns1,42.01\n"
	recs, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.InDelta(t, 42.01, recs[0].DeltaMass, 1e-9)
}

func TestReadMissingColumn(t *testing.T) {
	_, err := Read(strings.NewReader("spectrum_id\tmass\ns1\t1.0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delta_mass")
}

func TestReadBadDelta(t *testing.T) {
	_, err := Read(strings.NewReader("spectrum_id\tdelta_mass\ns1\theavy\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"))
	assert.Error(t, err)
}
