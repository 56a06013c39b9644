package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	in := `>sp|P12345|TEST_HUMAN Test protein OS=Homo sapiens
MKWVTFISLL
flvlpsht
>P67890
RASSLCTPARTHRQVMHW
`
	db, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, db, 2)

	// Accession is the first header field, sequence lines are joined
	// and uppercased
	seq, ok := db.Sequence("sp|P12345|TEST_HUMAN")
	require.True(t, ok)
	assert.Equal(t, "MKWVTFISLLFLVLPSHT", seq)

	seq, ok = db.Sequence("P67890")
	require.True(t, ok)
	assert.Equal(t, "RASSLCTPARTHRQVMHW", seq)

	_, ok = db.Sequence("missing")
	assert.False(t, ok)
}

func TestReadErrors(t *testing.T) {
	// Test case 1: empty input
	_, err := Read(strings.NewReader(""))
	assert.Error(t, err)

	// Test case 2: sequence before any header
	_, err = Read(strings.NewReader("PEPTIDE\n>P1\nSEQ\n"))
	assert.Error(t, err)

	// Test case 3: header without accession
	_, err = Read(strings.NewReader(">\nSEQ\n"))
	assert.Error(t, err)
}
