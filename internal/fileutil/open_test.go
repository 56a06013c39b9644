package fileutil

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestOpenGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.tsv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte("compressed content"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "compressed content", string(data))
	assert.NoError(t, r.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.tsv"))
	assert.Error(t, err)
}

func TestOpenBadGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(path, []byte("not gzip"), 0644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"yeast.mzid", "yeast"},
		{"yeast.mzid.gz", "yeast"},
		{"/data/run/yeast.tsv.xz", "yeast"},
		{"noext", "noext"},
		{".hidden", ".hidden"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, BaseName(tc.in), "BaseName(%q)", tc.in)
	}
}
