// Package fileutil opens data files with transparent decompression.
package fileutil

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for _, c := range rc.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens a file for reading. Files ending in .gz or .xz are
// decompressed on the fly; catalog dumps and PSM exports are commonly
// distributed compressed.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: zr, closers: []io.Closer{zr, f}}, nil
	case strings.HasSuffix(path, ".xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readCloser{Reader: xr, closers: []io.Closer{f}}, nil
	}
	return f, nil
}

// BaseName returns the path without directory, compression suffix and
// format extension, for deriving output file names.
func BaseName(path string) string {
	base := path
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	for _, suffix := range []string{".gz", ".xz"} {
		base = strings.TrimSuffix(base, suffix)
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
