// Package fasta reads protein sequence databases in FASTA format.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DB maps protein accessions to their sequence. The accession is the
// first whitespace-separated field of the header line.
type DB map[string]string

// Sequence returns the sequence of a protein, if present.
func (db DB) Sequence(id string) (string, bool) {
	seq, ok := db[id]
	return seq, ok
}

// Read parses FASTA content. Sequence lines are uppercased and joined;
// a record with a duplicate accession overwrites the earlier one.
func Read(r io.Reader) (DB, error) {
	sc := bufio.NewScanner(r)
	// Some databases store a whole sequence on one line
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	db := make(DB)
	var id string
	var seq strings.Builder
	flush := func() {
		if id != "" {
			db[id] = seq.String()
		}
		seq.Reset()
	}
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line[0] == '>' {
			flush()
			fields := strings.Fields(line[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("fasta: header without accession")
			}
			id = fields[0]
			continue
		}
		if id == "" {
			return nil, fmt.Errorf("fasta: sequence data before first header")
		}
		seq.WriteString(strings.ToUpper(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("fasta: %w", err)
	}
	flush()
	if len(db) == 0 {
		return nil, fmt.Errorf("fasta: no records found")
	}
	return db, nil
}
