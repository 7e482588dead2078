package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/KaramelBytes/dataclean-cli/internal/cleaning"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

// Load reads a delimited file whose first record is the header.
// Short rows are padded with empty cells; rows longer than the header are malformed.
func (csvLoader) Load(path string, opt Options) (cleaning.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return cleaning.Dataset{}, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, br)
	}
	return ReadCSV(br, delim)
}

// ReadCSV parses delimited records from r.
func ReadCSV(r io.Reader, delim rune) (cleaning.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comma = delim

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return cleaning.Dataset{}, nil
		}
		return cleaning.Dataset{}, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cols[i] = strings.TrimSpace(h)
	}

	ds := cleaning.Dataset{Columns: cols}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return cleaning.Dataset{}, fmt.Errorf("read record %d: %w", line, err)
		}
		if len(rec) == 1 && rec[0] == "" && len(cols) > 1 {
			continue
		}
		if len(rec) > len(cols) {
			return cleaning.Dataset{}, fmt.Errorf("%w: record %d has %d fields, header has %d",
				cleaning.ErrMalformedDataset, line, len(rec), len(cols))
		}
		row := make(cleaning.Row, len(cols))
		for i, c := range cols {
			if i < len(rec) {
				row[c] = rec[i]
			} else {
				row[c] = ""
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	if _, err := ds.Validate(); err != nil {
		return cleaning.Dataset{}, err
	}
	return ds, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and tab in the header line.
func sniffDelimiter(path string, br *bufio.Reader) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	head, _ := br.Peek(4096)
	first := string(head)
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(first, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
