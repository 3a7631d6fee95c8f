package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

type csvFormat struct{}

func (csvFormat) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (csvFormat) Grid(content []byte, opt Options) ([][]string, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(content)
	}
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.Comma = delim

	var grid [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if len(grid) == 0 {
				return nil, fmt.Errorf("read header: %w", err)
			}
			return nil, fmt.Errorf("read row %d: %w", len(grid), err)
		}
		grid = append(grid, rec)
	}
	return grid, nil
}

// sniffDelimiter picks the most frequent of ',', ';' and tab on the header line.
func sniffDelimiter(content []byte) rune {
	line := content
	if i := bytes.IndexByte(content, '\n'); i >= 0 {
		line = content[:i]
	}
	best, bestN := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}
