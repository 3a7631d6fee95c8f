package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/gymbmi/internal/record"
)

// Options controls table ingestion.
type Options struct {
	// MaxRows rejects uploads with more data rows; 0 means unlimited.
	MaxRows int
	// Delimiter for CSV. If 0, sniffed among ',', ';', '\t'.
	Delimiter rune
	// SheetName selects an XLSX sheet; SheetIndex (1-based) is used when it is empty.
	SheetName  string
	SheetIndex int
}

// DefaultOptions returns reasonable defaults for uploads.
func DefaultOptions() Options {
	return Options{MaxRows: 100000, SheetIndex: 1}
}

// Format decodes one file format into a raw grid (header row first).
type Format interface {
	CanParse(filename string) bool
	Grid(content []byte, opt Options) ([][]string, error)
}

var registry []Format

// Register adds a format implementation to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// ParseFile reads a table from disk.
func ParseFile(path string, opt Options) (*record.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Source: filepath.Base(path), Err: err}
	}
	return ParseBytes(filepath.Base(path), data, opt)
}

// Parse reads a whole upload from r. name selects the format by extension.
func Parse(name string, r io.Reader, opt Options) (*record.Table, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	return ParseBytes(name, buf.Bytes(), opt)
}

// ParseBytes decodes content and builds the derived table. Either a complete table or
// an error is returned, never both.
func ParseBytes(name string, content []byte, opt Options) (*record.Table, error) {
	f := formatFor(name)
	grid, err := f.Grid(content, opt)
	if err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, &ParseError{Source: name, Err: ErrEmpty}
	}
	if opt.MaxRows > 0 && len(grid)-1 > opt.MaxRows {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("%w: %d > %d", ErrTooManyRows, len(grid)-1, opt.MaxRows)}
	}
	return Build(name, grid)
}

func formatFor(name string) Format {
	for _, f := range registry {
		if f.CanParse(name) {
			return f
		}
	}
	// Unknown extensions (or none, as with HTTP uploads) are read as CSV.
	return csvFormat{}
}

func init() {
	Register(csvFormat{})
	Register(xlsxFormat{})
}
