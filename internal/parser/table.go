package parser

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/gymbmi/internal/bmi"
	"github.com/KaramelBytes/gymbmi/internal/record"
)

// Build validates the header of grid and derives one Person per data row.
// grid[0] is the header; rows with only empty cells are skipped.
func Build(name string, grid [][]string) (*record.Table, error) {
	if len(grid) == 0 {
		return nil, &ParseError{Source: name, Err: ErrEmpty}
	}
	header, dup := normalizeHeader(grid[0])

	seen := map[string]bool{}
	for _, h := range header {
		seen[h] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !seen[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 || len(dup) > 0 {
		return nil, &ValidationError{Source: name, Missing: missing, Duplicate: dup}
	}

	rows := make([]record.Person, 0, len(grid)-1)
	var raggedRows, droppedCells int
	for _, raw := range grid[1:] {
		if blank(raw) {
			continue
		}
		if n := overflow(raw, len(header)); n > 0 {
			raggedRows++
			droppedCells += n
		}
		rows = append(rows, record.New(rowInput(header, raw)))
	}
	if raggedRows > 0 {
		slog.Warn("cells beyond the header were dropped", "source", name, "rows", raggedRows, "cells", droppedCells)
	}
	return record.NewTable(name, header, rows), nil
}

// canonical reports whether col is a recognized column; those may appear only once.
func canonical(col string) bool {
	switch col {
	case record.ColBMI, record.ColCategory:
		return true
	}
	for _, c := range RequiredColumns {
		if c == col {
			return true
		}
	}
	for _, c := range OptionalColumns {
		if c == col {
			return true
		}
	}
	return false
}

// normalizeHeader trims, lower-cases and strips a BOM. Blank headers become
// unnamed_<i> and repeated passthrough columns get a _2, _3... suffix. Repeated
// recognized columns are returned in dup.
func normalizeHeader(raw []string) (out, dup []string) {
	out = make([]string, len(raw))
	hasRace := false
	for i, h := range raw {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.ToLower(strings.TrimSpace(h))
		if out[i] == "" {
			out[i] = fmt.Sprintf("unnamed_%d", i)
		}
		if out[i] == record.ColRace {
			hasRace = true
		}
	}
	if !hasRace {
		for i, h := range out {
			if h == "race" {
				out[i] = record.ColRace
				break
			}
		}
	}

	taken := make(map[string]bool, len(out))
	for _, h := range out {
		taken[h] = true
	}
	seen := make(map[string]bool, len(out))
	for i, h := range out {
		if !seen[h] {
			seen[h] = true
			continue
		}
		if canonical(h) {
			dup = append(dup, h)
			continue
		}
		for n := 2; ; n++ {
			cand := fmt.Sprintf("%s_%d", h, n)
			if !taken[cand] {
				out[i] = cand
				taken[cand], seen[cand] = true, true
				break
			}
		}
	}
	return out, dup
}

// overflow counts the non-empty cells of row past the header width.
func overflow(row []string, width int) int {
	n := 0
	for i := width; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			n++
		}
	}
	return n
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowInput maps one data row onto Input. Cells that fail to parse keep their raw
// text in Extra so the exported table still shows what was uploaded.
func rowInput(header, row []string) record.Input {
	in := record.Input{Extra: map[string]string{}}
	for i, col := range header {
		cell := ""
		if i < len(row) {
			cell = strings.TrimSpace(row[i])
		}
		switch col {
		case record.ColName:
			in.Name = cell
		case record.ColSex:
			in.Sex = record.ParseSex(cell)
		case record.ColRace:
			in.Race = record.ParseRace(cell)
		case record.ColAge:
			if v, ok := ParseNumber(cell); ok {
				in.Age = record.IntPtr(int(math.Round(v)))
			} else if cell != "" {
				in.Extra[col] = cell
			}
		case record.ColHeight:
			in.HeightM = measure(cell, col, in.Extra)
		case record.ColWeight:
			in.WeightKg = measure(cell, col, in.Extra)
		case record.ColBMI, record.ColCategory:
			// always derived
		default:
			in.Extra[col] = cell
		}
	}
	return in
}

func measure(cell, col string, extra map[string]string) bmi.Measure {
	v, ok := ParseNumber(cell)
	if !ok {
		if cell != "" {
			extra[col] = cell
		}
		return bmi.Missing
	}
	return bmi.Known(v)
}

// ParseNumber accepts "1.70", "1,70", "1.234,5" and "1,234.5". The last of ',' or '.'
// is the decimal separator; the other is dropped as a thousands separator.
func ParseNumber(s string) (float64, bool) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, "\u00a0", " "))
	if raw == "" {
		return 0, false
	}
	dec := byte('.')
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos > dpos {
		dec = ','
	}
	for _, sep := range []string{",", ".", " "} {
		if sep[0] != dec {
			raw = strings.ReplaceAll(raw, sep, "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
