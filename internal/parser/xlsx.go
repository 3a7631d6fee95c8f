package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

type xlsxFormat struct{}

func (xlsxFormat) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Grid extracts the rows of one worksheet. The sheet is chosen by name, then by
// 1-based index, defaulting to the first sheet.
func (xlsxFormat) Grid(content []byte, opt Options) ([][]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	sheets := workbookSheets(zipEntry(zr, "xl/workbook.xml"))
	rels := workbookRels(zipEntry(zr, "xl/_rels/workbook.xml.rels"))

	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.name, opt.SheetName) {
				target = sheetPath(rels[s.rid])
				break
			}
		}
		if target == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.name
			}
			return nil, fmt.Errorf("sheet %q not found; available sheets: %s", opt.SheetName, strings.Join(names, ", "))
		}
	}
	if target == "" {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		for _, s := range sheets {
			if s.id == idx {
				target = sheetPath(rels[s.rid])
				break
			}
		}
		if target == "" {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", idx)
		}
	}
	data := zipEntry(zr, target)
	if data == nil {
		return nil, errors.New("worksheet not found in workbook")
	}
	rr := &sheetRows{dec: xml.NewDecoder(bytes.NewReader(data)), shared: sharedStrings(zipEntry(zr, "xl/sharedStrings.xml"))}
	var grid [][]string
	for {
		row, ok := rr.next()
		if !ok {
			break
		}
		grid = append(grid, row)
	}
	return grid, nil
}

type sheetRef struct {
	name string
	id   int
	rid  string
}

func workbookSheets(data []byte) []sheetRef {
	var out []sheetRef
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s sheetRef
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.name = a.Value
			case "sheetId":
				s.id = leadingInt(a.Value)
			case "id":
				s.rid = a.Value
			}
		}
		out = append(out, s)
	})
	return out
}

func workbookRels(data []byte) map[string]string {
	out := map[string]string{}
	eachStart(data, func(se xml.StartElement) {
		if se.Name.Local != "Relationship" {
			return
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	})
	return out
}

// eachStart calls fn for every start element; malformed XML ends the walk early.
func eachStart(data []byte, fn func(xml.StartElement)) {
	if len(data) == 0 {
		return
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return
		}
		if se, ok := tok.(xml.StartElement); ok {
			fn(se)
		}
	}
}

func zipEntry(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

func sharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(el)
			}
		}
	}
}

type sheetRows struct {
	dec    *xml.Decoder
	shared []string
}

// next returns the following <row>, padded so every referenced column is present.
func (r *sheetRows) next() ([]string, bool) {
	var row []string
	inRow := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "row" {
				inRow, row = true, nil
				continue
			}
			if !inRow || el.Name.Local != "c" {
				continue
			}
			var ref, typ string
			for _, a := range el.Attr {
				switch a.Name.Local {
				case "r":
					ref = a.Value
				case "t":
					typ = a.Value
				}
			}
			col := columnIndex(ref)
			if col < 0 {
				col = len(row)
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = r.cellValue(typ)
		case xml.EndElement:
			if el.Name.Local == "row" && inRow {
				return row, true
			}
		}
	}
}

// cellValue reads up to </c>, capturing <v> or inline <is><t>.
func (r *sheetRows) cellValue(typ string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "v" || el.Name.Local == "t" {
				var sb strings.Builder
				for {
					inner, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := inner.(xml.EndElement); ok && end.Name.Local == el.Name.Local {
						break
					}
					if cd, ok := inner.(xml.CharData); ok {
						sb.Write(cd)
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if el.Name.Local != "c" {
				continue
			}
			if typ == "s" {
				idx := leadingInt(val)
				if idx >= 0 && idx < len(r.shared) {
					return r.shared[idx]
				}
				return ""
			}
			return val
		}
	}
}

// columnIndex converts a cell reference like "C12" to a 0-based column, or -1.
func columnIndex(ref string) int {
	idx := 0
	n := 0
	for _, c := range strings.ToUpper(ref) {
		if c < 'A' || c > 'Z' {
			break
		}
		idx = idx*26 + int(c-'A'+1)
		n++
	}
	if n == 0 {
		return -1
	}
	return idx - 1
}

func leadingInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// sheetPath converts a relationship target to a zip entry name.
func sheetPath(rel string) string {
	if rel == "" {
		return ""
	}
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return path.Join("xl", rel)
}
