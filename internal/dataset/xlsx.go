package dataset

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type xlsxSource struct{}

func (xlsxSource) CanRead(p string, mt *mimetype.MIME) bool {
	return hasExt(p, ".xlsx") || mt.Is(xlsxMIME)
}

// Read extracts the selected sheet. If SheetName is empty and SheetIndex <= 0,
// the first sheet is used. SheetIndex is 1-based (Sheet1 == 1).
func (xlsxSource) Read(p string, _ *mimetype.MIME, opt Options) (*table, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("read xlsx: %w", err)}
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	sheets := parseWorkbook(readZipFile(zr, "xl/workbook.xml"))
	rels := parseRelationships(readZipFile(zr, "xl/_rels/workbook.xml.rels"))

	target, sheetName := "", ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
					sheetName = s.Name
				}
				break
			}
		}
		if target == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.Name
			}
			return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("sheet %q not found (available: %s)", opt.SheetName, strings.Join(names, ", "))}
		}
	} else {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		for _, s := range sheets {
			if s.SheetID == idx {
				if rel, ok := rels[s.RID]; ok {
					target = normalizeRelPath(rel)
				}
				break
			}
		}
		if target == "" {
			target = path.Join("xl", "worksheets", fmt.Sprintf("sheet%d.xml", idx))
		}
	}
	sheetXML := readZipFile(zr, target)
	if sheetXML == nil {
		return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("worksheet %s missing from workbook", target)}
	}

	rr := newSheetRowReader(sheetXML, parseSharedStrings(readZipFile(zr, "xl/sharedStrings.xml")))
	tbl := &table{format: FormatXLSX, sheet: sheetName}
	header, ok := rr.Next()
	if !ok {
		if err := rr.Err(); err != nil {
			return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("parse worksheet: %w", err)}
		}
		return tbl, nil
	}
	tbl.header = header
	for n := 1; ; n++ {
		row, ok := rr.Next()
		if !ok {
			break
		}
		if blankRow(row) {
			continue
		}
		// Spreadsheet rows omit trailing empty cells.
		if len(row) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, row)
			row = tmp
		}
		if len(row) > len(header) {
			if !blankRow(row[len(header):]) {
				return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("row %d: wrong number of fields: got %d, want %d", n, len(row), len(header))}
			}
			row = row[:len(header)]
		}
		tbl.rows = append(tbl.rows, row)
	}
	if err := rr.Err(); err != nil {
		return nil, &IOError{Step: "load", Path: p, Err: fmt.Errorf("parse worksheet: %w", err)}
	}
	return tbl, nil
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

type wbSheet struct {
	Name    string
	SheetID int
	RID     string
}

// parseWorkbook extracts sheet entries with names and relationship ids.
func parseWorkbook(data []byte) []wbSheet {
	var sheets []wbSheet
	walkElements(data, func(se xml.StartElement) {
		if se.Name.Local != "sheet" {
			return
		}
		var s wbSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.SheetID = atoiSafe(a.Value)
			case "id":
				s.RID = a.Value
			}
		}
		sheets = append(sheets, s)
	})
	return sheets
}

// parseRelationships returns map[r:id]Target.
func parseRelationships(data []byte) map[string]string {
	out := map[string]string{}
	walkElements(data, func(se xml.StartElement) {
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

func walkElements(data []byte, fn func(xml.StartElement)) {
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

func readZipFile(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil
			}
			defer rc.Close()
			b, _ := io.ReadAll(rc)
			return b
		}
	}
	return nil
}

func parseSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	var inT bool
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inT = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inT = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inT {
				buf.Write(se)
			}
		}
	}
}

type sheetRowReader struct {
	dec    *xml.Decoder
	shared []string
	err    error
}

func newSheetRowReader(data []byte, shared []string) *sheetRowReader {
	return &sheetRowReader{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Err reports the first decode error other than end of input.
func (r *sheetRowReader) Err() error { return r.err }

func (r *sheetRowReader) Next() ([]string, bool) {
	var (
		row    []string
		inRow  bool
		maxCol int
	)
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.err = err
			}
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				inRow = true
				row = nil
				maxCol = 0
			}
			if inRow && se.Name.Local == "c" {
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col, err := colIndexFromRef(ref)
				if err != nil {
					r.err = err
					return nil, false
				}
				if col < 0 {
					col = len(row)
				}
				if col+1 > maxCol {
					maxCol = col + 1
				}
				val := r.readCellValue(typ)
				if len(row) <= col {
					tmp := make([]string, col+1)
					copy(tmp, row)
					row = tmp
				}
				row[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				if len(row) < maxCol {
					tmp := make([]string, maxCol)
					copy(tmp, row)
					row = tmp
				}
				return row, true
			}
		}
	}
}

// readCellValue consumes tokens up to the end of the current <c> element and
// returns its <v> text or the concatenated runs of an inline <is> string,
// resolving shared strings.
func (r *sheetRowReader) readCellValue(typ string) string {
	var val strings.Builder
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val.String()
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "rPh":
				// phonetic hints repeat the text in another script
				_ = r.dec.Skip()
			case "v", "t":
				for {
					tk, er := r.dec.Token()
					if er != nil {
						break
					}
					if ed, ok := tk.(xml.EndElement); ok && (ed.Name.Local == "v" || ed.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						val.Write(ch)
					}
				}
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if typ == "s" {
					idx := atoiSafe(val.String())
					if idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val.String()
			}
		}
	}
}

// maxColumns is the sheet width limit of the format (column XFD).
const maxColumns = 16384

// colIndexFromRef maps refs like "C12" to a 0-based column index, or -1 when
// the cell carries no reference. References past column XFD are rejected.
func colIndexFromRef(ref string) (int, error) {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	if i > 3 {
		return 0, fmt.Errorf("cell reference %q out of range", ref)
	}
	s := strings.ToUpper(ref[:i])
	idx := 0
	for j := 0; j < len(s); j++ {
		idx = idx*26 + int(s[j]-'A'+1)
	}
	if idx > maxColumns {
		return 0, fmt.Errorf("cell reference %q out of range", ref)
	}
	return idx - 1, nil
}

func atoiSafe(s string) int {
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

// normalizeRelPath converts relationship targets to ZIP entry names.
// Targets may carry a leading slash ("/xl/worksheets/sheet1.xml"); ZIP
// entries never do.
func normalizeRelPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return filepath.ToSlash(filepath.Join("xl", rel))
}
