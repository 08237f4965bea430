package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format identifies the on-disk layout of a dataset.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatARFF Format = "arff"
	FormatXLSX Format = "xlsx"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options controls how a source is read and which columns are used.
type Options struct {
	TextColumn  string
	ClassColumn string
	// ProjectColumn is optional; a source without it loads fine.
	ProjectColumn string
	// Delimiter for CSV. If 0, tab for .tsv files and comma otherwise.
	Delimiter rune
	// XLSX sheet selection. SheetIndex is 1-based and used when SheetName is empty.
	SheetName  string
	SheetIndex int
	// StrictLabels rejects categories outside the closed label set instead of warning.
	StrictLabels bool
}

// DefaultOptions matches the column names of the published nfr.csv.
func DefaultOptions() Options {
	return Options{
		TextColumn:    "RequirementText",
		ClassColumn:   "class",
		ProjectColumn: "ProjectID",
		SheetIndex:    1,
	}
}

// table is the raw header and rows produced by a source.
type table struct {
	format Format
	// sheet is the worksheet name when it was selected by name.
	sheet  string
	header []string
	rows   [][]string
}

type source interface {
	CanRead(path string, mt *mimetype.MIME) bool
	Read(path string, mt *mimetype.MIME, opt Options) (*table, error)
}

var sources []source

func register(s source) { sources = append(sources, s) }

func init() {
	register(xlsxSource{})
	register(arffSource{})
	register(csvSource{})
}

// Load reads a labeled requirements file into memory.
func Load(path string, opt Options) (*Dataset, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("source not found: %w", err)}
		}
		return nil, &IOError{Step: "load", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &IOError{Step: "load", Path: path, Err: errors.New("source is a directory")}
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("detect content type: %w", err)}
	}
	var src source
	for _, s := range sources {
		if s.CanRead(path, mt) {
			src = s
			break
		}
	}
	if src == nil {
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("unsupported content type %s", mt.String())}
	}
	tbl, err := src.Read(path, mt, opt)
	if err != nil {
		return nil, err
	}
	if len(tbl.header) == 0 {
		return nil, &IOError{Step: "load", Path: path, Err: errors.New("empty source: no header row")}
	}
	return build(path, tbl, opt)
}

func build(path string, tbl *table, opt Options) (*Dataset, error) {
	textIdx, err := resolveColumn(tbl.header, opt.TextColumn)
	if err != nil {
		return nil, err
	}
	classIdx, err := resolveColumn(tbl.header, opt.ClassColumn)
	if err != nil {
		return nil, err
	}
	projIdx := -1
	if opt.ProjectColumn != "" {
		if idx, err := resolveColumn(tbl.header, opt.ProjectColumn); err == nil {
			projIdx = idx
		}
	}

	ds := &Dataset{
		Name:        filepath.Base(path),
		Path:        path,
		Format:      tbl.format,
		SheetName:   tbl.sheet,
		TextColumn:  strings.TrimSpace(tbl.header[textIdx]),
		ClassColumn: strings.TrimSpace(tbl.header[classIdx]),
		Records:     make([]Record, 0, len(tbl.rows)),
	}
	if projIdx >= 0 {
		ds.ProjectColumn = strings.TrimSpace(tbl.header[projIdx])
	}

	unknown := map[string]int{}
	emptyText := 0
	for i, row := range tbl.rows {
		rowNum := i + 1
		raw := strings.TrimSpace(row[classIdx])
		if raw == "" {
			return nil, &SchemaError{Step: "load", Column: ds.ClassColumn, Row: rowNum, Msg: "empty category label"}
		}
		class, known := CanonicalClass(raw)
		if !known {
			if opt.StrictLabels {
				return nil, &SchemaError{Step: "load", Column: ds.ClassColumn, Row: rowNum, Msg: fmt.Sprintf("unknown category %q", raw)}
			}
			unknown[class]++
		}
		text := row[textIdx]
		if text == "" {
			emptyText++
		}
		rec := Record{Row: rowNum, Text: text, Class: class}
		if projIdx >= 0 {
			rec.Project = strings.TrimSpace(row[projIdx])
		}
		ds.Records = append(ds.Records, rec)
	}

	if len(unknown) > 0 {
		keys := make([]string, 0, len(unknown))
		for k := range unknown {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			ds.Warnings = append(ds.Warnings, fmt.Sprintf("unknown category %q on %d row(s)", k, unknown[k]))
		}
	}
	if emptyText > 0 {
		ds.Warnings = append(ds.Warnings, fmt.Sprintf("%d record(s) with empty text counted as length 0", emptyText))
	}
	return ds, nil
}

// resolveColumn finds a header by exact name, then case-insensitively.
func resolveColumn(header []string, name string) (int, error) {
	want := strings.TrimSpace(name)
	if want == "" {
		return -1, &SchemaError{Step: "load", Msg: "column name not configured"}
	}
	for i, h := range header {
		if strings.TrimSpace(h) == want {
			return i, nil
		}
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i, nil
		}
	}
	return -1, &SchemaError{
		Step:   "load",
		Column: want,
		Msg:    fmt.Sprintf("missing expected column (available: %s)", strings.Join(trimAll(header), ", ")),
	}
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func isText(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

func hasExt(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
