package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type csvSource struct{}

// CanRead accepts any text content; it is registered last as the fallback.
func (csvSource) CanRead(_ string, mt *mimetype.MIME) bool {
	return isText(mt)
}

func (csvSource) Read(path string, mt *mimetype.MIME, opt Options) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("open csv: %w", err)}
	}
	defer f.Close()

	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path, mt)
	}
	format := FormatCSV
	if delim == '\t' {
		format = FormatTSV
	}
	r := csv.NewReader(f)
	r.Comma = delim
	// 0 pins every row to the header's column count.
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &IOError{Step: "load", Path: path, Err: errors.New("empty source: no header row")}
		}
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	tbl := &table{format: format, header: append([]string(nil), header...)}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("read row %d: %w", len(tbl.rows)+1, err)}
		}
		tbl.rows = append(tbl.rows, rec)
	}
	return tbl, nil
}

func sniffDelimiter(path string, mt *mimetype.MIME) rune {
	if hasExt(path, ".tsv") {
		return '\t'
	}
	if mt != nil && mt.Is("text/tab-separated-values") {
		return '\t'
	}
	return ','
}

// ParseDelimiter maps a flag or config value to a delimiter rune.
// An empty string yields 0, meaning detect from the file.
func ParseDelimiter(s string) (rune, error) {
	if s == "\t" {
		return '\t', nil
	}
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	case "tab", "\\t":
		return '\t', nil
	}
	return 0, fmt.Errorf("unsupported delimiter %q (use ',' | ';' | '|' | 'tab')", s)
}
