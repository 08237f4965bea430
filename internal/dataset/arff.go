package dataset

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// arffSource reads Weka ARFF files, the format the PROMISE NFR corpus is
// published in. Only dense @data sections are supported.
type arffSource struct{}

func (arffSource) CanRead(path string, mt *mimetype.MIME) bool {
	return hasExt(path, ".arff") && isText(mt)
}

func (arffSource) Read(path string, _ *mimetype.MIME, _ Options) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("open arff: %w", err)}
	}
	defer f.Close()

	tbl := &table{format: FormatARFF}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	inData := false
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		if !inData {
			lower := strings.ToLower(line)
			switch {
			case strings.HasPrefix(lower, "@relation"):
			case strings.HasPrefix(lower, "@attribute"):
				name, err := arffAttributeName(strings.TrimSpace(line[len("@attribute"):]))
				if err != nil {
					return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("line %d: %w", lineNo, err)}
				}
				tbl.header = append(tbl.header, name)
			case strings.HasPrefix(lower, "@data"):
				inData = true
			default:
				return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("line %d: unexpected header line %q", lineNo, line)}
			}
			continue
		}
		if strings.HasPrefix(line, "{") {
			return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("line %d: sparse instances are not supported", lineNo)}
		}
		fields, err := splitARFFRow(line)
		if err != nil {
			return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("line %d: %w", lineNo, err)}
		}
		if len(fields) != len(tbl.header) {
			return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("line %d: wrong number of fields: got %d, want %d", lineNo, len(fields), len(tbl.header))}
		}
		tbl.rows = append(tbl.rows, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, &IOError{Step: "load", Path: path, Err: fmt.Errorf("scan arff: %w", err)}
	}
	if !inData && len(tbl.header) > 0 {
		return nil, &IOError{Step: "load", Path: path, Err: errors.New("missing @data section")}
	}
	return tbl, nil
}

// arffAttributeName extracts the (possibly quoted) attribute name from the
// remainder of an @attribute line.
func arffAttributeName(rest string) (string, error) {
	if rest == "" {
		return "", errors.New("attribute without name")
	}
	if q := rest[0]; q == '\'' || q == '"' {
		end := strings.IndexByte(rest[1:], q)
		if end < 0 {
			return "", errors.New("unterminated attribute name")
		}
		return rest[1 : end+1], nil
	}
	if i := strings.IndexAny(rest, " \t"); i >= 0 {
		return rest[:i], nil
	}
	return rest, nil
}

// splitARFFRow splits a comma-separated instance line. Values may be wrapped
// in single or double quotes, use backslash escapes, and '?' marks a missing value.
func splitARFFRow(line string) ([]string, error) {
	var (
		fields []string
		buf    strings.Builder
		quote  byte
		quoted bool
	)
	flush := func() {
		v := buf.String()
		if !quoted {
			v = strings.TrimSpace(v)
			if v == "?" {
				v = ""
			}
		}
		fields = append(fields, v)
		buf.Reset()
		quoted = false
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			switch c {
			case '\\':
				if i+1 < len(line) {
					i++
					buf.WriteByte(unescapeARFF(line[i]))
				}
			case quote:
				quote = 0
			default:
				buf.WriteByte(c)
			}
		case c == '\'' || c == '"':
			if strings.TrimSpace(buf.String()) != "" {
				return nil, fmt.Errorf("unexpected quote at column %d", i+1)
			}
			buf.Reset()
			quote = c
			quoted = true
		case c == ',':
			flush()
		default:
			if quoted && c != ' ' && c != '\t' {
				return nil, fmt.Errorf("unexpected character after quoted value at column %d", i+1)
			}
			if !quoted {
				buf.WriteByte(c)
			}
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quoted value")
	}
	flush()
	return fields, nil
}

func unescapeARFF(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return c
	}
}
