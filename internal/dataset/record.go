package dataset

import (
	"unicode/utf8"

	"github.com/samber/lo"
)

// Record is one labeled requirement.
type Record struct {
	// Row is the 1-based position in the source (header excluded).
	Row     int    `json:"row" yaml:"row"`
	Project string `json:"project,omitempty" yaml:"project,omitempty"`
	Text    string `json:"text" yaml:"text"`
	Class   string `json:"class" yaml:"class"`
	// Length is the derived character count of Text; valid once HasLength is set.
	Length    int  `json:"length" yaml:"length"`
	HasLength bool `json:"-" yaml:"-"`
}

// Dataset is an in-memory record set plus the metadata collected while loading.
type Dataset struct {
	Name        string
	Path        string
	Format      Format
	// SheetName is set for workbooks loaded by sheet name.
	SheetName   string
	TextColumn  string
	ClassColumn string
	// ProjectColumn is empty when the source has no project id column.
	ProjectColumn string
	Records       []Record
	Warnings      []string
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// AddDerivedLength returns a copy of records with Length set to the number of
// Unicode code points in Text. Records that already carry a length are kept
// as they are, so applying it twice yields the same result as applying it once.
// Empty text counts as length 0.
func AddDerivedLength(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		if !r.HasLength {
			r.Length = utf8.RuneCountInString(r.Text)
			r.HasLength = true
		}
		out[i] = r
	}
	return out
}

// Lengths extracts the derived length column. Callers are expected to have
// applied AddDerivedLength.
func Lengths(records []Record) []int {
	return lo.Map(records, func(r Record, _ int) int { return r.Length })
}
