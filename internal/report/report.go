package report

import (
	"fmt"
	"math"
	"time"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
)

// Options controls which views are computed and how charts are sized.
type Options struct {
	// Quantile for the trimmed length view, in (0,1).
	Quantile float64
	// WaffleColumns is the number of cells per waffle row.
	WaffleColumns int
	// Bins for length histograms; 0 picks them automatically.
	Bins int
	// BarWidth is the width in characters of the longest bar.
	BarWidth int
	Sort     stats.SortOrder
	// Languages enables language detection over requirement texts.
	Languages bool
	RunID     string
}

// DefaultOptions trims at the 95th percentile and draws
// a 60-column waffle.
func DefaultOptions() Options {
	return Options{
		Quantile:      0.95,
		WaffleColumns: 60,
		BarWidth:      50,
		Sort:          stats.ByCount,
	}
}

// Report is the full descriptive analysis of one dataset.
type Report struct {
	RunID       string    `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Source      Source    `json:"source" yaml:"source"`

	Categories []stats.CategorySummary `json:"categories" yaml:"categories"`
	// Reference is nil when the dataset uses labels outside the closed set.
	Reference []stats.ReferenceDelta `json:"reference,omitempty" yaml:"reference,omitempty"`

	Lengths    stats.LengthSummary `json:"lengths" yaml:"lengths"`
	Histogram  []stats.Bin         `json:"histogram" yaml:"histogram"`
	ByCategory []stats.BoxStats    `json:"by_category" yaml:"by_category"`
	Trimmed    *TrimmedView        `json:"trimmed,omitempty" yaml:"trimmed,omitempty"`

	Languages []stats.LanguageShare `json:"languages,omitempty" yaml:"languages,omitempty"`
	Charts    []Chart               `json:"charts" yaml:"charts"`
	Warnings  []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	opt Options
}

// Source describes the loaded dataset.
type Source struct {
	Name        string         `json:"name" yaml:"name"`
	Format      dataset.Format `json:"format" yaml:"format"`
	Rows        int            `json:"rows" yaml:"rows"`
	TextColumn  string         `json:"text_column" yaml:"text_column"`
	ClassColumn string         `json:"class_column" yaml:"class_column"`
	Projects    int            `json:"projects,omitempty" yaml:"projects,omitempty"`
}

// TrimmedView repeats the length analysis for records strictly below a quantile.
type TrimmedView struct {
	Quantile   float64             `json:"quantile" yaml:"quantile"`
	Threshold  float64             `json:"threshold" yaml:"threshold"`
	Rows       int                 `json:"rows" yaml:"rows"`
	Lengths    stats.LengthSummary `json:"lengths" yaml:"lengths"`
	Histogram  []stats.Bin         `json:"histogram" yaml:"histogram"`
	ByCategory []stats.BoxStats    `json:"by_category" yaml:"by_category"`
}

// Build runs the pipeline: derive lengths, aggregate categories, describe
// lengths, and repeat the length views below the configured quantile.
func Build(ds *dataset.Dataset, opt Options) (*Report, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, &stats.ValueError{Step: "build report", Msg: "dataset has no records"}
	}
	if !stats.ValidQuantile(opt.Quantile) {
		return nil, &stats.ValueError{Step: "build report", Msg: fmt.Sprintf("quantile %v outside (0,1)", opt.Quantile)}
	}
	if opt.WaffleColumns <= 0 {
		opt.WaffleColumns = DefaultOptions().WaffleColumns
	}
	if opt.BarWidth <= 0 {
		opt.BarWidth = DefaultOptions().BarWidth
	}

	records := dataset.AddDerivedLength(ds.Records)
	rep := &Report{
		RunID:       opt.RunID,
		GeneratedAt: time.Now().UTC(),
		Source: Source{
			Name:        ds.Name,
			Format:      ds.Format,
			Rows:        len(records),
			TextColumn:  ds.TextColumn,
			ClassColumn: ds.ClassColumn,
		},
		Warnings: append([]string(nil), ds.Warnings...),
		opt:      opt,
	}
	if ds.ProjectColumn != "" {
		rep.Source.Projects = stats.DistinctProjects(records)
	}

	cats, err := stats.CategoryCounts(records)
	if err != nil {
		return nil, err
	}
	stats.SortCategories(cats, opt.Sort)
	rep.Categories = cats
	rep.Reference = stats.CompareToReference(cats)

	if rep.Lengths, err = stats.LengthStatistics(records); err != nil {
		return nil, err
	}
	if rep.Histogram, err = stats.Histogram(records, opt.Bins); err != nil {
		return nil, err
	}
	if rep.ByCategory, err = stats.LengthByCategory(records); err != nil {
		return nil, err
	}

	kept, threshold, err := stats.FilterBelowQuantile(records, opt.Quantile)
	if err != nil {
		return nil, err
	}
	if len(kept) == 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("no records below the %s quantile (%.2f); trimmed view skipped", percentile(opt.Quantile), threshold))
	} else {
		tv := &TrimmedView{Quantile: opt.Quantile, Threshold: threshold, Rows: len(kept)}
		if tv.Lengths, err = stats.LengthStatistics(kept); err != nil {
			return nil, err
		}
		if tv.Histogram, err = stats.Histogram(kept, opt.Bins); err != nil {
			return nil, err
		}
		if tv.ByCategory, err = stats.LengthByCategory(kept); err != nil {
			return nil, err
		}
		rep.Trimmed = tv
	}

	if opt.Languages {
		if rep.Languages, err = stats.LanguageShares(records); err != nil {
			return nil, err
		}
	}
	rep.Charts = buildCharts(rep)
	return rep, nil
}

// percentile formats 0.95 as "95th".
func percentile(q float64) string {
	p := math.Round(q*1e6) / 1e4
	s := fmt.Sprintf("%g", p)
	n := int(p)
	if float64(n) != p {
		return s + "th"
	}
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return s + "th"
	case n%10 == 1:
		return s + "st"
	case n%10 == 2:
		return s + "nd"
	case n%10 == 3:
		return s + "rd"
	}
	return s + "th"
}
