package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// LengthSummary holds descriptive statistics of the derived length column.
type LengthSummary struct {
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q25    float64 `json:"q25" yaml:"q25"`
	Median float64 `json:"median" yaml:"median"`
	Q75    float64 `json:"q75" yaml:"q75"`
	Max    float64 `json:"max" yaml:"max"`
}

// LengthStatistics describes the derived lengths of records. Std is the
// sample standard deviation (n-1) and is 0 for a single record.
func LengthStatistics(records []dataset.Record) (LengthSummary, error) {
	if len(records) == 0 {
		return LengthSummary{}, emptyInput("length statistics")
	}
	return describe(sortedLengths(records)), nil
}

func describe(sorted []float64) LengthSummary {
	s := LengthSummary{Count: len(sorted)}
	if len(sorted) == 0 {
		return s
	}
	// Welford update
	var mean, m2 float64
	for i, x := range sorted {
		delta := x - mean
		mean += delta / float64(i+1)
		m2 += delta * (x - mean)
	}
	s.Mean = mean
	if len(sorted) > 1 {
		s.Std = math.Sqrt(m2 / float64(len(sorted)-1))
	}
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Median = Quantile(sorted, 0.5)
	s.Q75 = Quantile(sorted, 0.75)
	return s
}

// FilterBelowQuantile keeps the records whose derived length is strictly
// below the q-th quantile of the full set, and returns that threshold.
// The result is empty only when every record sits at or above the
// threshold, e.g. when all lengths are equal.
func FilterBelowQuantile(records []dataset.Record, q float64) ([]dataset.Record, float64, error) {
	if !ValidQuantile(q) {
		return nil, 0, &ValueError{Step: "quantile filter", Msg: fmt.Sprintf("quantile %v outside (0,1)", q)}
	}
	if len(records) == 0 {
		return nil, 0, emptyInput("quantile filter")
	}
	withLen := dataset.AddDerivedLength(records)
	threshold := Quantile(sortedLengths(withLen), q)
	kept := lo.Filter(withLen, func(r dataset.Record, _ int) bool {
		return float64(r.Length) < threshold
	})
	return kept, threshold, nil
}

// BoxStats is the per-category boxplot summary of derived length.
// Whiskers reach the most extreme values within 1.5*IQR of the quartiles;
// values beyond them are counted as outliers.
type BoxStats struct {
	Class        string  `json:"class" yaml:"class"`
	Count        int     `json:"count" yaml:"count"`
	Min          float64 `json:"min" yaml:"min"`
	Q1           float64 `json:"q1" yaml:"q1"`
	Median       float64 `json:"median" yaml:"median"`
	Q3           float64 `json:"q3" yaml:"q3"`
	Max          float64 `json:"max" yaml:"max"`
	LowerWhisker float64 `json:"lower_whisker" yaml:"lower_whisker"`
	UpperWhisker float64 `json:"upper_whisker" yaml:"upper_whisker"`
	Outliers     int     `json:"outliers" yaml:"outliers"`
}

// LengthByCategory computes box statistics per class, in label order.
func LengthByCategory(records []dataset.Record) ([]BoxStats, error) {
	if len(records) == 0 {
		return nil, emptyInput("length by category")
	}
	groups := lo.GroupBy(dataset.AddDerivedLength(records), func(r dataset.Record) string { return r.Class })
	classes := lo.Keys(groups)
	sort.Slice(classes, func(i, j int) bool { return labelLess(classes[i], classes[j]) })

	out := make([]BoxStats, 0, len(classes))
	for _, class := range classes {
		b := boxStats(sortedLengths(groups[class]))
		b.Class = class
		out = append(out, b)
	}
	return out, nil
}

// BoxStatsOf summarizes a whole record set as a single box.
func BoxStatsOf(records []dataset.Record) (BoxStats, error) {
	if len(records) == 0 {
		return BoxStats{}, emptyInput("box statistics")
	}
	return boxStats(sortedLengths(records)), nil
}

func boxStats(sorted []float64) BoxStats {
	b := BoxStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q1:     Quantile(sorted, 0.25),
		Median: Quantile(sorted, 0.5),
		Q3:     Quantile(sorted, 0.75),
	}
	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - 1.5*iqr
	highFence := b.Q3 + 1.5*iqr
	b.LowerWhisker = b.Max
	b.UpperWhisker = b.Min
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers++
			continue
		}
		if v < b.LowerWhisker {
			b.LowerWhisker = v
		}
		if v > b.UpperWhisker {
			b.UpperWhisker = v
		}
	}
	return b
}
