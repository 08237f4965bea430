package stats

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

func scenario() []dataset.Record {
	return []dataset.Record{
		{Text: "abc", Class: "F"},
		{Text: "de", Class: "F"},
		{Text: "fghij", Class: "SE"},
	}
}

// uniform returns records whose texts have lengths 1..n.
func uniform(n int) []dataset.Record {
	out := make([]dataset.Record, n)
	classes := []string{"F", "SE", "PE", "US"}
	for i := range out {
		out[i] = dataset.Record{Row: i + 1, Text: strings.Repeat("x", i+1), Class: classes[i%len(classes)]}
	}
	return out
}

func TestCategoryCountsScenario(t *testing.T) {
	cs, err := CategoryCounts(scenario())
	require.NoError(t, err)
	require.Len(t, cs, 2)

	assert.Equal(t, "F", cs[0].Class)
	assert.Equal(t, 2, cs[0].Count)
	assert.InDelta(t, 0.6667, cs[0].Percent, 1e-4)
	assert.Equal(t, "SE", cs[1].Class)
	assert.Equal(t, 1, cs[1].Count)
	assert.InDelta(t, 0.3333, cs[1].Percent, 1e-4)
}

func TestCategoryCountsSumsToTotal(t *testing.T) {
	for _, n := range []int{1, 7, 100, 625} {
		recs := uniform(n)
		cs, err := CategoryCounts(recs)
		require.NoError(t, err)
		var count int
		var pct float64
		for _, c := range cs {
			count += c.Count
			pct += c.Percent
		}
		assert.Equal(t, n, count)
		assert.InDelta(t, 1.0, pct, 1e-6)
	}
}

func TestCategoryCountsEmptyIsValueError(t *testing.T) {
	_, err := CategoryCounts(nil)
	var valErr *ValueError
	require.True(t, errors.As(err, &valErr), "got %v", err)
	assert.Equal(t, "category counts", valErr.Step)
}

func TestSortCategories(t *testing.T) {
	cs := []CategorySummary{
		{Class: "ZZ", Count: 5},
		{Class: "SE", Count: 5},
		{Class: "F", Count: 1},
		{Class: "A", Count: 9},
	}
	SortCategories(cs, ByCount)
	assert.Equal(t, []string{"A", "SE", "ZZ", "F"}, classesOf(cs))

	SortCategories(cs, ByLabel)
	assert.Equal(t, []string{"F", "A", "SE", "ZZ"}, classesOf(cs))

	order, err := ParseSortOrder("Label")
	require.NoError(t, err)
	assert.Equal(t, ByLabel, order)
	_, err = ParseSortOrder("size")
	assert.Error(t, err)
}

func classesOf(cs []CategorySummary) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Class
	}
	return out
}

func TestLengthStatisticsScenario(t *testing.T) {
	s, err := LengthStatistics(scenario())
	require.NoError(t, err)
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 3.333, s.Mean, 1e-3)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 5.0, s.Max)
	assert.Equal(t, 3.0, s.Median)
	assert.InDelta(t, 2.5, s.Q25, 1e-9)
	assert.InDelta(t, 4.0, s.Q75, 1e-9)
	assert.InDelta(t, math.Sqrt(7.0/3.0), s.Std, 1e-9)
}

func TestLengthStatisticsSingleAndEmpty(t *testing.T) {
	s, err := LengthStatistics([]dataset.Record{{Text: "abcd", Class: "F"}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.Std)
	assert.Equal(t, 4.0, s.Mean)

	_, err = LengthStatistics(nil)
	var valErr *ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestQuantileLinear(t *testing.T) {
	vals := make([]float64, 100)
	for i := range vals {
		vals[i] = float64(i + 1)
	}
	assert.InDelta(t, 95.05, Quantile(vals, 0.95), 1e-9)
	assert.InDelta(t, 50.5, Quantile(vals, 0.5), 1e-9)
	assert.Equal(t, 1.0, Quantile(vals, 0))
	assert.Equal(t, 100.0, Quantile(vals, 1))
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestFilterBelowQuantileUniform(t *testing.T) {
	recs := uniform(100)
	kept, threshold, err := FilterBelowQuantile(recs, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 95.05, threshold, 1e-9)
	assert.Len(t, kept, 95)

	maxLen := 0
	for _, r := range kept {
		assert.True(t, r.HasLength)
		if r.Length > maxLen {
			maxLen = r.Length
		}
	}
	assert.Less(t, float64(maxLen), threshold)
}

func TestFilterBelowQuantileIsSubset(t *testing.T) {
	recs := dataset.AddDerivedLength(append(uniform(40), scenario()...))
	for _, q := range []float64{0.05, 0.25, 0.5, 0.95, 0.999} {
		kept, threshold, err := FilterBelowQuantile(recs, q)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(kept), len(recs))
		for _, r := range kept {
			assert.Less(t, float64(r.Length), threshold)
		}
	}
}

func TestFilterBelowQuantileRejectsBadArguments(t *testing.T) {
	for _, q := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, _, err := FilterBelowQuantile(uniform(10), q)
		var valErr *ValueError
		require.True(t, errors.As(err, &valErr), "q=%v", q)
		assert.Equal(t, "quantile filter", valErr.Step)
	}
	_, _, err := FilterBelowQuantile(nil, 0.95)
	var valErr *ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestFilterBelowQuantileDegenerate(t *testing.T) {
	recs := []dataset.Record{{Text: "aa", Class: "F"}, {Text: "bb", Class: "SE"}}
	kept, threshold, err := FilterBelowQuantile(recs, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 2.0, threshold)
	assert.Empty(t, kept)
}

func TestLengthByCategory(t *testing.T) {
	recs := []dataset.Record{
		{Text: strings.Repeat("s", 10), Class: "SE"},
		{Text: strings.Repeat("f", 1), Class: "F"},
		{Text: strings.Repeat("f", 2), Class: "F"},
		{Text: strings.Repeat("f", 3), Class: "F"},
		{Text: strings.Repeat("f", 4), Class: "F"},
		{Text: strings.Repeat("f", 100), Class: "F"},
	}
	boxes, err := LengthByCategory(recs)
	require.NoError(t, err)
	require.Len(t, boxes, 2)

	f := boxes[0]
	assert.Equal(t, "F", f.Class)
	assert.Equal(t, 5, f.Count)
	assert.Equal(t, 1.0, f.Min)
	assert.Equal(t, 2.0, f.Q1)
	assert.Equal(t, 3.0, f.Median)
	assert.Equal(t, 4.0, f.Q3)
	assert.Equal(t, 100.0, f.Max)
	assert.Equal(t, 1.0, f.LowerWhisker)
	assert.Equal(t, 4.0, f.UpperWhisker)
	assert.Equal(t, 1, f.Outliers)

	se := boxes[1]
	assert.Equal(t, "SE", se.Class)
	assert.Equal(t, 1, se.Count)
	assert.Equal(t, 10.0, se.LowerWhisker)
	assert.Equal(t, 10.0, se.UpperWhisker)
	assert.Equal(t, 0, se.Outliers)
}

func TestHistogram(t *testing.T) {
	recs := uniform(100)
	bins, err := Histogram(recs, 10)
	require.NoError(t, err)
	require.Len(t, bins, 10)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 1.0, bins[0].Lo)
	assert.Equal(t, 100.0, bins[9].Hi)

	auto, err := Histogram(recs, 0)
	require.NoError(t, err)
	// IQR 49.5, n=100: width 2*49.5/100^(1/3) ≈ 21.33, span 99 → 5 bins
	assert.Len(t, auto, 5)

	flat, err := Histogram([]dataset.Record{{Text: "aa"}, {Text: "bb"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []Bin{{Lo: 2, Hi: 2, Count: 2}}, flat)

	_, err = Histogram(nil, 0)
	assert.Error(t, err)

	_, err = Histogram(recs, MaxBins+1)
	var valErr *ValueError
	require.True(t, errors.As(err, &valErr), "got %v", err)
	assert.Equal(t, "histogram", valErr.Step)
}

func TestCompareToReference(t *testing.T) {
	cs, err := CategoryCounts(scenario())
	require.NoError(t, err)
	deltas := CompareToReference(cs)
	require.Len(t, deltas, len(dataset.Labels))
	assert.Equal(t, "F", deltas[0].Class)
	assert.Equal(t, 255, deltas[0].ReferenceCount)
	assert.Equal(t, 20, deltas[0].ReferenceSize)
	assert.Equal(t, 28, deltas[5].ReferenceSize, deltas[5].Class)
	assert.InDelta(t, 2.0/3.0-255.0/625.0, deltas[0].Delta, 1e-9)
	assert.Equal(t, 0, deltas[1].Count)

	unknown := []CategorySummary{{Class: "alpha", Count: 1, Percent: 1}}
	assert.Nil(t, CompareToReference(unknown))
}

func TestDistinctProjects(t *testing.T) {
	recs := []dataset.Record{{Project: "1"}, {Project: "1"}, {Project: "2"}, {}}
	assert.Equal(t, 2, DistinctProjects(recs))
}

func TestLanguageShares(t *testing.T) {
	recs := []dataset.Record{
		{Text: "The system shall refresh the display every sixty seconds and notify the operator of every failure.", Class: "PE"},
		{Text: "", Class: "F"},
	}
	shares, err := LanguageShares(recs)
	require.NoError(t, err)
	total := 0
	var und *LanguageShare
	for i := range shares {
		total += shares[i].Count
		if shares[i].Lang == UndeterminedLanguage {
			und = &shares[i]
		}
	}
	assert.Equal(t, 2, total)
	require.NotNil(t, und)
	assert.GreaterOrEqual(t, und.Count, 1)
}
