package stats

import (
	"math"
	"sort"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between order statistics: pos = q*(n-1). For 1..100 and
// q=0.95 this gives 95.05.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// ValidQuantile reports whether q lies in the open interval (0,1).
func ValidQuantile(q float64) bool {
	return !math.IsNaN(q) && q > 0 && q < 1
}

// sortedLengths returns the derived lengths of records in ascending order.
func sortedLengths(records []dataset.Record) []float64 {
	vals := lengthValues(records)
	sort.Float64s(vals)
	return vals
}

func lengthValues(records []dataset.Record) []float64 {
	lengths := dataset.Lengths(dataset.AddDerivedLength(records))
	out := make([]float64, len(lengths))
	for i, n := range lengths {
		out[i] = float64(n)
	}
	return out
}
