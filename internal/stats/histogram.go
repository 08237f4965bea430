package stats

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// MaxAutoBins caps the automatic bin count.
const MaxAutoBins = 50

// MaxBins is the largest bin count accepted from callers.
const MaxBins = 500

// Bin is one histogram bucket covering [Lo, Hi); the last bin also includes Hi.
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count int     `json:"count" yaml:"count"`
}

// Histogram buckets the derived lengths of records into equal-width bins.
// bins <= 0 picks the count with the Freedman-Diaconis rule, capped at
// MaxAutoBins.
func Histogram(records []dataset.Record, bins int) ([]Bin, error) {
	if len(records) == 0 {
		return nil, emptyInput("histogram")
	}
	if bins > MaxBins {
		return nil, &ValueError{Step: "histogram", Msg: fmt.Sprintf("%d bins exceeds the limit of %d", bins, MaxBins)}
	}
	sorted := sortedLengths(records)
	minV, maxV := sorted[0], sorted[len(sorted)-1]
	if bins <= 0 {
		bins = autoBins(sorted)
	}
	if maxV == minV {
		return []Bin{{Lo: minV, Hi: maxV, Count: len(sorted)}}, nil
	}
	width := (maxV - minV) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = minV + float64(i)*width
		out[i].Hi = minV + float64(i+1)*width
	}
	out[bins-1].Hi = maxV
	for _, v := range sorted {
		idx := int((v - minV) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out, nil
}

// autoBins applies Freedman-Diaconis (width 2*IQR*n^(-1/3)), falling back
// to Sturges when the IQR is zero.
func autoBins(sorted []float64) int {
	n := float64(len(sorted))
	span := sorted[len(sorted)-1] - sorted[0]
	if span == 0 {
		return 1
	}
	iqr := Quantile(sorted, 0.75) - Quantile(sorted, 0.25)
	var bins int
	if iqr > 0 {
		h := 2 * iqr * math.Pow(n, -1.0/3.0)
		bins = int(math.Ceil(span / h))
	} else {
		bins = int(math.Ceil(math.Log2(n))) + 1
	}
	if bins < 1 {
		bins = 1
	}
	if bins > MaxAutoBins {
		bins = MaxAutoBins
	}
	return bins
}
