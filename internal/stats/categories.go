package stats

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// CategorySummary is the share of one category in a record set.
type CategorySummary struct {
	Class string `json:"class" yaml:"class"`
	Count int    `json:"count" yaml:"count"`
	// Percent is a fraction of the total in [0,1].
	Percent float64 `json:"percent" yaml:"percent"`
}

// SortOrder selects how category summaries are ordered.
type SortOrder string

const (
	// ByCount orders by descending count, ties broken by label order.
	ByCount SortOrder = "count"
	// ByLabel follows the order of dataset.Labels; unknown labels go last, alphabetically.
	ByLabel SortOrder = "label"
)

// ParseSortOrder accepts "count" or "label" (case-insensitive).
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case ByCount, "":
		return ByCount, nil
	case ByLabel:
		return ByLabel, nil
	default:
		return "", &ValueError{Step: "sort", Msg: fmt.Sprintf("unsupported order %q (use count|label)", s)}
	}
}

// CategoryCounts groups records by class and computes each class' share.
// The result is ordered ByCount.
func CategoryCounts(records []dataset.Record) ([]CategorySummary, error) {
	if len(records) == 0 {
		return nil, emptyInput("category counts")
	}
	counts := lo.CountValuesBy(records, func(r dataset.Record) string { return r.Class })
	total := float64(len(records))
	out := make([]CategorySummary, 0, len(counts))
	for class, n := range counts {
		out = append(out, CategorySummary{Class: class, Count: n, Percent: float64(n) / total})
	}
	SortCategories(out, ByCount)
	return out, nil
}

// SortCategories orders summaries in place.
func SortCategories(cs []CategorySummary, order SortOrder) {
	sort.SliceStable(cs, func(i, j int) bool {
		if order != ByLabel && cs[i].Count != cs[j].Count {
			return cs[i].Count > cs[j].Count
		}
		return labelLess(cs[i].Class, cs[j].Class)
	})
}

func labelLess(a, b string) bool {
	ra, rb := labelRank(a), labelRank(b)
	if ra != rb {
		return ra < rb
	}
	return a < b
}

func labelRank(code string) int {
	for i, l := range dataset.Labels {
		if l.Code == code {
			return i
		}
	}
	return len(dataset.Labels)
}

// ReferenceDelta compares a class share with the published corpus.
type ReferenceDelta struct {
	Class            string  `json:"class" yaml:"class"`
	Count            int     `json:"count" yaml:"count"`
	Percent          float64 `json:"percent" yaml:"percent"`
	ReferenceCount   int     `json:"reference_count" yaml:"reference_count"`
	ReferencePercent float64 `json:"reference_percent" yaml:"reference_percent"`
	// ReferenceSize is the published mean requirement size in words.
	ReferenceSize int `json:"reference_size" yaml:"reference_size"`
	// Delta is Percent - ReferencePercent, as a fraction.
	Delta float64 `json:"delta" yaml:"delta"`
}

// CompareToReference lines up the loaded distribution with the reference
// distribution of the published dataset. Classes absent from the loaded data
// are reported with a zero count. It returns nil when any loaded class is
// outside the label set, since the comparison is then meaningless.
func CompareToReference(cs []CategorySummary) []ReferenceDelta {
	byClass := lo.SliceToMap(cs, func(c CategorySummary) (string, CategorySummary) { return c.Class, c })
	for class := range byClass {
		if _, ok := dataset.LookupLabel(class); !ok {
			return nil
		}
	}
	out := make([]ReferenceDelta, 0, len(dataset.Labels))
	for _, l := range dataset.Labels {
		c := byClass[l.Code]
		refPct := float64(l.Reference) / float64(dataset.ReferenceTotal)
		out = append(out, ReferenceDelta{
			Class:            l.Code,
			Count:            c.Count,
			Percent:          c.Percent,
			ReferenceCount:   l.Reference,
			ReferencePercent: refPct,
			ReferenceSize:    l.Size,
			Delta:            c.Percent - refPct,
		})
	}
	return out
}

// DistinctProjects counts the distinct non-empty project ids.
func DistinctProjects(records []dataset.Record) int {
	ids := lo.FilterMap(records, func(r dataset.Record, _ int) (string, bool) {
		return r.Project, r.Project != ""
	})
	return len(lo.Uniq(ids))
}
