package report

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
)

// Chart is a renderer-neutral chart description emitted with JSON/YAML
// reports, so a frontend can draw the same views the text report shows.
type Chart struct {
	ChartType string        `json:"chart_type" yaml:"chart_type"`
	Title     string        `json:"title" yaml:"title"`
	XAxis     string        `json:"x_axis,omitempty" yaml:"x_axis,omitempty"`
	YAxis     string        `json:"y_axis,omitempty" yaml:"y_axis,omitempty"`
	Series    []ChartSeries `json:"series,omitempty" yaml:"series,omitempty"`
	// Boxes is set for boxplots only.
	Boxes []stats.BoxStats `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	// Columns is set for waffle charts only.
	Columns int      `json:"columns,omitempty" yaml:"columns,omitempty"`
	Colors  []string `json:"colors,omitempty" yaml:"colors,omitempty"`
}

// ChartSeries is one named data series.
type ChartSeries struct {
	Name string       `json:"name" yaml:"name"`
	Data []ChartPoint `json:"data" yaml:"data"`
}

// ChartPoint is a single labeled value.
type ChartPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#06B6D4",
	"#EC4899", "#84CC16", "#F97316", "#6366F1", "#14B8A6", "#A855F7",
}

func assignColors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = defaultColors[i%len(defaultColors)]
	}
	return out
}

func roundTo2(v float64) float64 { return math.Round(v*100) / 100 }

func buildCharts(r *Report) []Chart {
	counts := make([]ChartPoint, len(r.Categories))
	shares := make([]ChartPoint, len(r.Categories))
	for i, c := range r.Categories {
		counts[i] = ChartPoint{Label: c.Class, Value: float64(c.Count)}
		shares[i] = ChartPoint{Label: c.Class, Value: roundTo2(c.Percent * 100)}
	}
	colors := assignColors(len(r.Categories))
	charts := []Chart{
		{ChartType: "bar", Title: "Category distribution", XAxis: "Category", YAxis: "Frequency",
			Series: []ChartSeries{{Name: "count", Data: counts}}, Colors: colors},
		{ChartType: "bar", Title: "Category distribution (percent)", XAxis: "Category", YAxis: "Percent of requirements",
			Series: []ChartSeries{{Name: "percent", Data: shares}}, Colors: colors},
		{ChartType: "waffle", Title: "Category share", Columns: r.opt.WaffleColumns,
			Series: []ChartSeries{{Name: "count", Data: counts}}, Colors: colors},
		histogramChart("Requirement length distribution", r.Histogram),
		{ChartType: "boxplot", Title: "Requirement length by category", XAxis: "Category", YAxis: "Length", Boxes: r.ByCategory},
	}
	if t := r.Trimmed; t != nil {
		title := fmt.Sprintf("below %s percentile", percentile(t.Quantile))
		charts = append(charts,
			histogramChart("Requirement length distribution, "+title, t.Histogram),
			Chart{ChartType: "boxplot", Title: "Requirement length by category, " + title, XAxis: "Category", YAxis: "Length", Boxes: t.ByCategory},
		)
	}
	return charts
}

func histogramChart(title string, bins []stats.Bin) Chart {
	pts := make([]ChartPoint, len(bins))
	for i, b := range bins {
		pts[i] = ChartPoint{Label: binLabel(b), Value: float64(b.Count)}
	}
	return Chart{ChartType: "histogram", Title: title, XAxis: "Length", YAxis: "Requirements",
		Series: []ChartSeries{{Name: "count", Data: pts}}}
}

func binLabel(b stats.Bin) string {
	return fmt.Sprintf("%.1f-%.1f", b.Lo, b.Hi)
}

// barItem is one row of a horizontal text bar chart.
type barItem struct {
	Label string
	Value float64
	Note  string
}

// renderBars draws horizontal bars scaled so the largest value spans width cells.
func renderBars(items []barItem, width int) string {
	if len(items) == 0 {
		return ""
	}
	labelW, maxV := 0, 0.0
	for _, it := range items {
		labelW = max(labelW, utf8.RuneCountInString(it.Label))
		maxV = math.Max(maxV, it.Value)
	}
	var b strings.Builder
	for _, it := range items {
		n := 0
		if maxV > 0 {
			n = int(math.Round(it.Value / maxV * float64(width)))
		}
		if n == 0 && it.Value > 0 {
			n = 1
		}
		fmt.Fprintf(&b, "%s │%s %s\n", padRight(it.Label, labelW), strings.Repeat("█", n), it.Note)
	}
	return b.String()
}

var waffleGlyphs = []rune{'#', '@', '%', '*', '+', '=', 'o', 'x', '~', ':', '&', '$', '^', '!', '?'}

// renderWaffle draws one cell per record, row-major, in category order, with
// a legend mapping glyphs to categories and their percentage.
func renderWaffle(cs []stats.CategorySummary, columns int) string {
	if len(cs) == 0 || columns <= 0 {
		return ""
	}
	var cells []rune
	for i, c := range cs {
		g := waffleGlyphs[i%len(waffleGlyphs)]
		for j := 0; j < c.Count; j++ {
			cells = append(cells, g)
		}
	}
	var b strings.Builder
	for start := 0; start < len(cells); start += columns {
		end := min(start+columns, len(cells))
		b.WriteString(string(cells[start:end]))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for i, c := range cs {
		fmt.Fprintf(&b, "%c %s (%.2f%%)\n", waffleGlyphs[i%len(waffleGlyphs)], c.Class, roundTo2(c.Percent*100))
	}
	return b.String()
}

// renderHistogram draws one bar per bin labeled with its range.
func renderHistogram(bins []stats.Bin, width int) string {
	items := make([]barItem, len(bins))
	for i, bin := range bins {
		closer := ")"
		if i == len(bins)-1 {
			closer = "]"
		}
		items[i] = barItem{
			Label: fmt.Sprintf("[%7.1f, %7.1f%s", bin.Lo, bin.Hi, closer),
			Value: float64(bin.Count),
			Note:  fmt.Sprintf("%d", bin.Count),
		}
	}
	return renderBars(items, width)
}

// renderBoxplot draws each category on a shared axis: whiskers as '-',
// the interquartile box as '=', the median as '|'.
func renderBoxplot(boxes []stats.BoxStats, width int) string {
	if len(boxes) == 0 {
		return ""
	}
	lo, hi := boxes[0].LowerWhisker, boxes[0].UpperWhisker
	labelW := 0
	for _, bx := range boxes {
		lo = math.Min(lo, bx.LowerWhisker)
		hi = math.Max(hi, bx.UpperWhisker)
		labelW = max(labelW, utf8.RuneCountInString(bx.Class))
	}
	pos := func(v float64) int {
		if hi == lo {
			return 0
		}
		p := int(math.Round((v - lo) / (hi - lo) * float64(width-1)))
		return min(max(p, 0), width-1)
	}
	var b strings.Builder
	for _, bx := range boxes {
		line := []rune(strings.Repeat(" ", width))
		for i := pos(bx.LowerWhisker); i <= pos(bx.UpperWhisker); i++ {
			line[i] = '-'
		}
		for i := pos(bx.Q1); i <= pos(bx.Q3); i++ {
			line[i] = '='
		}
		line[pos(bx.LowerWhisker)] = '|'
		line[pos(bx.UpperWhisker)] = '|'
		line[pos(bx.Median)] = '┃'
		note := fmt.Sprintf("n=%d", bx.Count)
		if bx.Outliers > 0 {
			note += fmt.Sprintf(", %d outlier(s)", bx.Outliers)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", padRight(bx.Class, labelW), strings.TrimRight(string(line), " "), note)
	}
	fmt.Fprintf(&b, "%s %-*.0f%*.0f\n", strings.Repeat(" ", labelW), width/2, lo, width-width/2, hi)
	return b.String()
}

func padRight(s string, w int) string {
	n := utf8.RuneCountInString(s)
	if n >= w {
		return s
	}
	return s + strings.Repeat(" ", w-n)
}

func displayLabel(class string) string {
	return dataset.DisplayClass(class)
}
