package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
)

// Markdown renders the report as sectioned Markdown with fenced text charts.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Source.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Source.Name))
	}
	b.WriteString(fmt.Sprintf("Format: %s\n", r.Source.Format))
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Source.Rows))
	b.WriteString(fmt.Sprintf("Columns: text=%s, class=%s\n", safeVal(r.Source.TextColumn), safeVal(r.Source.ClassColumn)))
	if r.Source.Projects > 0 {
		b.WriteString(fmt.Sprintf("Projects: %d\n", r.Source.Projects))
	}
	b.WriteString(fmt.Sprintf("Categories: %d\n", len(r.Categories)))
	if r.RunID != "" {
		b.WriteString(fmt.Sprintf("Run: %s\n", r.RunID))
	}

	b.WriteString("\n[CATEGORY DISTRIBUTION]\n")
	b.WriteString(CategoryTable(r.Categories))
	b.WriteString("\n")
	b.WriteString(fenced(CountBars(r.Categories, r.opt.BarWidth)))

	b.WriteString("\n[PERCENT DISTRIBUTION]\n")
	b.WriteString(fenced(PercentBars(r.Categories, r.opt.BarWidth)))

	b.WriteString(fmt.Sprintf("\n[WAFFLE] (%d columns, one cell per requirement)\n", r.opt.WaffleColumns))
	b.WriteString(fenced(renderWaffle(r.Categories, r.opt.WaffleColumns)))

	var rows [][]string
	if len(r.Reference) > 0 {
		b.WriteString("\n[REFERENCE COMPARISON]\n")
		for _, d := range r.Reference {
			rows = append(rows, []string{
				displayLabel(d.Class),
				fmt.Sprintf("%d", d.Count),
				fmt.Sprintf("%.2f%%", d.Percent*100),
				fmt.Sprintf("%d", d.ReferenceCount),
				fmt.Sprintf("%.2f%%", d.ReferencePercent*100),
				fmt.Sprintf("%+.2f", d.Delta*100),
				fmt.Sprintf("%d", d.ReferenceSize),
			})
		}
		b.WriteString(markdownTable([]string{"Category", "Count", "Percent", "Reference", "Reference %", "Δ pp", "Reference size"}, rows))
	}

	b.WriteString("\n[REQUIREMENT LENGTH]\n")
	b.WriteString(lengthSection(r.Lengths, r.Histogram, r.ByCategory, r.opt.BarWidth))

	if t := r.Trimmed; t != nil {
		b.WriteString(fmt.Sprintf("\n[BELOW %s PERCENTILE] (length < %.2f, %d of %d rows)\n",
			strings.ToUpper(percentile(t.Quantile)), t.Threshold, t.Rows, r.Source.Rows))
		b.WriteString(lengthSection(t.Lengths, t.Histogram, t.ByCategory, r.opt.BarWidth))
	}

	if len(r.Languages) > 0 {
		b.WriteString("\n[LANGUAGES]\n")
		rows = nil
		for _, l := range r.Languages {
			rows = append(rows, []string{l.Name, l.Lang, fmt.Sprintf("%d", l.Count), fmt.Sprintf("%.2f%%", l.Percent*100)})
		}
		b.WriteString(markdownTable([]string{"Language", "Code", "Count", "Percent"}, rows))
	}

	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func lengthSection(s stats.LengthSummary, bins []stats.Bin, boxes []stats.BoxStats, width int) string {
	var b strings.Builder
	b.WriteString(SummaryTable(s))
	b.WriteString("\nHistogram:\n")
	b.WriteString(fenced(renderHistogram(bins, width)))
	b.WriteString("\nBy category:\n")
	b.WriteString(BoxTable(boxes))
	b.WriteString("\n")
	b.WriteString(fenced(renderBoxplot(boxes, width)))
	return b.String()
}

// CategoryTable renders counts and shares, one row per category.
func CategoryTable(cs []stats.CategorySummary) string {
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{displayLabel(c.Class), fmt.Sprintf("%d", c.Count), fmt.Sprintf("%.2f%%", c.Percent*100)})
	}
	return markdownTable([]string{"Category", "Count", "Percent"}, rows)
}

// SummaryTable renders a describe()-style row.
func SummaryTable(s stats.LengthSummary) string {
	return markdownTable(
		[]string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"},
		[][]string{{
			fmt.Sprintf("%d", s.Count), num(s.Mean), num(s.Std), num(s.Min),
			num(s.Q25), num(s.Median), num(s.Q75), num(s.Max),
		}},
	)
}

// BoxTable renders per-category box statistics.
func BoxTable(boxes []stats.BoxStats) string {
	rows := make([][]string, 0, len(boxes))
	for _, bx := range boxes {
		rows = append(rows, []string{
			displayLabel(bx.Class), fmt.Sprintf("%d", bx.Count),
			num(bx.Min), num(bx.Q1), num(bx.Median), num(bx.Q3), num(bx.Max),
			fmt.Sprintf("%d", bx.Outliers),
		})
	}
	return markdownTable([]string{"Category", "n", "min", "q1", "median", "q3", "max", "outliers"}, rows)
}

// CountBars draws the frequency bar chart.
func CountBars(cs []stats.CategorySummary, width int) string {
	items := make([]barItem, len(cs))
	for i, c := range cs {
		items[i] = barItem{Label: c.Class, Value: float64(c.Count), Note: fmt.Sprintf("%d", c.Count)}
	}
	return renderBars(items, width)
}

// PercentBars draws shares with two-decimal percentage labels.
func PercentBars(cs []stats.CategorySummary, width int) string {
	items := make([]barItem, len(cs))
	for i, c := range cs {
		pct := roundTo2(c.Percent * 100)
		items[i] = barItem{Label: c.Class, Value: pct, Note: fmt.Sprintf("%.2f%%", pct)}
	}
	return renderBars(items, width)
}

// Waffle draws one cell per requirement with a legend.
func Waffle(cs []stats.CategorySummary, columns int) string { return renderWaffle(cs, columns) }

// HistogramChart draws length bins as horizontal bars.
func HistogramChart(bins []stats.Bin, width int) string { return renderHistogram(bins, width) }

// Boxplot draws per-category boxes on a shared axis.
func Boxplot(boxes []stats.BoxStats, width int) string { return renderBoxplot(boxes, width) }

// LabelTable lists the closed label set with its reference distribution
// and mean requirement size.
func LabelTable() string {
	rows := make([][]string, 0, len(dataset.Labels))
	for _, l := range dataset.Labels {
		rows = append(rows, []string{
			l.Code, l.Name, fmt.Sprintf("%d", l.Reference),
			fmt.Sprintf("%.2f%%", float64(l.Reference)*100/float64(dataset.ReferenceTotal)),
			fmt.Sprintf("%d", l.Size),
		})
	}
	return markdownTable([]string{"Code", "Name", "Reference", "Reference %", "Size"}, rows)
}

// markdownTable renders a GitHub-flavored table.
func markdownTable(header []string, rows [][]string) string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range rows {
		clean := make([]string, len(row))
		for i, v := range row {
			clean[i] = safeVal(v)
		}
		table.Append(clean)
	}
	table.Render()
	return b.String()
}

func fenced(s string) string {
	if s == "" {
		return ""
	}
	return "```\n" + s + "```\n"
}

func num(v float64) string { return fmt.Sprintf("%.2f", v) }

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
