package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/report"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
	"github.com/KaramelBytes/nfrscope-cli/internal/utils"
)

var (
	lenLoader    loaderFlags
	lenBelow     float64
	lenByClass   bool
	lenHistogram bool
	lenBins      int
	lenJSON      bool
)

type lengthsOutput struct {
	Threshold  *float64            `json:"threshold,omitempty"`
	Rows       int                 `json:"rows"`
	Summary    stats.LengthSummary `json:"summary"`
	Histogram  []stats.Bin         `json:"histogram,omitempty"`
	ByCategory []stats.BoxStats    `json:"by_category,omitempty"`
}

var lengthsCmd = &cobra.Command{
	Use:   "lengths <file>",
	Short: "Describe requirement text lengths",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkBins(lenBins); err != nil {
			return err
		}
		ds, err := lenLoader.load(cmd, args[0])
		if err != nil {
			return err
		}
		records := dataset.AddDerivedLength(ds.Records)
		res := lengthsOutput{}
		if cmd.Flags().Changed("below-quantile") {
			kept, threshold, err := stats.FilterBelowQuantile(records, lenBelow)
			if err != nil {
				return err
			}
			if len(kept) == 0 {
				return &stats.ValueError{Step: "length statistics", Msg: fmt.Sprintf("no records below length %.2f", threshold)}
			}
			records = kept
			res.Threshold = &threshold
		}
		res.Rows = len(records)
		if res.Summary, err = stats.LengthStatistics(records); err != nil {
			return err
		}
		if lenHistogram {
			if res.Histogram, err = stats.Histogram(records, lenBins); err != nil {
				return err
			}
		}
		if lenByClass {
			if res.ByCategory, err = stats.LengthByCategory(records); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if lenJSON {
			b, err := utils.PrettyJSON(res)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		if res.Threshold != nil {
			fmt.Fprintf(out, "Kept %d of %d rows with length < %.2f\n\n", res.Rows, ds.Len(), *res.Threshold)
		}
		fmt.Fprint(out, report.SummaryTable(res.Summary))
		width := 50
		if cfg != nil {
			width = cfg.BarWidth
		}
		if lenHistogram {
			fmt.Fprintln(out)
			fmt.Fprint(out, report.HistogramChart(res.Histogram, width))
		}
		if lenByClass {
			fmt.Fprintln(out)
			fmt.Fprint(out, report.BoxTable(res.ByCategory))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Boxplot(res.ByCategory, width))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lengthsCmd)
	lenLoader.register(lengthsCmd)
	f := lengthsCmd.Flags()
	f.Float64Var(&lenBelow, "below-quantile", 0.95, "keep only records strictly below this length quantile")
	f.BoolVar(&lenByClass, "by-class", false, "per-category box statistics")
	f.BoolVar(&lenHistogram, "histogram", false, "draw a length histogram")
	f.IntVar(&lenBins, "bins", 0, "histogram bins (0 = automatic)")
	f.BoolVar(&lenJSON, "json", false, "print JSON instead of tables")
}
