package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nfrscope-cli/internal/report"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
	"github.com/KaramelBytes/nfrscope-cli/internal/utils"
)

var (
	catLoader loaderFlags
	catSort   string
	catCharts bool
	catJSON   bool
)

var categoriesCmd = &cobra.Command{
	Use:   "categories <file>",
	Short: "Count requirements per category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := catLoader.load(cmd, args[0])
		if err != nil {
			return err
		}
		cs, err := stats.CategoryCounts(ds.Records)
		if err != nil {
			return err
		}
		sortName := catSort
		if !cmd.Flags().Changed("sort") && cfg != nil {
			sortName = cfg.Sort
		}
		order, err := stats.ParseSortOrder(sortName)
		if err != nil {
			return err
		}
		stats.SortCategories(cs, order)

		out := cmd.OutOrStdout()
		if catJSON {
			b, err := utils.PrettyJSON(cs)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprint(out, report.CategoryTable(cs))
		if catCharts {
			width, cols := 50, 60
			if cfg != nil {
				width, cols = cfg.BarWidth, cfg.WaffleColumns
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, report.CountBars(cs, width))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.PercentBars(cs, width))
			fmt.Fprintln(out)
			fmt.Fprint(out, report.Waffle(cs, cols))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	catLoader.register(categoriesCmd)
	categoriesCmd.Flags().StringVar(&catSort, "sort", "count", "category order: count | label")
	categoriesCmd.Flags().BoolVar(&catCharts, "charts", false, "also draw bar and waffle charts")
	categoriesCmd.Flags().BoolVar(&catJSON, "json", false, "print JSON instead of a table")
}
