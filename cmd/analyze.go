package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nfrscope-cli/internal/report"
	"github.com/KaramelBytes/nfrscope-cli/internal/stats"
	"github.com/KaramelBytes/nfrscope-cli/internal/utils"
)

var (
	anaLoader        loaderFlags
	anaOutputPath    string
	anaOutDir        string
	anaFormat        string
	anaQuantile      float64
	anaWaffleColumns int
	anaBins          int
	anaBarWidth      int
	anaSort          string
	anaLanguages     bool
	anaQuiet         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Report category distribution and requirement length statistics",
	Long: `Analyze one or more labeled requirement files (globs allowed). Each input gets a full
report: category counts and shares with bar and waffle charts, length statistics with a
histogram and per-category boxplots, and the same length views below a quantile.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		if anaOutputPath != "" && len(files) > 1 {
			return fmt.Errorf("--output accepts a single input (got %d); use --out-dir", len(files))
		}
		opt, format, err := reportOptions(cmd)
		if err != nil {
			return err
		}
		if anaOutDir != "" {
			if err := utils.EnsureDir(anaOutDir); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
		}

		out, status := cmd.OutOrStdout(), cmd.ErrOrStderr()
		taken := map[string]bool{}
		total := len(files)
		for i, path := range files {
			toFile := anaOutDir != "" || anaOutputPath != ""
			if !anaQuiet && toFile && total > 1 {
				fmt.Fprintf(status, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := anaLoader.load(cmd, path)
			if err != nil {
				return err
			}
			if !anaQuiet {
				for _, w := range ds.Warnings {
					warn(status, "%s: %s", ds.Name, w)
				}
			}
			rep, err := report.Build(ds, opt)
			if err != nil {
				return fmt.Errorf("%s: %w", ds.Name, err)
			}
			var buf bytes.Buffer
			if err := rep.Encode(&buf, format); err != nil {
				return err
			}

			switch {
			case anaOutDir != "":
				base := utils.BaseName(path)
				if sheet := ds.SheetName; sheet != "" {
					base += "__sheet-" + sheetSlug(sheet)
				}
				dst := utils.UniquePath(anaOutDir, base, ".report"+format.Ext(), taken)
				if err := utils.SafeWriteFile(dst, buf.Bytes()); err != nil {
					return err
				}
				if !anaQuiet {
					success(status, "Wrote report for %s to %s", ds.Name, dst)
				}
			case anaOutputPath != "":
				if err := utils.SafeWriteFile(anaOutputPath, buf.Bytes()); err != nil {
					return err
				}
				if !anaQuiet {
					success(status, "Wrote report to %s", anaOutputPath)
				}
			default:
				if i > 0 {
					fmt.Fprintln(out)
				}
				if _, err := out.Write(buf.Bytes()); err != nil {
					return err
				}
			}
			log.Debug("report built", "file", ds.Name, "categories", len(rep.Categories), "trimmed", rep.Trimmed != nil)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaLoader.register(analyzeCmd)
	f := analyzeCmd.Flags()
	f.StringVarP(&anaOutputPath, "output", "o", "", "write the report to this path (single input only)")
	f.StringVar(&anaOutDir, "out-dir", "", "write one report per input into this directory")
	f.StringVar(&anaFormat, "format", "", "report format: markdown | json | yaml (default from config)")
	f.Float64Var(&anaQuantile, "quantile", 0.95, "length quantile for the trimmed view, in (0,1)")
	f.IntVar(&anaWaffleColumns, "waffle-columns", 60, "cells per waffle row")
	f.IntVar(&anaBins, "bins", 0, "histogram bins (0 = automatic)")
	f.IntVar(&anaBarWidth, "bar-width", 50, "width of the longest text bar")
	f.StringVar(&anaSort, "sort", "", "category order: count | label (default from config)")
	f.BoolVar(&anaLanguages, "languages", false, "detect the language of each requirement text")
	f.BoolVarP(&anaQuiet, "quiet", "q", false, "suppress progress and warnings")
}

// reportOptions merges configuration and analyze flags.
func reportOptions(cmd *cobra.Command) (report.Options, report.Format, error) {
	opt := report.DefaultOptions()
	opt.RunID = runID
	formatName, sortName := "", ""
	if cfg != nil {
		opt.Quantile = cfg.Quantile
		opt.WaffleColumns = cfg.WaffleColumns
		opt.Bins = cfg.HistogramBins
		opt.BarWidth = cfg.BarWidth
		opt.Languages = cfg.DetectLanguage
		formatName, sortName = cfg.Format, cfg.Sort
	}
	f := cmd.Flags()
	if f.Changed("quantile") {
		opt.Quantile = anaQuantile
	}
	if f.Changed("waffle-columns") {
		if anaWaffleColumns <= 0 {
			return opt, "", fmt.Errorf("--waffle-columns must be positive")
		}
		opt.WaffleColumns = anaWaffleColumns
	}
	if f.Changed("bins") {
		if err := checkBins(anaBins); err != nil {
			return opt, "", err
		}
		opt.Bins = anaBins
	}
	if f.Changed("bar-width") {
		opt.BarWidth = anaBarWidth
	}
	if f.Changed("languages") {
		opt.Languages = anaLanguages
	}
	if f.Changed("format") {
		formatName = anaFormat
	}
	if f.Changed("sort") {
		sortName = anaSort
	}
	if !stats.ValidQuantile(opt.Quantile) {
		return opt, "", &stats.ValueError{Step: "quantile filter", Msg: fmt.Sprintf("quantile %v outside (0,1)", opt.Quantile)}
	}
	order, err := stats.ParseSortOrder(sortName)
	if err != nil {
		return opt, "", err
	}
	opt.Sort = order
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return opt, "", err
	}
	return opt, format, nil
}

// checkBins applies the same bounds as the histogram_bins config key.
func checkBins(n int) error {
	if n < 0 || n > stats.MaxBins {
		return &stats.ValueError{Step: "histogram", Msg: fmt.Sprintf("--bins must be between 0 and %d, got %d", stats.MaxBins, n)}
	}
	return nil
}

// expandInputs resolves globs, keeps literal paths, and returns a sorted,
// de-duplicated list.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// a literal path that does not exist still reaches the loader,
			// which reports it as an I/O error
			matches = []string{arg}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func sheetSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else if r == ' ' || r == '-' || r == '_' {
			b.WriteRune('-')
		}
	}
	ss := strings.Trim(b.String(), "-")
	if ss == "" {
		ss = "sheet"
	}
	return ss
}
