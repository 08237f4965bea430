package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
)

// loaderFlags are shared by every command that reads a dataset. Values
// given on the command line override the loaded configuration.
type loaderFlags struct {
	textColumn    string
	classColumn   string
	projectColumn string
	delimiter     string
	sheetName     string
	sheetIndex    int
	strictLabels  bool
}

func (lf *loaderFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&lf.textColumn, "text-column", "", "column holding the requirement text (default from config: RequirementText)")
	f.StringVar(&lf.classColumn, "class-column", "", "column holding the category label (default from config: class)")
	f.StringVar(&lf.projectColumn, "project-column", "", "optional project id column (default from config: ProjectID)")
	f.StringVar(&lf.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (auto-detect if omitted)")
	f.StringVar(&lf.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	f.IntVar(&lf.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.BoolVar(&lf.strictLabels, "strict-labels", false, "fail on categories outside the NFR label set")
}

func (lf *loaderFlags) options(cmd *cobra.Command) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	delim := ""
	if cfg != nil {
		opt.TextColumn = cfg.TextColumn
		opt.ClassColumn = cfg.ClassColumn
		opt.ProjectColumn = cfg.ProjectColumn
		opt.SheetName = cfg.SheetName
		opt.SheetIndex = cfg.SheetIndex
		opt.StrictLabels = cfg.StrictLabels
		delim = cfg.Delimiter
	}
	f := cmd.Flags()
	if f.Changed("text-column") {
		opt.TextColumn = lf.textColumn
	}
	if f.Changed("class-column") {
		opt.ClassColumn = lf.classColumn
	}
	if f.Changed("project-column") {
		opt.ProjectColumn = lf.projectColumn
	}
	if f.Changed("sheet-name") {
		opt.SheetName = lf.sheetName
	}
	if f.Changed("sheet-index") {
		opt.SheetIndex = lf.sheetIndex
	}
	if f.Changed("strict-labels") {
		opt.StrictLabels = lf.strictLabels
	}
	if f.Changed("delimiter") {
		delim = lf.delimiter
	}
	d, err := dataset.ParseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = d
	return opt, nil
}

// load reads one dataset and logs what was found.
func (lf *loaderFlags) load(cmd *cobra.Command, path string) (*dataset.Dataset, error) {
	opt, err := lf.options(cmd)
	if err != nil {
		return nil, err
	}
	ds, err := dataset.Load(path, opt)
	if err != nil {
		return nil, err
	}
	log.Info("dataset loaded", "file", ds.Name, "format", ds.Format, "rows", ds.Len(), "warnings", len(ds.Warnings))
	for _, w := range ds.Warnings {
		log.Debug("loader warning", "file", ds.Name, "msg", w)
	}
	return ds, nil
}
