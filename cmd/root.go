package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/nfrscope-cli/internal/config"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	noColor bool

	// Loaded configuration
	cfg *cfgpkg.Global

	log   = slog.New(slog.NewTextHandler(io.Discard, nil))
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "nfrscope",
	Short: "nfrscope: descriptive statistics for labeled non-functional requirements",
	Long: `nfrscope loads a labeled requirements dataset (CSV, TSV, ARFF or XLSX) and reports
how requirements are distributed across NFR categories and how long their texts are,
including a view trimmed below a length quantile.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.FgRed.Render("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.nfrscope/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored status output")
}

// setup runs before every command: logger, run id, then configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if noColor {
		color.Enable = false
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	runID = uuid.NewString()
	log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})).
		With("run_id", runID)

	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	log.Debug("config loaded", "file", cfgFile, "quantile", cfg.Quantile, "format", cfg.Format)
	return nil
}

func success(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.FgGreen.Render("✓"), fmt.Sprintf(format, a...))
}

func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintln(w, color.FgYellow.Render("⚠"), fmt.Sprintf(format, a...))
}
