package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/nfrscope-cli/internal/dataset"
	"github.com/KaramelBytes/nfrscope-cli/internal/report"
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "List the NFR category labels and their reference distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprint(out, report.LabelTable())
		fmt.Fprintf(out, "\n%d labels, %d requirements in the reference corpus\n", len(dataset.Labels), dataset.ReferenceTotal)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelsCmd)
}
