package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// IndicatorsCommand lists the indicators of the loaded dataset.
func IndicatorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "indicators",
		Short: "List indicators with their codes and row counts",
		Args:  cobra.NoArgs,
		RunE:  runIndicators,
	}
}

func runIndicators(cmd *cobra.Command, args []string) error {
	counts, err := newService(cmd, "").IndicatorCounts(cmd.Context())
	if err != nil {
		return reportError(cmd, err)
	}

	if len(counts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No indicators found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "INDICATOR\tCODE\tROWS")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%s\t%d\n", c.Name, c.Code, c.Rows)
	}
	return w.Flush()
}
