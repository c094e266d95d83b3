package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/envdash/internal/core"
	"github.com/JonMunkholm/envdash/internal/termview"
)

// ShowCommand prints one indicator's table, chart and summary.
func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <indicator>",
		Short: "Show an indicator's values, trend and summary",
		Long: `Show the code, year/value table, ASCII trend chart and summary statistics
of one indicator. An unknown indicator prints an empty view.

Examples:
  envdash show "CO2 emissions (metric tons per capita)"

  # JSON output for scripting
  envdash show "CO2 emissions (metric tons per capita)" --json

  # Average values that share a year in the chart
  envdash show "CO2 emissions (metric tons per capita)" --duplicate-years mean`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cmd.Flags().Bool("json", false, "Print the view as JSON")
	cmd.Flags().String("duplicate-years", envOr("CHART_DUPLICATE_YEARS", string(core.DuplicateLast)), "Chart value for repeated years: last, mean or sum")
	cmd.Flags().Int("width", termview.DefaultWidth, "Chart width in columns")

	return cmd
}

type showOutput struct {
	Name    string       `json:"name"`
	Code    string       `json:"code"`
	Table   []core.Point `json:"table"`
	Chart   []core.Point `json:"chart"`
	Summary core.Summary `json:"summary"`
}

func runShow(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("duplicate-years")
	policy, err := core.ParseDuplicateYears(raw)
	if err != nil {
		return reportError(cmd, err)
	}

	view, err := newService(cmd, policy).View(cmd.Context(), args[0])
	if err != nil {
		return reportError(cmd, err)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		out := showOutput{
			Name:    view.Selection.Name,
			Code:    view.Selection.Code,
			Table:   view.Table,
			Chart:   view.Chart,
			Summary: view.Summary,
		}
		if out.Table == nil {
			out.Table = []core.Point{}
		}
		if out.Chart == nil {
			out.Chart = []core.Point{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	width, _ := cmd.Flags().GetInt("width")
	return termview.Render(cmd.OutOrStdout(), view, width)
}
