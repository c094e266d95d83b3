package termview

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/JonMunkholm/envdash/internal/core"
)

// DefaultWidth is used when the terminal width is unknown.
const DefaultWidth = 80

// Render writes the code, table, chart and summary of v to w.
func Render(w io.Writer, v core.View, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}

	fmt.Fprintln(w, Title.Render(v.Selection.Name))
	fmt.Fprintf(w, "%s %s\n\n", Label.Render("Indicator Code:"), AccentText.Render(v.Selection.Code))

	if v.Selection.Empty() {
		fmt.Fprintln(w, MutedText.Render("No data for this indicator."))
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "YEAR\tINDICATOR VALUE\t")
		for _, p := range v.Table {
			fmt.Fprintf(tw, "%s\t%s\t\n", core.FormatNumber(p.Year), core.FormatNumber(p.Value))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, Chart(v.Selection.Name+" Over Time", v.Chart, width))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  %s\t%s\n", Label.Render("Mean:"), v.Summary.MeanText())
	fmt.Fprintf(tw, "  %s\t%s\n", Label.Render("Max:"), v.Summary.MaxText())
	fmt.Fprintf(tw, "  %s\t%s\n", Label.Render("Min:"), v.Summary.MinText())
	return tw.Flush()
}
