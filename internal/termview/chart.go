package termview

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/JonMunkholm/envdash/internal/core"
)

// chartHeight is the fixed height of the terminal chart.
const chartHeight = 10

// Chart renders the chart series as an ASCII line chart with a label header.
// An empty series renders a muted "no data" line.
func Chart(label string, points []core.Point, width int) string {
	if len(points) == 0 {
		return MutedText.Render(label + ": " + core.NoData)
	}

	data := make([]float64, len(points))
	for i, p := range points {
		data[i] = p.Value
	}

	opts := []asciigraph.Option{
		asciigraph.Height(chartHeight),
		asciigraph.Precision(2),
		asciigraph.SeriesColors(asciigraph.DodgerBlue),
		asciigraph.LabelColor(asciigraph.Default),
		asciigraph.Caption(yearSpan(points)),
	}

	// Reserve space for Y-axis labels. Stretching needs two points.
	if len(data) > 1 {
		opts = append(opts, asciigraph.Width(max(width-12, 10)))
	}

	chart := asciigraph.Plot(data, opts...)
	return lipgloss.JoinVertical(lipgloss.Left, Label.Render(label), chart)
}

func yearSpan(points []core.Point) string {
	first := core.FormatNumber(points[0].Year)
	last := core.FormatNumber(points[len(points)-1].Year)
	if first == last {
		return first
	}
	return first + " - " + last
}
