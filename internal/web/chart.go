package web

import (
	"fmt"
	"io"
	"math"

	"github.com/a-h/templ"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/JonMunkholm/envdash/internal/core"
)

const (
	chartWidth  = 800
	chartHeight = 400
)

// renderChartSVG draws the chart series of v as an SVG line chart.
// An empty series renders a placeholder.
func renderChartSVG(w io.Writer, v core.View) error {
	points := v.Chart
	if len(points) == 0 {
		return renderPlaceholderSVG(w, "No data for "+v.Selection.Name)
	}

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	minY, maxY := points[0].Value, points[0].Value
	for i, p := range points {
		xs[i] = p.Year
		ys[i] = p.Value
		minY = min(minY, p.Value)
		maxY = max(maxY, p.Value)
	}

	// go-chart needs a non-zero range on both axes.
	if len(points) == 1 {
		xs = []float64{xs[0], xs[0] + 1}
		ys = []float64{ys[0], ys[0]}
	}
	// Left nil, go-chart fits the axis to the data.
	var yRange chart.Range
	if maxY <= minY {
		pad := max(math.Abs(minY)*0.1, 1)
		yRange = &chart.ContinuousRange{Min: minY - pad, Max: maxY + pad}
	}

	ch := chart.Chart{
		Title:      v.Selection.Name,
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           core.ColYear,
			ValueFormatter: yearFormatter,
		},
		YAxis: chart.YAxis{
			Name:  v.Selection.Code,
			Range: yRange,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    v.Selection.Name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex("2563eb"),
					StrokeWidth: 2,
					DotColor:    drawing.ColorFromHex("2563eb"),
					DotWidth:    3,
				},
			},
		},
	}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}

func renderPlaceholderSVG(w io.Writer, label string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
			`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#6b7280">%s</text>`+
			`</svg>`,
		chartWidth, chartHeight, chartWidth, chartHeight, templ.EscapeString(label))
	return err
}
