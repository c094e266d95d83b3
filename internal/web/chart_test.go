package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/envdash/internal/core"
)

func TestRenderChartSVG(t *testing.T) {
	tests := []struct {
		name   string
		points []core.Point
	}{
		{name: "distinct values", points: []core.Point{{Year: 2010, Value: 0.9}, {Year: 2011, Value: 0.8}, {Year: 2012, Value: 1.2}}},
		{name: "flat values", points: []core.Point{{Year: 2010, Value: 5}, {Year: 2011, Value: 5}}},
		{name: "single point", points: []core.Point{{Year: 2010, Value: 3}}},
		{name: "zero flat values", points: []core.Point{{Year: 2010, Value: 0}, {Year: 2011, Value: 0}}},
		{name: "empty", points: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := core.View{
				Selection: core.Selection{Name: "CO2 emissions", Code: "EN.ATM.CO2E.PC"},
				Chart:     tt.points,
			}

			var buf bytes.Buffer
			var err error
			require.NotPanics(t, func() { err = renderChartSVG(&buf, v) })
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "<svg")
			assert.Contains(t, buf.String(), "CO2 emissions")
		})
	}
}
