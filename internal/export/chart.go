package export

import (
	"bytes"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"spendwise/internal/core"
)

const maxChartBars = 8

// RenderCategoryChart draws a bar chart of spending per category as a PNG.
// It returns nil bytes when there is nothing to draw.
func RenderCategoryChart(txns []core.Transaction) ([]byte, error) {
	points := core.CategorySeries(txns, maxChartBars)
	if len(points) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, len(points))
	for i, p := range points {
		bars[i] = chart.Value{Label: p.Label, Value: p.Value}
	}

	graph := chart.BarChart{
		Title:    "Spending by Category",
		Width:    720,
		Height:   360,
		BarWidth: 48,
		Bars:     bars,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		Canvas: chart.Style{
			FillColor: drawing.ColorWhite,
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
