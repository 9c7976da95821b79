// Package charts renders monthly report data as PNG images.
package charts

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"moneta/internal/core"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// RenderMonthlyReport draws a per-category bar chart for one month, expenses
// in red and income in green. Returns nil bytes when the month has no data.
func (g *Generator) RenderMonthlyReport(report core.MonthlyReport) ([]byte, error) {
	if len(report.ByCategory) == 0 {
		return nil, nil
	}

	bars := make([]chart.Value, 0, len(report.ByCategory)*2)
	for _, row := range report.ByCategory {
		name := row.CategoryName
		if name == "" {
			name = "uncategorized"
		}
		if row.Expense.Cents > 0 {
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s: -%s", name, row.Expense.Decimal()),
				Value: float64(row.Expense.Cents) / 100.0,
				Style: chart.Style{
					StrokeColor: chart.ColorRed,
					FillColor:   chart.ColorRed.WithAlpha(160),
					FontSize:    10,
					FontColor:   chart.ColorBlack,
				},
			})
		}
		if row.Income.Cents > 0 {
			bars = append(bars, chart.Value{
				Label: fmt.Sprintf("%s: +%s", name, row.Income.Decimal()),
				Value: float64(row.Income.Cents) / 100.0,
				Style: chart.Style{
					StrokeColor: chart.ColorGreen,
					FillColor:   chart.ColorGreen.WithAlpha(160),
					FontSize:    10,
					FontColor:   chart.ColorBlack,
				},
			})
		}
	}

	if len(bars) == 0 {
		return nil, nil
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("%04d-%02d", report.Year, report.Month),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    1200,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%.2f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render monthly report chart: %w", err)
	}

	return buffer.Bytes(), nil
}
