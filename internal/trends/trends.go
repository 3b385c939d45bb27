// Package trends lays out the per-day bar charts of the statistics page.
package trends

import (
	"errors"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/seuros/posturai/internal/posture"
)

// alertHeightStep is the bar height, in percent, contributed by one alert.
const alertHeightStep = 5

var ErrNoData = errors.New("trends: no daily data")

// PostureBar is a day of good vs poor posture, heights in percent.
type PostureBar struct {
	Date string  `json:"date"`
	Good float64 `json:"good"`
	Poor float64 `json:"poor"`
}

// AlertBar is a day of alerts; Height is capped at 100 percent.
type AlertBar struct {
	Date   string  `json:"date"`
	Count  int     `json:"count"`
	Height float64 `json:"height"`
}

// PostureBars converts daily stats into bar heights.
func PostureBars(days []posture.DailyStat) []PostureBar {
	bars := make([]PostureBar, 0, len(days))
	for _, d := range days {
		bars = append(bars, PostureBar{
			Date: d.Date,
			Good: clampPercent(d.GoodPosturePercentage),
			Poor: clampPercent(d.PoorPosturePercentage),
		})
	}
	return bars
}

// AlertBars converts daily alert counts into bar heights.
func AlertBars(days []posture.DailyStat) []AlertBar {
	bars := make([]AlertBar, 0, len(days))
	for _, d := range days {
		bars = append(bars, AlertBar{
			Date:   d.Date,
			Count:  d.AlertCount,
			Height: clampPercent(float64(d.AlertCount * alertHeightStep)),
		})
	}
	return bars
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(100, math.Max(0, v))
}

// RenderPosture draws good and poor posture bars side by side for each day.
func RenderPosture(w io.Writer, title string, bars []PostureBar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, 0, len(bars)*2)
	for _, b := range bars {
		values = append(values,
			chart.Value{Label: b.Date, Value: b.Good, Style: barStyle(posture.ColorGood)},
			chart.Value{Label: " ", Value: b.Poor, Style: barStyle(posture.ColorSide)},
		)
	}
	return render(w, title, values)
}

// RenderAlerts draws the alert frequency bars.
func RenderAlerts(w io.Writer, title string, bars []AlertBar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	values := make([]chart.Value, 0, len(bars))
	for _, b := range bars {
		values = append(values, chart.Value{Label: b.Date, Value: b.Height, Style: barStyle(posture.ColorForward)})
	}
	return render(w, title, values)
}

func barStyle(hex string) chart.Style {
	color := drawing.ColorFromHex(trimHash(hex))
	return chart.Style{
		FillColor:   color,
		StrokeColor: color,
		StrokeWidth: 1,
	}
}

func trimHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}

func render(w io.Writer, title string, values []chart.Value) error {
	graph := chart.BarChart{
		Title:      title,
		Height:     320,
		Width:      maxInt(480, len(values)*28),
		BarWidth:   20,
		BarSpacing: 8,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Bars: values,
	}
	return graph.Render(chart.SVG, w)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
