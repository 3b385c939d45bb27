package piechart

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, dist Distribution) string {
	t.Helper()
	chart, err := Compute(220, dist)
	require.NoError(t, err)

	var buf bytes.Buffer
	Render(&buf, chart, DefaultTheme)
	return buf.String()
}

func TestRenderDrawsWedgesThenHoleAndText(t *testing.T) {
	out := render(t, Distribution{
		{Label: "Good Posture", Value: 75, Color: "#10b981"},
		{Label: "Side Tilt", Value: 25, Color: "#ef4444"},
	})

	assert.Equal(t, 2, strings.Count(out, "<path"))
	assert.Contains(t, out, "fill:#10b981")
	assert.Contains(t, out, `data-tooltip="Good Posture: 75.0%"`)
	assert.Contains(t, out, `data-tooltip="Side Tilt: 25.0%"`)

	lastPath := strings.LastIndex(out, "<path")
	hole := strings.Index(out, "<circle")
	require.Greater(t, hole, lastPath, "donut hole must be drawn after the wedges")
	assert.Contains(t, out, ">Total<")
	assert.Contains(t, out, ">100<")
}

func TestRenderFullSliceAsCircle(t *testing.T) {
	out := render(t, Distribution{{Label: "Only", Value: 12, Color: "#3b82f6"}})

	assert.NotContains(t, out, "<path")
	assert.Equal(t, 2, strings.Count(out, "<circle"))
	assert.Contains(t, out, ">12<")
}

func TestRenderEmptyChartKeepsHoleAndTotal(t *testing.T) {
	out := render(t, nil)

	assert.NotContains(t, out, "<path")
	assert.Equal(t, 1, strings.Count(out, "<circle"))
	assert.Contains(t, out, ">0<")
}

func TestRenderEscapesLabels(t *testing.T) {
	out := render(t, Distribution{{Label: `<b>"x"</b>`, Value: 1, Color: "#000"}, {Label: "y", Value: 1, Color: "#fff"}})

	assert.NotContains(t, out, `<b>"x"`)
	assert.Contains(t, out, "&lt;b&gt;")
}

func TestRenderKeepsOverlayOnOddSizes(t *testing.T) {
	chart, err := Compute(201, Distribution{
		{Label: "A", Value: 50, Color: "#10b981"},
		{Label: "B", Value: 50, Color: "#ef4444"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	Render(&buf, chart, DefaultTheme)
	out := buf.String()

	assert.Contains(t, out, `width="201.00" height="201.00"`)
	assert.Contains(t, out, "M 100.5 100.5")
	assert.Contains(t, out, `<circle cx="100.50" cy="100.50" r="33.50"`)
	assert.Contains(t, out, `x="100.50" y="95.50"`)
}
