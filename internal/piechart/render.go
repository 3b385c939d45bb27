package piechart

import (
	"fmt"
	"html"
	"io"

	svg "github.com/ajstarks/svgo/float"
)

// Theme holds the colours used around the wedges.
type Theme struct {
	Stroke     string
	HoleFill   string
	HoleStroke string
	LabelFill  string
	ValueFill  string
	CenterText string
}

// DefaultTheme matches the dashboard stylesheet.
var DefaultTheme = Theme{
	Stroke:     "white",
	HoleFill:   "white",
	HoleStroke: "#e5e7eb",
	LabelFill:  "#374151",
	ValueFill:  "#1f2937",
	CenterText: "Total",
}

// Render writes the chart as a standalone SVG document. Wedges are drawn
// in order, followed by the donut hole and the centre text.
func Render(w io.Writer, c *Chart, theme Theme) {
	canvas := svg.New(w)
	canvas.Start(c.Size, c.Size, `class="pie-chart"`)

	for _, wedge := range c.Wedges {
		tooltip := fmt.Sprintf(`data-tooltip="%s: %s%%"`, html.EscapeString(wedge.Label), wedge.Legend)
		style := fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", wedge.Color, theme.Stroke)
		if wedge.Full() {
			// An arc with coincident endpoints draws nothing.
			canvas.Circle(c.Center.X, c.Center.Y, c.Radius, style, `class="pie-slice"`, tooltip)
			continue
		}
		canvas.Path(wedge.Path, style, `class="pie-slice"`, tooltip)
	}

	hole := c.Hole
	canvas.Circle(hole.Center.X, hole.Center.Y, hole.Radius,
		fmt.Sprintf("fill:%s;stroke:%s;stroke-width:2", theme.HoleFill, theme.HoleStroke))

	cx, cy := c.Center.X, c.Center.Y
	canvas.Text(cx, cy-5, theme.CenterText,
		fmt.Sprintf("text-anchor:middle;font-size:14px;font-weight:600;fill:%s", theme.LabelFill),
		`class="pie-center-text"`)
	canvas.Text(cx, cy+10, c.TotalLabel(),
		fmt.Sprintf("text-anchor:middle;font-size:16px;font-weight:700;fill:%s", theme.ValueFill),
		`class="pie-center-value"`)

	canvas.End()
}
