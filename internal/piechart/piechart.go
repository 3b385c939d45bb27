// Package piechart turns an ordered distribution of labelled values into
// donut-chart wedge geometry.
package piechart

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Margin is the inset between the canvas edge and the wedge radius,
// leaving room for the slice stroke.
const Margin = 10.0

var (
	ErrInvalidSize  = errors.New("piechart: size must be a positive finite number")
	ErrInvalidValue = errors.New("piechart: slice value must be a finite number >= 0")
)

// Slice is one labelled share of a whole. Label and Color are display data
// and never influence the geometry.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Distribution is drawn in order, each slice starting where the previous
// one ended.
type Distribution []Slice

// Total sums the slice values.
func (d Distribution) Total() float64 {
	var total float64
	for _, s := range d {
		total += s.Value
	}
	return total
}

// NonZero returns the slices with a positive value, preserving order.
func (d Distribution) NonZero() Distribution {
	out := make(Distribution, 0, len(d))
	for _, s := range d {
		if s.Value > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wedge is the drawable geometry for a single slice.
type Wedge struct {
	Label string  `json:"label"`
	Color string  `json:"color"`
	Value float64 `json:"value"`
	// Share is the slice percentage of the chart total (0-100).
	Share float64 `json:"share"`
	// Offset is the cumulative percentage drawn before this wedge.
	Offset     float64 `json:"offset"`
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	LargeArc   bool    `json:"large_arc"`
	Path       string  `json:"path"`
	Legend     string  `json:"legend"`
}

// Span returns the angular extent of the wedge in degrees.
func (w Wedge) Span() float64 {
	return w.EndAngle - w.StartAngle
}

// Full reports whether the wedge covers the whole circle.
func (w Wedge) Full() bool {
	return math.Abs(w.Span()-360) < 1e-9
}

// Circle describes the donut hole.
type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Chart is the complete geometry for one donut chart.
type Chart struct {
	Size   float64 `json:"size"`
	Radius float64 `json:"radius"`
	Center Point   `json:"center"`
	Total  float64 `json:"total"`
	Wedges []Wedge `json:"wedges"`
	Hole   Circle  `json:"hole"`
}

// Empty reports whether there is nothing to draw.
func (c *Chart) Empty() bool {
	return len(c.Wedges) == 0
}

// TotalLabel formats the chart total for the centre text.
func (c *Chart) TotalLabel() string {
	return formatNumber(c.Total)
}

// Validate checks the canvas size and every slice value. All problems are
// reported together.
func Validate(size float64, dist Distribution) error {
	var err error
	if math.IsNaN(size) || math.IsInf(size, 0) || size <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: got %v", ErrInvalidSize, size))
	}
	for i, s := range dist {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: slice %d (%q) is %v", ErrInvalidValue, i, s.Label, s.Value))
		}
	}
	return err
}

// Compute lays out the distribution on a size×size canvas. Zero-value
// slices are dropped; a zero total yields a chart with no wedges.
func Compute(size float64, dist Distribution) (*Chart, error) {
	if err := Validate(size, dist); err != nil {
		return nil, err
	}

	slices := dist.NonZero()
	total := slices.Total()
	half := size / 2

	chart := &Chart{
		Size:   size,
		Radius: half - Margin,
		Center: Point{X: half, Y: half},
		Total:  total,
		Wedges: make([]Wedge, 0, len(slices)),
		Hole:   Circle{Center: Point{X: half, Y: half}, Radius: size / 6},
	}
	if total == 0 {
		return chart, nil
	}

	var offset float64
	for _, s := range slices {
		var w Wedge
		w, offset = step(chart, total, offset, s)
		chart.Wedges = append(chart.Wedges, w)
	}
	return chart, nil
}

// step draws one slice starting at offset and returns the wedge together
// with the offset for the next slice.
func step(c *Chart, total, offset float64, s Slice) (Wedge, float64) {
	share := s.Value / total * 100
	start := offset * 3.6
	end := (offset + share) * 3.6

	w := Wedge{
		Label:      s.Label,
		Color:      s.Color,
		Value:      s.Value,
		Share:      share,
		Offset:     offset,
		StartAngle: start,
		EndAngle:   end,
		Start:      polar(c.Center, c.Radius, start),
		End:        polar(c.Center, c.Radius, end),
		LargeArc:   share > 50,
		Legend:     Legend(s.Value, total),
	}
	w.Path = wedgePath(c.Center, c.Radius, w)
	return w, offset + share
}

// polar converts a clockwise-from-12-o'clock angle in degrees to a point.
func polar(center Point, radius, degrees float64) Point {
	rad := (degrees - 90) * math.Pi / 180
	return Point{
		X: center.X + radius*math.Cos(rad),
		Y: center.Y + radius*math.Sin(rad),
	}
}

func wedgePath(center Point, radius float64, w Wedge) string {
	largeArc := "0"
	if w.LargeArc {
		largeArc = "1"
	}
	parts := []string{
		"M", formatNumber(center.X), formatNumber(center.Y),
		"L", formatNumber(w.Start.X), formatNumber(w.Start.Y),
		"A", formatNumber(radius), formatNumber(radius), "0", largeArc, "1", formatNumber(w.End.X), formatNumber(w.End.Y),
		"Z",
	}
	return strings.Join(parts, " ")
}

// Legend formats value as a percentage of total with one decimal place.
// A zero total formats as 0.0.
func Legend(value, total float64) string {
	if total == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(value/total*100, 'f', 1, 64)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
