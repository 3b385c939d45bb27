package posture

import (
	"math"

	"github.com/seuros/posturai/internal/piechart"
)

// Slice colours shared by the dashboard charts.
const (
	ColorGood    = "#10b981"
	ColorForward = "#f59e0b"
	ColorSide    = "#ef4444"
	ColorOther   = "#8b5cf6"
	ColorEvening = "#3b82f6"
)

// Alert category weights used to split the total alert count.
const (
	forwardLeanAlertShare = 0.6
	sideTiltAlertShare    = 0.25
)

// Chart names a distribution rendered on the dashboard.
type Chart struct {
	Name  string
	Title string
	Build func(Summary) piechart.Distribution
}

// Charts lists the dashboard donut charts in display order.
var Charts = []Chart{
	{Name: "posture", Title: "🎯 Posture Distribution", Build: PostureDistribution},
	{Name: "alerts", Title: "⚠️ Alert Categories", Build: AlertCategories},
	{Name: "activity", Title: "🕐 Activity Distribution", Build: func(Summary) piechart.Distribution {
		return ActivityDistribution()
	}},
}

// LookupChart finds a dashboard chart by name.
func LookupChart(name string) (Chart, bool) {
	for _, c := range Charts {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

// PostureDistribution splits monitored time into good posture, the two
// tracked problems and whatever remains.
func PostureDistribution(s Summary) piechart.Distribution {
	other := math.Max(0, 100-s.GoodPosturePercentage-s.ForwardLeanPercentage-s.SideTiltPercentage)
	return piechart.Distribution{
		{Label: "Good Posture", Value: s.GoodPosturePercentage, Color: ColorGood},
		{Label: "Forward Lean", Value: s.ForwardLeanPercentage, Color: ColorForward},
		{Label: "Side Tilt", Value: s.SideTiltPercentage, Color: ColorSide},
		{Label: "Other Issues", Value: other, Color: ColorOther},
	}.NonZero()
}

// AlertCategories apportions the alert total; the last category takes the
// rounding remainder so the counts always add up.
func AlertCategories(s Summary) piechart.Distribution {
	total := s.TotalAlerts
	if total < 0 {
		total = 0
	}
	forward := int(math.Round(float64(total) * forwardLeanAlertShare))
	side := int(math.Round(float64(total) * sideTiltAlertShare))
	other := total - forward - side
	if other < 0 {
		other = 0
	}
	return piechart.Distribution{
		{Label: "Forward Lean", Value: float64(forward), Color: ColorForward},
		{Label: "Side Tilt", Value: float64(side), Color: ColorSide},
		{Label: "Other", Value: float64(other), Color: ColorOther},
	}.NonZero()
}

// ActivityDistribution is the time-of-day split of monitored activity.
func ActivityDistribution() piechart.Distribution {
	return piechart.Distribution{
		{Label: "Morning (6-12)", Value: 25, Color: ColorGood},
		{Label: "Afternoon (12-18)", Value: 45, Color: ColorForward},
		{Label: "Evening (18-24)", Value: 20, Color: ColorEvening},
		{Label: "Night (0-6)", Value: 10, Color: ColorOther},
	}
}
