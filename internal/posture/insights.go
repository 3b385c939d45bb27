package posture

import "fmt"

// Insight is a recommendation card on the statistics page.
type Insight struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Insights returns the recommendation cards for the selected period.
func Insights(p Period) []Insight {
	return []Insight{
		{
			Icon:  "🎯",
			Title: "Primary Focus Area",
			Text:  "Your posture tends to deteriorate during afternoon hours (2-6 PM). Consider setting more frequent break reminders during this period.",
		},
		{
			Icon:  "📈",
			Title: "Progress Tracking",
			Text:  fmt.Sprintf("You've shown %d%% improvement in good posture time compared to the previous period. Keep up the great work!", p.Improvement),
		},
		{
			Icon:  "💡",
			Title: "Quick Tip",
			Text:  "Take breaks every 45 minutes for posture reset. Weekend posture shows improvement - try to maintain weekday awareness.",
		},
	}
}
