package posture

import (
	"fmt"
	"strconv"
)

// DefaultPeriod is the number of days shown when none is selected.
const DefaultPeriod = 7

// Period is a selectable reporting window.
type Period struct {
	Days     int    `json:"days"`
	Icon     string `json:"icon"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	// Improvement is the good-posture gain reported against the previous
	// window of the same length.
	Improvement int `json:"improvement"`
}

// Periods lists the windows offered by the dashboard.
var Periods = []Period{
	{Days: 7, Icon: "📅", Title: "Last 7 Days", Subtitle: "Weekly Overview", Improvement: 15},
	{Days: 14, Icon: "📆", Title: "Last 14 Days", Subtitle: "Bi-weekly Trends", Improvement: 12},
	{Days: 30, Icon: "🗓️", Title: "Last 30 Days", Subtitle: "Monthly Analysis", Improvement: 18},
}

// LookupPeriod returns the period with the given length.
func LookupPeriod(days int) (Period, bool) {
	for _, p := range Periods {
		if p.Days == days {
			return p, true
		}
	}
	return Period{}, false
}

// ParsePeriod parses a days query value. An empty value selects the
// default period.
func ParsePeriod(raw string) (Period, error) {
	if raw == "" {
		p, _ := LookupPeriod(DefaultPeriod)
		return p, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q: %w", raw, err)
	}
	p, ok := LookupPeriod(days)
	if !ok {
		return Period{}, fmt.Errorf("unsupported period: %d days (use 7, 14 or 30)", days)
	}
	return p, nil
}
