// Package posture models the aggregate posture statistics served by the
// monitoring backend and derives the dashboard distributions from them.
package posture

// DailyStat is one day of monitoring.
type DailyStat struct {
	Date                  string  `json:"date"`
	GoodPosturePercentage float64 `json:"good_posture_percentage"`
	PoorPosturePercentage float64 `json:"poor_posture_percentage"`
	AlertCount            int     `json:"alert_count"`
	HoursMonitored        float64 `json:"hours_monitored"`
}

// Summary aggregates a whole period.
type Summary struct {
	TotalHours            float64 `json:"total_hours"`
	GoodPosturePercentage float64 `json:"good_posture_percentage"`
	ForwardLeanPercentage float64 `json:"forward_lean_percentage"`
	SideTiltPercentage    float64 `json:"side_tilt_percentage"`
	TotalAlerts           int     `json:"total_alerts"`
}

// Stats is the payload of the posture statistics endpoint.
type Stats struct {
	DailyData []DailyStat `json:"daily_data"`
	Summary   Summary     `json:"summary"`
}

// Normalize replaces a missing daily series with an empty one.
func (s *Stats) Normalize() {
	if s.DailyData == nil {
		s.DailyData = []DailyStat{}
	}
}

// Overview is the "today" snapshot shown next to the navigation.
type Overview struct {
	MonitoringHours       float64 `json:"monitoring_hours"`
	GoodPosturePercentage float64 `json:"good_posture_percentage"`
	Alerts                int     `json:"alerts"`
}

// TodayOverview returns the most recent day of the series. It is zero when
// there is no data.
func TodayOverview(s *Stats) Overview {
	if s == nil || len(s.DailyData) == 0 {
		return Overview{}
	}
	last := s.DailyData[len(s.DailyData)-1]
	return Overview{
		MonitoringHours:       last.HoursMonitored,
		GoodPosturePercentage: last.GoodPosturePercentage,
		Alerts:                last.AlertCount,
	}
}
