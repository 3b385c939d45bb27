package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/httpx"
	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/piechart"
	"github.com/seuros/posturai/internal/posture"
	"github.com/seuros/posturai/internal/trends"
	"github.com/seuros/posturai/internal/upstream"
)

// StatsErrorMessage is shown when the statistics cannot be loaded.
const StatsErrorMessage = "Failed to load statistics. Please try again."

const maxPassthroughDays = 365

// SummaryCard is one headline figure of the statistics page.
type SummaryCard struct {
	Icon  string
	Label string
	Value string
}

// PieView is a rendered donut chart with its legend.
type PieView struct {
	Name  string
	Title string
	Chart *piechart.Chart
	SVG   template.HTML
}

// DistributionChart is the JSON form of a dashboard donut chart.
type DistributionChart struct {
	Name  string          `json:"name"`
	Title string          `json:"title"`
	Chart *piechart.Chart `json:"chart"`
}

// DistributionsResponse is returned by /api/distributions.
type DistributionsResponse struct {
	Period posture.Period      `json:"period"`
	Charts []DistributionChart `json:"charts"`
}

// HandleStatistics renders the statistics dashboard for the selected
// period. Backend failures render the error state instead of failing.
func (h *Handlers) HandleStatistics(c fiber.Ctx) error {
	period, err := posture.ParsePeriod(c.Query("days"))
	if err != nil {
		period, _ = posture.LookupPeriod(posture.DefaultPeriod)
	}

	data := fiber.Map{
		"Title":    "Posture Statistics",
		"Nav":      "statistics",
		"Periods":  posture.Periods,
		"Period":   period,
		"Insights": posture.Insights(period),
	}

	stats, err := h.stats.PostureStats(c.Context(), period.Days)
	if err != nil {
		logging.L().Warn("failed to load posture statistics", zap.Int("days", period.Days), zap.Error(err))
		data["Error"] = StatsErrorMessage
		return c.Status(fiber.StatusBadGateway).Render("statistics", data)
	}

	pies, err := buildPies(stats.Summary, DefaultChartSize)
	if err != nil {
		return err
	}

	data["Summary"] = summaryCards(stats.Summary)
	data["Overview"] = posture.TodayOverview(stats)
	data["Pies"] = pies
	data["PostureBars"] = trends.PostureBars(stats.DailyData)
	data["AlertBars"] = trends.AlertBars(stats.DailyData)
	if h.feed != nil {
		data["Alerts"] = h.feed.Latest()
	}
	return c.Render("statistics", data)
}

// HandlePostureStats proxies the backend statistics.
func (h *Handlers) HandlePostureStats(c fiber.Ctx) error {
	days, ok := httpx.QueryInt(c, "days", posture.DefaultPeriod)
	if !ok || days < 1 || days > maxPassthroughDays {
		return httpx.Error(c, fiber.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxPassthroughDays))
	}

	stats, err := h.stats.PostureStats(c.Context(), days)
	if err != nil {
		return h.upstreamError(c, err)
	}
	return c.JSON(stats)
}

// HandleDistributions returns the donut chart geometry for a period.
func (h *Handlers) HandleDistributions(c fiber.Ctx) error {
	period, err := posture.ParsePeriod(c.Query("days"))
	if err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}
	size, err := chartSize(c)
	if err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.stats.PostureStats(c.Context(), period.Days)
	if err != nil {
		return h.upstreamError(c, err)
	}

	resp := DistributionsResponse{Period: period, Charts: make([]DistributionChart, 0, len(posture.Charts))}
	for _, def := range posture.Charts {
		chart, err := piechart.Compute(size, def.Build(stats.Summary))
		if err != nil {
			return httpx.Error(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		resp.Charts = append(resp.Charts, DistributionChart{Name: def.Name, Title: def.Title, Chart: chart})
	}
	return c.JSON(resp)
}

// HandleAlerts returns the alerts last seen by the live feed.
func (h *Handlers) HandleAlerts(c fiber.Ctx) error {
	alerts := []string{}
	if h.feed != nil {
		if latest := h.feed.Latest(); latest != nil {
			alerts = latest
		}
	}
	return c.JSON(fiber.Map{"alerts": alerts})
}

func (h *Handlers) upstreamError(c fiber.Ctx, err error) error {
	logging.L().Warn("backend request failed", zap.String("path", c.Path()), zap.Error(err))

	var statusErr *upstream.StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return httpx.Error(c, fiber.StatusBadGateway, statusErr.Message)
	}
	return httpx.Error(c, fiber.StatusBadGateway, StatsErrorMessage)
}

func buildPies(summary posture.Summary, size float64) ([]PieView, error) {
	pies := make([]PieView, 0, len(posture.Charts))
	for _, def := range posture.Charts {
		chart, err := piechart.Compute(size, def.Build(summary))
		if err != nil {
			return nil, fmt.Errorf("%s chart: %w", def.Name, err)
		}
		var buf bytes.Buffer
		piechart.Render(&buf, chart, piechart.DefaultTheme)
		pies = append(pies, PieView{
			Name:  def.Name,
			Title: def.Title,
			Chart: chart,
			SVG:   template.HTML(buf.String()), //nolint:gosec // labels are escaped by the renderer
		})
	}
	return pies, nil
}

func summaryCards(s posture.Summary) []SummaryCard {
	return []SummaryCard{
		{Icon: "⏱️", Label: "Total Hours", Value: formatDecimal(s.TotalHours, "h")},
		{Icon: "✅", Label: "Good Posture", Value: formatDecimal(s.GoodPosturePercentage, "%")},
		{Icon: "⚠️", Label: "Total Alerts", Value: strconv.Itoa(s.TotalAlerts)},
		{Icon: "📉", Label: "Forward Lean", Value: formatDecimal(s.ForwardLeanPercentage, "%")},
	}
}

func formatDecimal(v float64, unit string) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + unit
}
