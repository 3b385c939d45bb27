package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/posturai/internal/httpx"
	"github.com/seuros/posturai/internal/piechart"
	"github.com/seuros/posturai/internal/posture"
	"github.com/seuros/posturai/internal/trends"
)

const (
	svgSuffix    = ".svg"
	svgMIME      = "image/svg+xml"
	minChartSize = 80
	maxChartSize = 800
)

// HandlePieChart renders one dashboard donut chart as SVG.
// GET /charts/pie/:name.svg?days=N&size=S
func (h *Handlers) HandlePieChart(c fiber.Ctx) error {
	name, ok := svgName(c.Params("file"))
	if !ok {
		return httpx.Error(c, fiber.StatusNotFound, "unknown chart")
	}
	def, ok := posture.LookupChart(name)
	if !ok {
		return httpx.Error(c, fiber.StatusNotFound, "unknown chart")
	}
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

	chart, err := piechart.Compute(size, def.Build(stats.Summary))
	if err != nil {
		return httpx.Error(c, fiber.StatusUnprocessableEntity, err.Error())
	}

	var buf bytes.Buffer
	piechart.Render(&buf, chart, piechart.DefaultTheme)
	c.Set(fiber.HeaderContentType, svgMIME)
	c.Set(fiber.HeaderCacheControl, "private, max-age=60")
	return c.Send(buf.Bytes())
}

// HandleTrendChart renders the daily posture or alert bars as SVG.
// GET /charts/trends/:name.svg?days=N
func (h *Handlers) HandleTrendChart(c fiber.Ctx) error {
	name, ok := svgName(c.Params("file"))
	if !ok || (name != "posture" && name != "alerts") {
		return httpx.Error(c, fiber.StatusNotFound, "unknown chart")
	}
	period, err := posture.ParsePeriod(c.Query("days"))
	if err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.stats.PostureStats(c.Context(), period.Days)
	if err != nil {
		return h.upstreamError(c, err)
	}

	var buf bytes.Buffer
	if name == "posture" {
		err = trends.RenderPosture(&buf, "📈 Daily Posture Trends", trends.PostureBars(stats.DailyData))
	} else {
		err = trends.RenderAlerts(&buf, "🚨 Alert Frequency", trends.AlertBars(stats.DailyData))
	}
	if errors.Is(err, trends.ErrNoData) {
		return httpx.Error(c, fiber.StatusNotFound, "no daily data for this period")
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, svgMIME)
	c.Set(fiber.HeaderCacheControl, "private, max-age=60")
	return c.Send(buf.Bytes())
}

func svgName(file string) (string, bool) {
	if !strings.HasSuffix(file, svgSuffix) {
		return "", false
	}
	name := strings.TrimSuffix(file, svgSuffix)
	return name, name != ""
}

func chartSize(c fiber.Ctx) (float64, error) {
	raw := c.Query("size")
	if raw == "" {
		return DefaultChartSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil || size < minChartSize || size > maxChartSize {
		return 0, fmt.Errorf("size must be an integer between %d and %d", minChartSize, maxChartSize)
	}
	return float64(size), nil
}
