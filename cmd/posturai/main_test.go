package main

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/template/html/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seuros/posturai/internal/chat"
	"github.com/seuros/posturai/internal/handlers"
	"github.com/seuros/posturai/internal/piechart"
	"github.com/seuros/posturai/internal/posture"
	"github.com/seuros/posturai/internal/topics"
	"github.com/seuros/posturai/internal/trends"
)

func stubExecute(t *testing.T, fn func(version string, views, assets fs.FS) error) {
	t.Helper()
	original := executeCLI
	executeCLI = fn
	t.Cleanup(func() { executeCLI = original })
}

func TestRunPassesEmbeddedFilesToCLI(t *testing.T) {
	called := false
	stubExecute(t, func(version string, views, assets fs.FS) error {
		called = true
		assert.Equal(t, strings.TrimSpace(versionFile), version)

		for _, name := range []string{"layouts/main.html", "statistics.html", "chat.html", "topics.html"} {
			_, err := fs.Stat(views, name)
			assert.NoError(t, err, name)
		}
		css, err := fs.ReadFile(assets, "app.css")
		assert.NoError(t, err)
		assert.NotEmpty(t, css)
		return nil
	})

	require.NoError(t, run())
	assert.True(t, called)
}

func TestRunPropagatesExecuteError(t *testing.T) {
	stubExecute(t, func(version string, views, assets fs.FS) error {
		return errors.New("boom")
	})

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func loadEngine(t *testing.T) *html.Engine {
	t.Helper()
	views, err := fs.Sub(viewsFS, "views")
	require.NoError(t, err)
	engine := html.NewFileSystem(http.FS(views), ".html")
	require.NoError(t, engine.Load())
	return engine
}

func render(t *testing.T, name string, data fiber.Map) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, loadEngine(t).Render(&buf, name, data, "layouts/main"))
	return buf.String()
}

func TestStatisticsTemplateRendersDashboard(t *testing.T) {
	stats := &posture.Stats{
		DailyData: []posture.DailyStat{
			{Date: "06/17", GoodPosturePercentage: 60, PoorPosturePercentage: 40, AlertCount: 5, HoursMonitored: 4},
		},
		Summary: posture.Summary{TotalHours: 4, GoodPosturePercentage: 60, ForwardLeanPercentage: 25, SideTiltPercentage: 10, TotalAlerts: 5},
	}
	period, _ := posture.LookupPeriod(14)

	pies := make([]handlers.PieView, 0, len(posture.Charts))
	for _, def := range posture.Charts {
		chart, err := piechart.Compute(handlers.DefaultChartSize, def.Build(stats.Summary))
		require.NoError(t, err)
		var svg bytes.Buffer
		piechart.Render(&svg, chart, piechart.DefaultTheme)
		pies = append(pies, handlers.PieView{Name: def.Name, Title: def.Title, Chart: chart, SVG: template.HTML(svg.String())})
	}

	out := render(t, "statistics", fiber.Map{
		"Title":       "Posture Statistics",
		"Nav":         "statistics",
		"Periods":     posture.Periods,
		"Period":      period,
		"Insights":    posture.Insights(period),
		"Summary":     []handlers.SummaryCard{{Icon: "✅", Label: "Good Posture", Value: "60.0%"}},
		"Overview":    posture.TodayOverview(stats),
		"Pies":        pies,
		"PostureBars": trends.PostureBars(stats.DailyData),
		"AlertBars":   trends.AlertBars(stats.DailyData),
		"Alerts":      []string{"Forward lean <detected>"},
	})

	assert.Contains(t, out, "<title>Posture Statistics - PosturAI</title>")
	assert.Contains(t, out, `class="period active" href="/statistics?days=14"`)
	assert.Contains(t, out, "Good Posture <strong>60.0%</strong>")
	assert.Contains(t, out, `<svg`)
	assert.Contains(t, out, "12% improvement")
	assert.Contains(t, out, "Forward lean &lt;detected&gt;")
	assert.NotContains(t, out, "error-state")
}

func TestStatisticsTemplateRendersErrorState(t *testing.T) {
	period, _ := posture.LookupPeriod(7)
	out := render(t, "statistics", fiber.Map{
		"Title":    "Posture Statistics",
		"Nav":      "statistics",
		"Periods":  posture.Periods,
		"Period":   period,
		"Insights": posture.Insights(period),
		"Error":    handlers.StatsErrorMessage,
	})

	assert.Contains(t, out, handlers.StatsErrorMessage)
	assert.Contains(t, out, `class="retry" href="/statistics?days=7"`)
	assert.NotContains(t, out, "Today's Overview")
}

func TestChatTemplatesRender(t *testing.T) {
	catalog := topics.Default()
	out := render(t, "topics", fiber.Map{"Title": "Choose Your Posture Topic", "Nav": "chat", "Topics": catalog.All()})
	assert.Contains(t, out, `href="/chat/exercises"`)
	assert.Contains(t, out, `<a href="/chat" class="active">`)

	topic, err := catalog.Get("tips")
	require.NoError(t, err)
	msg := chat.Message{ID: uuid.New(), Text: "**Sit** up", Sender: chat.SenderAI, CreatedAt: time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)}
	sessionID := uuid.NewString()

	out = render(t, "chat", fiber.Map{
		"Title":     topic.Title,
		"Nav":       "chat",
		"Topic":     topic,
		"SessionID": sessionID,
		"Messages":  []handlers.MessageView{{Message: msg, HTML: chat.FormatMessage(msg.Text)}},
		"Pending":   false,
	})
	assert.Contains(t, out, `<div class="message ai">`)
	assert.Contains(t, out, "<strong>Sit</strong> up")
	assert.Contains(t, out, `name="session" value="`+sessionID+`"`)
	assert.Contains(t, out, topic.Questions[0])
	assert.Contains(t, out, "09:30")
}
