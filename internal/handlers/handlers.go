// Package handlers serves the PosturAI dashboard, the topic chat and the
// JSON API behind them.
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/posturai/internal/chat"
	"github.com/seuros/posturai/internal/posture"
	"github.com/seuros/posturai/internal/topics"
)

// DefaultChartSize is the canvas size of the dashboard donut charts.
const DefaultChartSize = 200

// StatsSource fetches aggregate posture statistics.
type StatsSource interface {
	PostureStats(ctx context.Context, days int) (*posture.Stats, error)
}

// Pinger reports whether the monitoring backend answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AlertFeed exposes the alerts seen by the live feed.
type AlertFeed interface {
	Latest() []string
}

// Deps are the collaborators of the HTTP handlers. Feed may be nil.
type Deps struct {
	Stats   StatsSource
	Backend Pinger
	Chats   *chat.Store
	Topics  *topics.Catalog
	Feed    AlertFeed
	Version string
}

type Handlers struct {
	stats   StatsSource
	backend Pinger
	chats   *chat.Store
	topics  *topics.Catalog
	feed    AlertFeed
	version string
	started time.Time
}

func New(d Deps) *Handlers {
	return &Handlers{
		stats:   d.Stats,
		backend: d.Backend,
		chats:   d.Chats,
		topics:  d.Topics,
		feed:    d.Feed,
		version: d.Version,
		started: time.Now(),
	}
}

// Register mounts every page and API route on the router. The websocket
// feed, metrics and static assets are mounted by the server.
func (h *Handlers) Register(r fiber.Router) {
	r.Get("/", h.HandleIndex)
	r.Get("/health", h.HandleHealth)
	r.Get("/up", h.HandleUp)

	r.Get("/chat", h.HandleTopicsPage)
	r.Get("/chat/:topic", h.HandleChatPage)
	r.Post("/chat/:topic", h.HandleChatForm)
	r.Get("/statistics", h.HandleStatistics)

	r.Get("/charts/pie/:file", h.HandlePieChart)
	r.Get("/charts/trends/:file", h.HandleTrendChart)

	api := r.Group("/api")
	api.Get("/version", h.HandleVersion)
	api.Get("/topics", h.HandleTopics)
	api.Post("/chat", h.HandleChat)
	api.Post("/chat/sessions", h.HandleCreateSession)
	api.Get("/chat/sessions/:id", h.HandleGetSession)
	api.Delete("/chat/sessions/:id", h.HandleDeleteSession)
	api.Post("/chat/sessions/:id/messages", h.HandleSendMessage)
	api.Get("/posture-stats", h.HandlePostureStats)
	api.Get("/distributions", h.HandleDistributions)
	api.Get("/alerts", h.HandleAlerts)
}

// HandleIndex sends visitors to the chat, the landing view of the app.
func (h *Handlers) HandleIndex(c fiber.Ctx) error {
	return c.Redirect().Status(fiber.StatusFound).To("/chat")
}
