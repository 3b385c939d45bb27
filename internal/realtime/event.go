package realtime

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
)

const EventAlerts = "alerts"

// Event is the JSON frame sent to feed clients.
type Event struct {
	Type      string    `json:"type"`
	Alerts    []string  `json:"alerts"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAlertsEvent copies alerts so later changes by the caller do not leak
// into a queued frame.
func NewAlertsEvent(alerts []string, at time.Time) Event {
	copied := make([]string, len(alerts))
	copy(copied, alerts)
	return Event{Type: EventAlerts, Alerts: copied, CreatedAt: at.UTC()}
}

// Publish encodes the event and broadcasts it.
func (h *Hub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logging.L().Warn("failed to marshal realtime payload", zap.Error(err))
		return
	}
	h.Broadcast(data)
}
