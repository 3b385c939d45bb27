package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlertsEventCopiesAlerts(t *testing.T) {
	alerts := []string{"[10:02] Forward lean detected"}
	at := time.Date(2024, 6, 18, 10, 2, 0, 0, time.FixedZone("CEST", 2*3600))

	event := NewAlertsEvent(alerts, at)
	alerts[0] = "changed"

	assert.Equal(t, EventAlerts, event.Type)
	assert.Equal(t, []string{"[10:02] Forward lean detected"}, event.Alerts)
	assert.Equal(t, time.UTC, event.CreatedAt.Location())
	assert.True(t, at.Equal(event.CreatedAt))
}

func TestPublishBroadcastsJSON(t *testing.T) {
	hub := NewHub()
	t.Cleanup(hub.Close)

	client := &Client{hub: hub, conn: &fakeConn{}, send: make(chan []byte, 1)}
	hub.register <- client
	waitForCondition(t, time.Second, func() bool { return hub.GetClientCount() == 1 })

	hub.Publish(NewAlertsEvent([]string{"[09:40] Side tilt detected"}, time.Now()))

	select {
	case got := <-client.send:
		var decoded Event
		require.NoError(t, json.Unmarshal(got, &decoded))
		assert.Equal(t, EventAlerts, decoded.Type)
		assert.Equal(t, []string{"[09:40] Side tilt detected"}, decoded.Alerts)
	case <-time.After(time.Second):
		t.Fatal("did not receive published event")
	}
}

func TestPublishEncodesEmptyAlertsAsArray(t *testing.T) {
	data, err := json.Marshal(NewAlertsEvent(nil, time.Unix(0, 0)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"alerts":[]`)
}
