// Package metrics exposes the service prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	Registry *prometheus.Registry

	// counters
	CounterRequests       *prometheus.CounterVec
	CounterUpstreamCalls  *prometheus.CounterVec
	CounterChatMessages   *prometheus.CounterVec
	CounterFeedBroadcasts prometheus.Counter

	// gauges
	GaugeRequests     prometheus.Gauge
	GaugeChatSessions prometheus.Gauge

	// histograms
	HistRequestDuration  *prometheus.HistogramVec
	HistUpstreamDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("posturai", "test", prometheus.NewRegistry())
}

// NewManager registers every collector on reg.
func NewManager(namespace, subsystem string, reg *prometheus.Registry) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		Registry: reg,
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "route", "status"}),
		CounterUpstreamCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_calls_total",
			Help:      "Calls made to the monitoring backend",
		}, []string{"endpoint", "outcome"}),
		CounterChatMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chat_messages_total",
			Help:      "Chat messages by topic and outcome",
		}, []string{"topic", "outcome"}),
		CounterFeedBroadcasts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "feed_broadcasts_total",
			Help:      "Alert feed updates pushed to live clients",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeChatSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "chat_sessions",
			Help:      "Open chat conversations",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		HistUpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Monitoring backend call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"endpoint"}),
	}
}
