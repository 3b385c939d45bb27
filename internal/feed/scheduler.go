// Package feed polls the monitoring backend for posture alerts and pushes
// changes to live dashboard clients.
package feed

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/metrics"
	"github.com/seuros/posturai/internal/realtime"
	"github.com/seuros/posturai/internal/upstream"
)

var nowFunc = time.Now

// AlertSource returns the latest alerts. *upstream.Client implements it.
type AlertSource interface {
	Alerts(ctx context.Context) (*upstream.Alerts, error)
}

// Publisher receives feed events. *realtime.Hub implements it.
type Publisher interface {
	Publish(event realtime.Event)
}

// Scheduler polls alerts on a fixed interval.
type Scheduler struct {
	source   AlertSource
	pub      Publisher
	interval time.Duration
	metrics  *metrics.Manager

	mu     sync.RWMutex
	latest []string
	seen   bool

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a scheduler. m may be nil.
func NewScheduler(source AlertSource, pub Publisher, interval time.Duration, m *metrics.Manager) *Scheduler {
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &Scheduler{
		source:   source,
		pub:      pub,
		interval: interval,
		metrics:  m,
		stopChan: make(chan struct{}),
	}
}

// Start begins polling in the background
func (s *Scheduler) Start() {
	logging.L().Info("starting alert feed", zap.Duration("interval", s.interval))
	go s.schedule()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Scheduler) schedule() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on start
	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			return
		}
	}
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	if _, err := s.Poll(ctx); err != nil {
		logging.L().Warn("failed to poll alerts", zap.Error(err))
	}
}

// Poll fetches alerts once and publishes them when they differ from the
// previous poll. It reports whether an event was published.
func (s *Scheduler) Poll(ctx context.Context) (bool, error) {
	alerts, err := s.source.Alerts(ctx)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	if s.seen && slices.Equal(s.latest, alerts.Alerts) {
		s.mu.Unlock()
		return false, nil
	}
	s.latest = slices.Clone(alerts.Alerts)
	s.seen = true
	s.mu.Unlock()

	s.pub.Publish(realtime.NewAlertsEvent(alerts.Alerts, nowFunc()))
	if s.metrics != nil {
		s.metrics.CounterFeedBroadcasts.Inc()
	}
	logging.L().Debug("alert feed changed", zap.Int("alerts", len(alerts.Alerts)))
	return true, nil
}

// Latest returns the alerts seen by the last successful poll.
func (s *Scheduler) Latest() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.latest)
}
