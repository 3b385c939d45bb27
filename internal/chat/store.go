package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/metrics"
	"github.com/seuros/posturai/internal/topics"
)

// DefaultIdleTimeout is how long an untouched conversation is kept.
const DefaultIdleTimeout = 30 * time.Minute

// Store keeps conversations in memory. Nothing survives a restart.
type Store struct {
	catalog *topics.Catalog
	backend Backend
	idle    time.Duration
	metrics *metrics.Manager

	mu            sync.RWMutex
	conversations map[uuid.UUID]*Conversation

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store. m may be nil.
func NewStore(catalog *topics.Catalog, backend Backend, idle time.Duration, m *metrics.Manager) *Store {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Store{
		catalog:       catalog,
		backend:       backend,
		idle:          idle,
		metrics:       m,
		conversations: make(map[uuid.UUID]*Conversation),
		stopChan:      make(chan struct{}),
	}
}

// Create opens a conversation on the given topic.
func (s *Store) Create(topicID string) (*Conversation, error) {
	topic, err := s.catalog.Get(topicID)
	if err != nil {
		return nil, err
	}

	conv := NewConversation(topic)
	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
	s.updateGauge()

	logging.L().Debug("conversation opened", zap.String("id", conv.ID.String()), zap.String("topic", topicID))
	return conv, nil
}

// Get looks a conversation up by id.
func (s *Store) Get(id string) (*Conversation, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	s.mu.RLock()
	conv, ok := s.conversations[parsed]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return conv, nil
}

// Delete drops a conversation.
func (s *Store) Delete(id string) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.conversations, conv.ID)
	s.mu.Unlock()
	s.updateGauge()
	return nil
}

// Send asks a question inside an existing conversation.
func (s *Store) Send(ctx context.Context, id, question string) (Message, error) {
	conv, err := s.Get(id)
	if err != nil {
		return Message{}, err
	}

	reply, err := conv.Send(ctx, s.backend, question)
	s.count(conv.Topic.ID, reply, err)
	return reply, err
}

// Ask relays a one-off question on a topic.
func (s *Store) Ask(ctx context.Context, topicID, question string) (Message, error) {
	topic, err := s.catalog.Get(topicID)
	if err != nil {
		return Message{}, err
	}

	reply, err := Ask(ctx, s.backend, topic, question)
	s.count(topicID, reply, err)
	return reply, err
}

// Len returns the number of open conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}

// Sweep drops conversations idle for longer than the idle timeout and
// returns how many were removed.
func (s *Store) Sweep() int {
	cutoff := nowFunc().Add(-s.idle)

	s.mu.Lock()
	removed := 0
	for id, conv := range s.conversations {
		if conv.idleSince().Before(cutoff) {
			delete(s.conversations, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.updateGauge()
		logging.L().Info("expired idle conversations", zap.Int("count", removed))
	}
	return removed
}

// Start sweeps idle conversations in the background until Stop.
func (s *Store) Start(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopChan:
				return
			}
		}
	}()
}

// Stop ends the background sweeper. It is safe to call more than once.
func (s *Store) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Store) count(topic string, reply Message, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, ErrBusy):
		outcome = "busy"
	case err != nil:
		outcome = "rejected"
	case reply.Fallback:
		outcome = "fallback"
	}
	s.metrics.CounterChatMessages.WithLabelValues(topic, outcome).Inc()
}

func (s *Store) updateGauge() {
	if s.metrics != nil {
		s.metrics.GaugeChatSessions.Set(float64(s.Len()))
	}
}
