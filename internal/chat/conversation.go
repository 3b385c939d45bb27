// Package chat keeps topic-bound PosturAI conversations and relays their
// questions to the assistant backend.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seuros/posturai/internal/logging"
	"github.com/seuros/posturai/internal/topics"
	"github.com/seuros/posturai/internal/upstream"
)

// FallbackReply replaces the assistant answer when the backend fails.
const FallbackReply = "Sorry, I'm having trouble responding right now. Please try again."

var (
	ErrEmptyQuestion = errors.New("question is empty")
	ErrBusy          = errors.New("a question is already awaiting a reply")
	ErrNotFound      = errors.New("conversation not found")
)

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one entry of a conversation.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Topic     string    `json:"topic,omitempty"`
	Fallback  bool      `json:"fallback,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Backend answers questions. *upstream.Client implements it.
type Backend interface {
	Chat(ctx context.Context, req upstream.ChatRequest) (*upstream.ChatResponse, error)
}

var nowFunc = time.Now

func newMessage(text string, sender Sender, topic string) Message {
	return Message{
		ID:        uuid.New(),
		Text:      text,
		Sender:    sender,
		Topic:     topic,
		CreatedAt: nowFunc(),
	}
}

// Conversation is safe for concurrent use. At most one question is in
// flight at a time.
type Conversation struct {
	ID    uuid.UUID
	Topic topics.Topic

	mu         sync.Mutex
	messages   []Message
	pending    bool
	lastActive time.Time
}

// Snapshot is a point-in-time copy of a conversation.
type Snapshot struct {
	ID       uuid.UUID    `json:"id"`
	Topic    topics.Topic `json:"topic"`
	Messages []Message    `json:"messages"`
	Pending  bool         `json:"pending"`
}

// NewConversation opens a conversation with the topic greeting.
func NewConversation(topic topics.Topic) *Conversation {
	now := nowFunc()
	return &Conversation{
		ID:         uuid.New(),
		Topic:      topic,
		messages:   []Message{newMessage(topic.Greeting(), SenderAI, topic.ID)},
		lastActive: now,
	}
}

// Snapshot copies the message list.
func (c *Conversation) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return Snapshot{ID: c.ID, Topic: c.Topic, Messages: msgs, Pending: c.pending}
}

func (c *Conversation) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Send records the question, asks the backend and records the answer. A
// backend failure is not returned: the fallback reply is recorded instead
// and the returned message has Fallback set.
func (c *Conversation) Send(ctx context.Context, backend Backend, question string) (Message, error) {
	if strings.TrimSpace(question) == "" {
		return Message{}, ErrEmptyQuestion
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Message{}, ErrBusy
	}
	c.pending = true
	c.messages = append(c.messages, newMessage(question, SenderUser, c.Topic.ID))
	c.lastActive = nowFunc()
	c.mu.Unlock()

	reply := ask(ctx, backend, c.Topic, question)

	c.mu.Lock()
	c.messages = append(c.messages, reply)
	c.pending = false
	c.lastActive = nowFunc()
	c.mu.Unlock()

	return reply, nil
}

// Ask relays a single question without keeping any history.
func Ask(ctx context.Context, backend Backend, topic topics.Topic, question string) (Message, error) {
	if strings.TrimSpace(question) == "" {
		return Message{}, ErrEmptyQuestion
	}
	return ask(ctx, backend, topic, question), nil
}

func ask(ctx context.Context, backend Backend, topic topics.Topic, question string) Message {
	resp, err := backend.Chat(ctx, upstream.ChatRequest{
		Question: question,
		Topic:    topic.ID,
		Context:  topic.Context(),
	})
	if err != nil {
		logging.L().Warn("assistant request failed",
			zap.String("topic", topic.ID),
			zap.Error(err),
		)
		// the fallback message carries no topic
		msg := newMessage(FallbackReply, SenderAI, "")
		msg.Fallback = true
		return msg
	}
	return newMessage(resp.Reply, SenderAI, topic.ID)
}
