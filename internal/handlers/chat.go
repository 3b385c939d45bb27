package handlers

import (
	"errors"
	"html/template"
	"net/url"

	"github.com/gofiber/fiber/v3"

	"github.com/seuros/posturai/internal/chat"
	"github.com/seuros/posturai/internal/httpx"
	"github.com/seuros/posturai/internal/topics"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
}

// SessionRequest is the body of POST /api/chat/sessions.
type SessionRequest struct {
	Topic string `json:"topic"`
}

// MessageRequest is the body of POST /api/chat/sessions/:id/messages.
type MessageRequest struct {
	Question string `json:"question"`
}

// MessageView is a chat message ready for the page.
type MessageView struct {
	chat.Message
	HTML template.HTML
}

// HandleTopicsPage renders the topic picker.
func (h *Handlers) HandleTopicsPage(c fiber.Ctx) error {
	return c.Render("topics", fiber.Map{
		"Title":  "Choose Your Posture Topic",
		"Nav":    "chat",
		"Topics": h.topics.All(),
	})
}

// HandleChatPage renders a conversation. Without a session query parameter
// a new conversation is opened and the browser redirected to it.
func (h *Handlers) HandleChatPage(c fiber.Ctx) error {
	topic, err := h.topics.Get(c.Params("topic"))
	if err != nil {
		return c.Redirect().Status(fiber.StatusFound).To("/chat")
	}

	sessionID := c.Query("session")
	conv, err := h.chats.Get(sessionID)
	if err != nil || conv.Topic.ID != topic.ID {
		conv, err = h.chats.Create(topic.ID)
		if err != nil {
			return err
		}
		return c.Redirect().Status(fiber.StatusFound).To(chatURL(topic.ID, conv.ID.String()))
	}

	snap := conv.Snapshot()
	messages := make([]MessageView, 0, len(snap.Messages))
	for _, m := range snap.Messages {
		messages = append(messages, MessageView{Message: m, HTML: chat.FormatMessage(m.Text)})
	}

	return c.Render("chat", fiber.Map{
		"Title":     topic.Title,
		"Nav":       "chat",
		"Topic":     topic,
		"SessionID": snap.ID.String(),
		"Messages":  messages,
		"Pending":   snap.Pending,
	})
}

// HandleChatForm accepts the chat page form and redirects back to the
// conversation.
func (h *Handlers) HandleChatForm(c fiber.Ctx) error {
	topicID := c.Params("topic")
	if _, err := h.topics.Get(topicID); err != nil {
		return c.Redirect().Status(fiber.StatusSeeOther).To("/chat")
	}

	sessionID := c.FormValue("session")
	_, err := h.chats.Send(c.Context(), sessionID, c.FormValue("question"))
	if errors.Is(err, chat.ErrNotFound) {
		return c.Redirect().Status(fiber.StatusSeeOther).To("/chat/" + url.PathEscape(topicID))
	}
	// Blank and concurrent questions are ignored, like the page does.
	return c.Redirect().Status(fiber.StatusSeeOther).To(chatURL(topicID, sessionID))
}

// HandleTopics lists the conversation topics.
func (h *Handlers) HandleTopics(c fiber.Ctx) error {
	return c.JSON(h.topics.All())
}

// HandleChat relays one question without keeping a conversation.
func (h *Handlers) HandleChat(c fiber.Ctx) error {
	var req ChatRequest
	if err := httpx.ReadJSON(c, &req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.chats.Ask(c.Context(), req.Topic, req.Question)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{
		"reply":    msg.Text,
		"fallback": msg.Fallback,
	})
}

func (h *Handlers) HandleCreateSession(c fiber.Ctx) error {
	var req SessionRequest
	if err := httpx.ReadJSON(c, &req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	conv, err := h.chats.Create(req.Topic)
	if err != nil {
		return chatError(c, err)
	}
	return httpx.JSON(c, fiber.StatusCreated, conv.Snapshot())
}

func (h *Handlers) HandleGetSession(c fiber.Ctx) error {
	conv, err := h.chats.Get(c.Params("id"))
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(conv.Snapshot())
}

func (h *Handlers) HandleDeleteSession(c fiber.Ctx) error {
	if err := h.chats.Delete(c.Params("id")); err != nil {
		return chatError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handlers) HandleSendMessage(c fiber.Ctx) error {
	var req MessageRequest
	if err := httpx.ReadJSON(c, &req); err != nil {
		return httpx.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	msg, err := h.chats.Send(c.Context(), c.Params("id"), req.Question)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(msg)
}

func chatError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, chat.ErrEmptyQuestion):
		return httpx.Error(c, fiber.StatusBadRequest, "Question not provided")
	case errors.Is(err, topics.ErrUnknownTopic):
		return httpx.Error(c, fiber.StatusBadRequest, "unknown topic")
	case errors.Is(err, chat.ErrNotFound):
		return httpx.Error(c, fiber.StatusNotFound, "conversation not found")
	case errors.Is(err, chat.ErrBusy):
		return httpx.Error(c, fiber.StatusConflict, err.Error())
	default:
		return err
	}
}

func chatURL(topicID, sessionID string) string {
	return "/chat/" + url.PathEscape(topicID) + "?session=" + url.QueryEscape(sessionID)
}
