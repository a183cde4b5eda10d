package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Raunak-Sarmacharya/localcooks-api/internal/model"
	"github.com/Raunak-Sarmacharya/localcooks-api/internal/repository"
)

// ChatHandler serves the per-application chat thread shared by the chef
// and the location manager. System messages are appended by the event
// consumer; this surface handles reading the thread and user replies.
type ChatHandler struct {
	Conversations *repository.ConversationRepo
}

func NewChatHandler(conversations *repository.ConversationRepo) *ChatHandler {
	if conversations == nil {
		panic("nil repository passed to NewChatHandler")
	}
	return &ChatHandler{Conversations: conversations}
}

type messageResp struct {
	ID        uint64    `json:"id"`
	SenderID  *uint64   `json:"sender_id,omitempty"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type postMessageReq struct {
	Body string `json:"body"`
}

// ListMessages returns the thread of the given application, oldest first.
// Only the two conversation parties may read it.
func (h *ChatHandler) ListMessages(c echo.Context) error {
	conv, ok := h.partyConversation(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	msgs, err := h.Conversations.ListMessages(ctx, conv.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResp{ID: m.ID, SenderID: m.SenderID, Kind: m.Kind, Body: m.Body, CreatedAt: m.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// PostMessage appends a user message to the thread.
func (h *ChatHandler) PostMessage(c echo.Context) error {
	conv, ok := h.partyConversation(c)
	if !ok {
		return nil
	}
	uid, _ := currentUser(c)

	var req postMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Conversations.AppendUserMessage(ctx, conv.ID, uid, body); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "send failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "sent"})
}

// partyConversation resolves the application's conversation and verifies
// the caller is one of its two parties, writing the error response on
// failure. A thread that has not been created yet reads as 404; it only
// appears after the first workflow event.
func (h *ChatHandler) partyConversation(c echo.Context) (model.Conversation, bool) {
	uid, ok := currentUser(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return model.Conversation{}, false
	}
	appID, err := paramID(c, "id")
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		return model.Conversation{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	conv, err := h.Conversations.GetByApplication(ctx, appID)
	if err != nil {
		if err == sql.ErrNoRows {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "conversation not found"})
		} else {
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
		}
		return model.Conversation{}, false
	}
	if conv.ChefID != uid && conv.ManagerID != uid {
		_ = c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		return model.Conversation{}, false
	}
	return conv, true
}
