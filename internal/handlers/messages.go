package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jikulumessu/api/internal/auth"
	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
	pkghttp "github.com/jikulumessu/api/pkg/http"
)

// MessagingServiceInterface defines the interface for messaging business logic
type MessagingServiceInterface interface {
	StartConversation(ctx context.Context, userID, otherID string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error)
	ListMessages(ctx context.Context, conversationID, userID string) ([]*models.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, messageID, userID string) error
	UnreadCount(ctx context.Context, userID string) (int64, error)
}

// MessageHandler handles conversation and message HTTP requests
type MessageHandler struct {
	service MessagingServiceInterface
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service MessagingServiceInterface) *MessageHandler {
	return &MessageHandler{service: service}
}

// StartConversationRequest opens (or returns) a conversation with a user.
type StartConversationRequest struct {
	ParticipantID string `json:"participant_id" validate:"required,uuid"`
}

// SendMessageRequest appends a message to a conversation.
type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

// ConversationResponse is the wire form of a conversation.
type ConversationResponse struct {
	ID             string    `json:"id"`
	Participant1ID string    `json:"participant1_id"`
	Participant2ID string    `json:"participant2_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConversationSummaryResponse is one row of the inbox listing.
type ConversationSummaryResponse struct {
	ID             string     `json:"id"`
	OtherID        string     `json:"other_id"`
	OtherName      string     `json:"other_name"`
	OtherAvatarURL *string    `json:"other_avatar_url,omitempty"`
	LastMessage    *string    `json:"last_message,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
	UnreadCount    int64      `json:"unread_count"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// StartConversation opens a conversation with another user, or returns the
// existing one for the pair.
func (h *MessageHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	var req StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	conv, err := h.service.StartConversation(r.Context(), user.ID, req.ParticipantID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidParticipants):
			pkghttp.WriteBadRequest(w, "Cannot start a conversation with yourself")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrUnavailable):
			pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, toConversationResponse(conv))
}

// ListConversations returns the caller's inbox, most recently active first.
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	summaries, err := h.service.ListConversations(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	out := make([]*ConversationSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toConversationSummaryResponse(s))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"conversations": out})
}

// ListMessages returns a conversation's messages oldest first. Reading the
// thread marks the other side's messages as read.
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	conversationID := chi.URLParam(r, "id")
	msgs, err := h.service.ListMessages(r.Context(), conversationID, user.ID)
	if err != nil {
		writeMessagingError(w, err)
		return
	}

	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"messages": out})
}

// SendMessage appends a message to a conversation the caller participates in.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	conversationID := chi.URLParam(r, "id")
	msg, err := h.service.SendMessage(r.Context(), conversationID, user.ID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyContent):
			pkghttp.WriteBadRequest(w, "Message content cannot be empty")
		case errors.Is(err, models.ErrNotParticipant):
			pkghttp.WriteForbidden(w, "Not a participant in this conversation")
		default:
			writeMessagingError(w, err)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, toMessageResponse(msg))
}

// DeleteMessage removes one of the caller's own messages.
func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	messageID := chi.URLParam(r, "id")
	if err := h.service.DeleteMessage(r.Context(), messageID, user.ID); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			pkghttp.WriteForbidden(w, "Only the sender can delete a message")
			return
		}
		writeMessagingError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UnreadCount returns the caller's total unread messages.
func (h *MessageHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication failed")
		return
	}

	count, err := h.service.UnreadCount(r.Context(), user.ID)
	if err != nil {
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]int64{"unread_count": count})
}

func writeMessagingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, "Invalid request")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Conversation not found")
	case errors.Is(err, models.ErrUnavailable):
		pkghttp.WriteUnavailable(w, "Service temporarily unavailable")
	default:
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

func toConversationResponse(c *models.Conversation) *ConversationResponse {
	return &ConversationResponse{
		ID:             c.ID,
		Participant1ID: c.Participant1ID,
		Participant2ID: c.Participant2ID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toConversationSummaryResponse(s *repositories.ConversationSummary) *ConversationSummaryResponse {
	name := s.OtherFirstName + " " + s.OtherLastName
	return &ConversationSummaryResponse{
		ID:             s.Conversation.ID,
		OtherID:        s.OtherID,
		OtherName:      name,
		OtherAvatarURL: s.OtherAvatarURL,
		LastMessage:    s.LastMessage,
		LastMessageAt:  s.LastMessageAt,
		UnreadCount:    s.UnreadCount,
		UpdatedAt:      s.Conversation.UpdatedAt,
	}
}
