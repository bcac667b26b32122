package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/jikulumessu/api/internal/models"
	"github.com/jikulumessu/api/internal/repositories"
)

const maxMessageLength = 5000

// ConversationRepository defines the interface for conversation data access
type ConversationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	GetByPair(ctx context.Context, userA, userB string) (*models.Conversation, error)
	Create(ctx context.Context, userA, userB string) (*models.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
	ListForUser(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error)
}

// MessageRepository defines the interface for message data access
type MessageRepository interface {
	Create(ctx context.Context, conversationID, senderID, content string) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) (int64, error)
	Delete(ctx context.Context, id string) error
	UnreadCountForUser(ctx context.Context, userID string) (int64, error)
}

// MessagingService handles conversations and messages between users
type MessagingService struct {
	conversations ConversationRepository
	messages      MessageRepository
	users         UserRepository
	logger        *slog.Logger
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(conversations ConversationRepository, messages MessageRepository, users UserRepository, logger *slog.Logger) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		logger:        logger,
	}
}

// StartConversation returns the conversation between the two users, creating
// it if none exists. The pair is unordered; starting a conversation with
// yourself is rejected. A concurrent create from the other participant is
// absorbed by re-reading after a conflict on the pair index.
func (s *MessagingService) StartConversation(ctx context.Context, userID, otherID string) (*models.Conversation, error) {
	if userID == otherID {
		return nil, models.ErrInvalidParticipants
	}

	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to look up conversation peer", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	conv, err := s.conversations.GetByPair(ctx, userID, otherID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up conversation", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	conv, err = s.conversations.Create(ctx, userID, otherID)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			conv, err = s.conversations.GetByPair(ctx, userID, otherID)
			if err == nil {
				return conv, nil
			}
		}
		s.logger.Error("failed to create conversation", slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	s.logger.Info("conversation created", slog.String("conversation_id", conv.ID))
	return conv, nil
}

// ListConversations returns the user's conversations, most recently active
// first, each with the other participant, the latest message, and the unread
// count.
func (s *MessagingService) ListConversations(ctx context.Context, userID string) ([]*repositories.ConversationSummary, error) {
	summaries, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list conversations", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return summaries, nil
}

// ListMessages returns the conversation's messages oldest first and marks the
// other participant's messages as read. A non-participant gets ErrNotFound so
// the response does not reveal that the conversation exists.
func (s *MessagingService) ListMessages(ctx context.Context, conversationID, userID string) ([]*models.Message, error) {
	conv, err := s.loadParticipantConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.MarkRead(ctx, conv.ID, userID); err != nil {
		s.logger.Warn("failed to mark messages read", slog.String("conversation_id", conv.ID), slog.Any("error", err))
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		s.logger.Error("failed to list messages", slog.String("conversation_id", conv.ID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	return msgs, nil
}

// SendMessage appends a message to the conversation and bumps its activity
// timestamp. Content is trimmed; empty or oversized content is rejected. A
// sender outside the conversation gets the distinct ErrNotParticipant.
func (s *MessagingService) SendMessage(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.ErrEmptyContent
	}
	if len(content) > maxMessageLength {
		return nil, models.ErrBadRequest
	}

	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get conversation", slog.String("conversation_id", conversationID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	if !conv.HasParticipant(senderID) {
		return nil, models.ErrNotParticipant
	}

	msg, err := s.messages.Create(ctx, conv.ID, senderID, content)
	if err != nil {
		s.logger.Error("failed to create message", slog.String("conversation_id", conv.ID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}

	if err := s.conversations.Touch(ctx, conv.ID, msg.CreatedAt); err != nil {
		s.logger.Warn("failed to touch conversation", slog.String("conversation_id", conv.ID), slog.Any("error", err))
	}

	return msg, nil
}

// DeleteMessage removes a message. Only the sender may delete; the other
// participant gets ErrForbidden, an outsider gets ErrNotFound.
func (s *MessagingService) DeleteMessage(ctx context.Context, messageID, userID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get message", slog.String("message_id", messageID), slog.Any("error", err))
		return models.ErrUnavailable
	}

	if msg.SenderID != userID {
		conv, err := s.conversations.GetByID(ctx, msg.ConversationID)
		if err != nil || !conv.HasParticipant(userID) {
			return models.ErrNotFound
		}
		return models.ErrForbidden
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete message", slog.String("message_id", messageID), slog.Any("error", err))
		return models.ErrUnavailable
	}
	return nil
}

// UnreadCount returns the number of unread messages addressed to the user
// across all conversations.
func (s *MessagingService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.messages.UnreadCountForUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to count unread messages", slog.String("user_id", userID), slog.Any("error", err))
		return 0, models.ErrUnavailable
	}
	return count, nil
}

func (s *MessagingService) loadParticipantConversation(ctx context.Context, conversationID, userID string) (*models.Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get conversation", slog.String("conversation_id", conversationID), slog.Any("error", err))
		return nil, models.ErrUnavailable
	}
	if !conv.HasParticipant(userID) {
		return nil, models.ErrNotFound
	}
	return conv, nil
}
