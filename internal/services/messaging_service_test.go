package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jikulumessu/api/internal/models"
)

func testConversation(id, a, b string) *models.Conversation {
	now := time.Now()
	return &models.Conversation{
		ID:             id,
		Participant1ID: a,
		Participant2ID: b,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func newMessagingService(convs ConversationRepository, msgs MessageRepository, users UserRepository) *MessagingService {
	return NewMessagingService(convs, msgs, users, testLogger())
}

func TestMessagingService_StartConversation_SelfPairRejected(t *testing.T) {
	svc := newMessagingService(&MockConversationRepository{}, &MockMessageRepository{}, &MockUserRepository{})

	_, err := svc.StartConversation(context.Background(), "user1", "user1")

	assert.ErrorIs(t, err, models.ErrInvalidParticipants)
}

func TestMessagingService_StartConversation_PeerMissing(t *testing.T) {
	svc := newMessagingService(&MockConversationRepository{}, &MockMessageRepository{}, &MockUserRepository{})

	_, err := svc.StartConversation(context.Background(), "user1", "ghost")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMessagingService_StartConversation_ReturnsExisting(t *testing.T) {
	existing := testConversation("conv1", "user1", "user2")
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser(id, "", "Test", "User"), nil
		},
	}
	created := false
	convs := &MockConversationRepository{
		GetByPairFunc: func(ctx context.Context, a, b string) (*models.Conversation, error) {
			return existing, nil
		},
		CreateFunc: func(ctx context.Context, a, b string) (*models.Conversation, error) {
			created = true
			return nil, models.ErrInternalServer
		},
	}
	svc := newMessagingService(convs, &MockMessageRepository{}, users)

	// The pair is unordered; either orientation finds the same thread.
	conv, err := svc.StartConversation(context.Background(), "user2", "user1")

	assert.NoError(t, err)
	assert.Equal(t, "conv1", conv.ID)
	assert.False(t, created)
}

func TestMessagingService_StartConversation_CreateRaceAbsorbed(t *testing.T) {
	winner := testConversation("conv1", "user1", "user2")
	users := &MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			return NewTestUser(id, "", "Test", "User"), nil
		},
	}
	lookups := 0
	convs := &MockConversationRepository{
		GetByPairFunc: func(ctx context.Context, a, b string) (*models.Conversation, error) {
			lookups++
			if lookups == 1 {
				return nil, models.ErrNotFound
			}
			return winner, nil
		},
		CreateFunc: func(ctx context.Context, a, b string) (*models.Conversation, error) {
			// The other participant won the unique-index race.
			return nil, models.ErrConflict
		},
	}
	svc := newMessagingService(convs, &MockMessageRepository{}, users)

	conv, err := svc.StartConversation(context.Background(), "user1", "user2")

	assert.NoError(t, err)
	assert.Equal(t, "conv1", conv.ID)
	assert.Equal(t, 2, lookups)
}

func TestMessagingService_ListMessages_MarksRead(t *testing.T) {
	conv := testConversation("conv1", "user1", "user2")
	convs := &MockConversationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Conversation, error) {
			return conv, nil
		},
	}
	var markedConv, markedReader string
	msgs := &MockMessageRepository{
		MarkReadFunc: func(ctx context.Context, conversationID, readerID string) (int64, error) {
			markedConv, markedReader = conversationID, readerID
			return 2, nil
		},
		ListByConversationFunc: func(ctx context.Context, conversationID string) ([]*models.Message, error) {
			return []*models.Message{
				{ID: "m1", ConversationID: conversationID, SenderID: "user2", Content: "olá", IsRead: true},
			}, nil
		},
	}
	svc := newMessagingService(convs, msgs, &MockUserRepository{})

	out, err := svc.ListMessages(context.Background(), "conv1", "user1")

	assert.NoError(t, err)
	assert.Len(t, out, 1)
	assert.Equal(t, "conv1", markedConv)
	assert.Equal(t, "user1", markedReader)
}

func TestMessagingService_ListMessages_NonParticipantGetsNotFound(t *testing.T) {
	conv := testConversation("conv1", "user1", "user2")
	convs := &MockConversationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Conversation, error) {
			return conv, nil
		},
	}
	svc := newMessagingService(convs, &MockMessageRepository{}, &MockUserRepository{})

	_, err := svc.ListMessages(context.Background(), "conv1", "outsider")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMessagingService_SendMessage_TrimsAndTouches(t *testing.T) {
	conv := testConversation("conv1", "user1", "user2")
	touched := false
	convs := &MockConversationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Conversation, error) {
			return conv, nil
		},
		TouchFunc: func(ctx context.Context, id string, at time.Time) error {
			touched = true
			return nil
		},
	}
	msgs := &MockMessageRepository{
		CreateFunc: func(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
			return &models.Message{
				ID:             "m1",
				ConversationID: conversationID,
				SenderID:       senderID,
				Content:        content,
				CreatedAt:      time.Now(),
			}, nil
		},
	}
	svc := newMessagingService(convs, msgs, &MockUserRepository{})

	msg, err := svc.SendMessage(context.Background(), "conv1", "user1", "  olá  ")

	assert.NoError(t, err)
	assert.Equal(t, "olá", msg.Content)
	assert.False(t, msg.IsRead)
	assert.True(t, touched)
}

func TestMessagingService_SendMessage_EmptyAfterTrim(t *testing.T) {
	svc := newMessagingService(&MockConversationRepository{}, &MockMessageRepository{}, &MockUserRepository{})

	_, err := svc.SendMessage(context.Background(), "conv1", "user1", "   \n\t ")

	assert.ErrorIs(t, err, models.ErrEmptyContent)
}

func TestMessagingService_SendMessage_OutsiderGetsNotParticipant(t *testing.T) {
	conv := testConversation("conv1", "user1", "user2")
	convs := &MockConversationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Conversation, error) {
			return conv, nil
		},
	}
	svc := newMessagingService(convs, &MockMessageRepository{}, &MockUserRepository{})

	_, err := svc.SendMessage(context.Background(), "conv1", "outsider", "olá")

	assert.ErrorIs(t, err, models.ErrNotParticipant)
}

func TestMessagingService_DeleteMessage_SenderOnly(t *testing.T) {
	msg := &models.Message{ID: "m1", ConversationID: "conv1", SenderID: "user1", Content: "olá"}
	conv := testConversation("conv1", "user1", "user2")

	msgs := &MockMessageRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Message, error) {
			return msg, nil
		},
	}
	convs := &MockConversationRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Conversation, error) {
			return conv, nil
		},
	}
	svc := newMessagingService(convs, msgs, &MockUserRepository{})

	// The other participant can see the message but cannot delete it.
	err := svc.DeleteMessage(context.Background(), "m1", "user2")
	assert.ErrorIs(t, err, models.ErrForbidden)

	// An outsider cannot learn the message exists.
	err = svc.DeleteMessage(context.Background(), "m1", "outsider")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The sender can.
	err = svc.DeleteMessage(context.Background(), "m1", "user1")
	assert.NoError(t, err)
}

func TestMessagingService_UnreadCount(t *testing.T) {
	msgs := &MockMessageRepository{
		UnreadCountForUserFunc: func(ctx context.Context, userID string) (int64, error) {
			return 7, nil
		},
	}
	svc := newMessagingService(&MockConversationRepository{}, msgs, &MockUserRepository{})

	count, err := svc.UnreadCount(context.Background(), "user1")

	assert.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
