package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jikulumessu/api/internal/database"
	"github.com/jikulumessu/api/internal/models"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(db *database.DB) *MessageRepository {
	return &MessageRepository{pool: db.Pool}
}

func scanMessageRow(scanner rowScanner) (*models.Message, error) {
	var m models.Message
	err := scanner.Scan(
		&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, conversationID, senderID, content string) (*models.Message, error) {
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, content, is_read, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
		RETURNING id, conversation_id, sender_id, content, is_read, created_at
	`
	return scanMessageRow(r.pool.QueryRow(ctx, query,
		uuid.New().String(), conversationID, senderID, content, time.Now()))
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM messages WHERE id = $1
	`
	return scanMessageRow(r.pool.QueryRow(ctx, query, id))
}

// ListByConversation returns a conversation's messages in chronological
// ascending order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, sender_id, content, is_read, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*models.Message, 0)

	for rows.Next() {
		m, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating message rows: %w", err)
	}

	return messages, nil
}

// MarkRead flips the read flag on every message in the conversation that the
// reader did not send. The transition is monotonic; rows already read are
// untouched.
func (r *MessageRepository) MarkRead(ctx context.Context, conversationID, readerID string) (int64, error) {
	query := `
		UPDATE messages SET is_read = true
		WHERE conversation_id = $1 AND sender_id <> $2 AND NOT is_read
	`

	result, err := r.pool.Exec(ctx, query, conversationID, readerID)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}

	return result.RowsAffected(), nil
}

func (r *MessageRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UnreadCountForUser counts unread messages addressed to the user across all
// of their conversations.
func (r *MessageRepository) UnreadCountForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.participant1_id = $1 OR c.participant2_id = $1)
		  AND m.sender_id <> $1 AND NOT m.is_read
	`

	var count int64
	err := r.pool.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}

	return count, nil
}
