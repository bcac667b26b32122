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

type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(db *database.DB) *ConversationRepository {
	return &ConversationRepository{pool: db.Pool}
}

// ConversationSummary is a conversation enriched for the caller's inbox view.
type ConversationSummary struct {
	Conversation    models.Conversation
	OtherID         string
	OtherFirstName  string
	OtherLastName   string
	OtherAvatarURL  *string
	LastMessage     *string
	LastMessageAt   *time.Time
	UnreadCount     int64
}

func scanConversationRow(scanner rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	err := scanner.Scan(
		&c.ID, &c.Participant1ID, &c.Participant2ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations WHERE id = $1
	`
	return scanConversationRow(r.pool.QueryRow(ctx, query, id))
}

// GetByPair looks up the conversation for an unordered participant pair.
// Both orderings match the same row.
func (r *ConversationRepository) GetByPair(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	query := `
		SELECT id, participant1_id, participant2_id, created_at, updated_at
		FROM conversations
		WHERE (participant1_id = $1 AND participant2_id = $2)
		   OR (participant1_id = $2 AND participant2_id = $1)
	`
	return scanConversationRow(r.pool.QueryRow(ctx, query, userA, userB))
}

// Create inserts a conversation row. The unique index on the unordered pair
// turns a concurrent duplicate into ErrConflict; callers retry the lookup.
func (r *ConversationRepository) Create(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	now := time.Now()
	query := `
		INSERT INTO conversations (id, participant1_id, participant2_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, participant1_id, participant2_id, created_at, updated_at
	`
	return scanConversationRow(r.pool.QueryRow(ctx, query, uuid.New().String(), userA, userB, now))
}

// Touch bumps updated_at after a new message.
func (r *ConversationRepository) Touch(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE conversations SET updated_at = $1 WHERE id = $2`

	result, err := r.pool.Exec(ctx, query, at, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListForUser returns the user's conversations enriched with the other
// participant, the latest message, and the unread count scoped to the user,
// ordered most-recently-updated first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	query := `
		SELECT c.id, c.participant1_id, c.participant2_id, c.created_at, c.updated_at,
		       o.id, o.first_name, o.last_name, o.avatar_url,
		       lm.content, lm.created_at,
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.conversation_id = c.id AND m.sender_id <> $1 AND NOT m.is_read)
		FROM conversations c
		JOIN users o ON o.id = CASE WHEN c.participant1_id = $1 THEN c.participant2_id ELSE c.participant1_id END
		LEFT JOIN LATERAL (
			SELECT content, created_at FROM messages
			WHERE conversation_id = c.id
			ORDER BY created_at DESC LIMIT 1
		) lm ON true
		WHERE c.participant1_id = $1 OR c.participant2_id = $1
		ORDER BY c.updated_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}
	defer rows.Close()

	summaries := make([]*ConversationSummary, 0)

	for rows.Next() {
		var s ConversationSummary
		err := rows.Scan(
			&s.Conversation.ID, &s.Conversation.Participant1ID, &s.Conversation.Participant2ID,
			&s.Conversation.CreatedAt, &s.Conversation.UpdatedAt,
			&s.OtherID, &s.OtherFirstName, &s.OtherLastName, &s.OtherAvatarURL,
			&s.LastMessage, &s.LastMessageAt,
			&s.UnreadCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating conversation rows: %w", err)
	}

	return summaries, nil
}
