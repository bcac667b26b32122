package models

import "time"

// Conversation is a two-party message thread, uniquely keyed by the unordered
// participant pair. UpdatedAt is bumped on every new message.
type Conversation struct {
	ID             string
	Participant1ID string
	Participant2ID string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participant1ID == userID || c.Participant2ID == userID
}

// OtherParticipant returns the participant that is not userID. The caller
// must have checked HasParticipant first.
func (c *Conversation) OtherParticipant(userID string) string {
	if c.Participant1ID == userID {
		return c.Participant2ID
	}
	return c.Participant1ID
}

// Message is a single unit of communication inside a conversation.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}
