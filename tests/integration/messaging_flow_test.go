package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationBody struct {
	ID             string `json:"id"`
	Participant1ID string `json:"participant1_id"`
	Participant2ID string `json:"participant2_id"`
}

type messageBody struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`
}

func startConversation(t *testing.T, c *Client, peerID string) conversationBody {
	t.Helper()

	resp, err := c.Do(http.MethodPost, "/messages/conversations", map[string]string{
		"participant_id": peerID,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var conv conversationBody
	require.NoError(t, ParseJSONResponse(resp, &conv))
	return conv
}

func sendMessage(t *testing.T, c *Client, conversationID, content string) messageBody {
	t.Helper()

	resp, err := c.Do(http.MethodPost, "/messages/conversations/"+conversationID+"/messages", map[string]string{
		"content": content,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var msg messageBody
	require.NoError(t, ParseJSONResponse(resp, &msg))
	return msg
}

func TestConversationPairIsUnique(t *testing.T) {
	resetState(t)

	alice, aliceID, _, _ := registerUser(t, "alice")
	bruno, brunoID, _, _ := registerUser(t, "bruno")

	first := startConversation(t, alice, brunoID)
	second := startConversation(t, bruno, aliceID)

	// Opening from either side lands on the same conversation.
	assert.Equal(t, first.ID, second.ID)
}

func TestConversationWithSelfIsRejected(t *testing.T) {
	resetState(t)

	alice, aliceID, _, _ := registerUser(t, "self")

	resp, err := alice.Do(http.MethodPost, "/messages/conversations", map[string]string{
		"participant_id": aliceID,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUnreadCountAndMarkRead(t *testing.T) {
	resetState(t)

	alice, _, _, _ := registerUser(t, "writer")
	bruno, brunoID, _, _ := registerUser(t, "reader")

	conv := startConversation(t, alice, brunoID)
	sendMessage(t, alice, conv.ID, "Bom dia")
	sendMessage(t, alice, conv.ID, "Ainda disponível?")

	resp, err := bruno.Do(http.MethodGet, "/messages/unread-count", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	require.NoError(t, ParseJSONResponse(resp, &count))
	assert.Equal(t, int64(2), count.UnreadCount)

	// The inbox carries the per-conversation count.
	resp, err = bruno.Do(http.MethodGet, "/messages/conversations", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var inbox struct {
		Conversations []struct {
			ID          string `json:"id"`
			UnreadCount int64  `json:"unread_count"`
			LastMessage *string `json:"last_message"`
		} `json:"conversations"`
	}
	require.NoError(t, ParseJSONResponse(resp, &inbox))
	require.Len(t, inbox.Conversations, 1)
	assert.Equal(t, conv.ID, inbox.Conversations[0].ID)
	assert.Equal(t, int64(2), inbox.Conversations[0].UnreadCount)
	require.NotNil(t, inbox.Conversations[0].LastMessage)
	assert.Equal(t, "Ainda disponível?", *inbox.Conversations[0].LastMessage)

	// Reading the thread clears the counter.
	resp, err = bruno.Do(http.MethodGet, "/messages/conversations/"+conv.ID+"/messages", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = bruno.Do(http.MethodGet, "/messages/unread-count", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, ParseJSONResponse(resp, &count))
	assert.Equal(t, int64(0), count.UnreadCount)

	// The sender's own messages never count as unread for them.
	resp, err = alice.Do(http.MethodGet, "/messages/unread-count", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, ParseJSONResponse(resp, &count))
	assert.Equal(t, int64(0), count.UnreadCount)
}

func TestOutsiderCannotReadConversation(t *testing.T) {
	resetState(t)

	alice, _, _, _ := registerUser(t, "party1")
	_, brunoID, _, _ := registerUser(t, "party2")
	eve, _, _, _ := registerUser(t, "outsider")

	conv := startConversation(t, alice, brunoID)
	sendMessage(t, alice, conv.ID, "Só para nós")

	resp, err := eve.Do(http.MethodGet, "/messages/conversations/"+conv.ID+"/messages", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = eve.Do(http.MethodPost, "/messages/conversations/"+conv.ID+"/messages", map[string]string{
		"content": "Intrometida",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestOnlySenderCanDeleteMessage(t *testing.T) {
	resetState(t)

	alice, _, _, _ := registerUser(t, "sender")
	bruno, brunoID, _, _ := registerUser(t, "recipient")

	conv := startConversation(t, alice, brunoID)
	msg := sendMessage(t, alice, conv.ID, "Apaga isto depois")

	resp, err := bruno.Do(http.MethodDelete, "/messages/"+msg.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp, err = alice.Do(http.MethodDelete, "/messages/"+msg.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Gone for both sides.
	resp, err = bruno.Do(http.MethodGet, "/messages/conversations/"+conv.ID+"/messages", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var thread struct {
		Messages []messageBody `json:"messages"`
	}
	require.NoError(t, ParseJSONResponse(resp, &thread))
	assert.Empty(t, thread.Messages)
}
