package router

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinLobby(c *testClient, username string) {
	c.next() // connection_options
	c.send("join_room", map[string]any{"room": "lobby", "username": username})
	c.expectEvent("join_success")
	c.expectEvent("message")
	c.expectEvent("room_users")
}

func TestSendMessage_BroadcastsToRoomIncludingSelf(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	bob := dial()
	joinLobby(bob, "bob")
	alice.expectEvent("message")    // bob join system message
	alice.expectEvent("room_users")

	alice.send("send_message", map[string]any{"message": "hello there"})

	env := alice.expectEvent("message")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	assert.Equal(t, "hello there", body["content"])

	bob.expectEvent("message")
}

func TestSendMessage_RejectsWhenNotJoined(t *testing.T) {
	_, _, dial := newTestRouter(t)
	c := dial()
	c.next() // connection_options

	c.send("send_message", map[string]any{"message": "hi"})
	c.expectEvent("error")
}

func TestEditMessage_OnlyAuthorCanEdit(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	alice.send("send_message", map[string]any{"message": "original"})
	env := alice.expectEvent("message")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	msgID := body["id"].(string)

	bob := dial()
	joinLobby(bob, "bob")
	alice.expectEvent("message")
	alice.expectEvent("room_users")

	// bob (not the author) tries to edit: rejected with an error to bob
	// only, no broadcast.
	bob.send("edit_message", map[string]any{"message_id": msgID, "new_content": "hacked"})
	bob.expectEvent("error")

	// alice, the author, edits successfully.
	alice.send("edit_message", map[string]any{"message_id": msgID, "new_content": "edited"})
	editEnv := alice.expectEvent("message_edited")
	var editBody map[string]any
	require.NoError(t, json.Unmarshal(editEnv.Payload, &editBody))
	assert.Equal(t, "edited", editBody["new_content"])
}

func TestDeleteMessage_OnlyAuthorCanDelete(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	alice.send("send_message", map[string]any{"message": "to be deleted"})
	env := alice.expectEvent("message")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	msgID := body["id"].(string)

	alice.send("delete_message", map[string]any{"message_id": msgID})
	delEnv := alice.expectEvent("message_deleted")
	var delBody map[string]any
	require.NoError(t, json.Unmarshal(delEnv.Payload, &delBody))
	assert.Equal(t, msgID, delBody["message_id"])
}

func TestSendReply_TruncatesLongPreview(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	long := strings.Repeat("x", 80)
	alice.send("send_reply", map[string]any{
		"message":          "a reply",
		"replyToId":        "m1",
		"replyToUsername":  "bob",
		"replyToContent":   long,
	})

	env := alice.expectEvent("message")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	replyTo := body["replyTo"].(map[string]any)
	preview := replyTo["content"].(string)
	assert.True(t, strings.HasSuffix(preview, "…"))
	assert.Less(t, len([]rune(preview)), len(long))
}

func TestPrivateMessage_EchoesToSenderWithFromSelf(t *testing.T) {
	rt, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	bob := dial()
	joinLobby(bob, "bob")
	alice.expectEvent("message")
	alice.expectEvent("room_users")

	var bobID string
	for _, s := range rt.sessions.All() {
		if s.Username == "bob" {
			bobID = string(s.ID)
		}
	}
	require.NotEmpty(t, bobID)

	alice.send("private_message", map[string]any{"to": bobID, "message": "psst"})

	bobEnv := bob.expectEvent("message")
	var bobBody map[string]any
	require.NoError(t, json.Unmarshal(bobEnv.Payload, &bobBody))
	assert.Equal(t, "psst", bobBody["message"])

	selfEnv := alice.expectEvent("message")
	var selfBody map[string]any
	require.NoError(t, json.Unmarshal(selfEnv.Payload, &selfBody))
	assert.Equal(t, true, selfBody["fromSelf"])
}

func TestPrivateMessage_RejectsUnknownRecipient(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	alice.send("private_message", map[string]any{"to": "ghost", "message": "hi"})
	alice.expectEvent("error")
}

func TestAddReaction_OneReactionPerUserPerMessage(t *testing.T) {
	rt, _, dial := newTestRouter(t)
	alice := dial()
	joinLobby(alice, "alice")

	alice.send("send_message", map[string]any{"message": "react to me"})
	env := alice.expectEvent("message")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	msgID := body["id"].(string)

	alice.send("add_reaction", map[string]any{"messageId": msgID, "emoji": "👍", "room": "lobby"})
	alice.expectEvent("reaction_updated")

	alice.send("add_reaction", map[string]any{"messageId": msgID, "emoji": "🎉", "room": "lobby"})
	reactEnv := alice.expectEvent("reaction_updated")
	var reactBody map[string]any
	require.NoError(t, json.Unmarshal(reactEnv.Payload, &reactBody))

	summaries := rt.reactions.Summaries(msgID)
	total := 0
	for _, s := range summaries {
		total += s.Count
	}
	assert.Equal(t, 1, total, "a user's second reaction must replace, not add to, the first")
}
