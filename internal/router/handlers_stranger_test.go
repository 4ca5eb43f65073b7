package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enterStranger(c *testClient) {
	c.next() // connection_options
	c.send("enter_stranger_mode", map[string]any{})
	c.expectEvent("stranger_mode_entered")
}

func TestFindStranger_PairsTwoWaitingSessions(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)
	bob := dial()
	enterStranger(bob)

	alice.send("find_stranger", map[string]any{})
	alice.expectEvent("searching_stranger")

	bob.send("find_stranger", map[string]any{})

	aliceEnv := alice.expectEvent("stranger_found")
	bobEnv := bob.expectEvent("stranger_found")

	var aliceBody, bobBody map[string]any
	require.NoError(t, json.Unmarshal(aliceEnv.Payload, &aliceBody))
	require.NoError(t, json.Unmarshal(bobEnv.Payload, &bobBody))
	assert.Equal(t, aliceBody["room_id"], bobBody["room_id"])
	assert.NotEqual(t, aliceBody["partner_id"], bobBody["partner_id"])
}

func TestSendStrangerMessage_RequiresActivePartner(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)

	alice.send("send_stranger_message", map[string]any{"message": "hi"})
	alice.expectEvent("error")
}

func TestSendStrangerMessage_BroadcastsToBothSides(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)
	bob := dial()
	enterStranger(bob)

	alice.send("find_stranger", map[string]any{})
	alice.expectEvent("searching_stranger")
	bob.send("find_stranger", map[string]any{})
	alice.expectEvent("stranger_found")
	bob.expectEvent("stranger_found")

	alice.send("send_stranger_message", map[string]any{"message": "yo"})
	aliceEnv := alice.expectEvent("stranger_message")
	bobEnv := bob.expectEvent("stranger_message")

	var aliceBody, bobBody map[string]any
	require.NoError(t, json.Unmarshal(aliceEnv.Payload, &aliceBody))
	require.NoError(t, json.Unmarshal(bobEnv.Payload, &bobBody))
	assert.Equal(t, "yo", aliceBody["content"])
	assert.Equal(t, "yo", bobBody["content"])
}

func TestSkipStranger_UnpairsAndReentersQueue(t *testing.T) {
	rt, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)
	bob := dial()
	enterStranger(bob)

	alice.send("find_stranger", map[string]any{})
	alice.expectEvent("searching_stranger")
	bob.send("find_stranger", map[string]any{})
	alice.expectEvent("stranger_found")
	bob.expectEvent("stranger_found")

	alice.send("skip_stranger", map[string]any{})

	// bob is notified the partner disconnected.
	bob.expectEvent("stranger_disconnected")
	// alice, having no other candidate, goes back to searching.
	alice.expectEvent("searching_stranger")

	assert.Equal(t, 0, rt.pairs.Count())
}

func TestSkipStranger_FindsNextCandidateImmediately(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)
	bob := dial()
	enterStranger(bob)
	carol := dial()
	enterStranger(carol)

	alice.send("find_stranger", map[string]any{})
	alice.expectEvent("searching_stranger")
	bob.send("find_stranger", map[string]any{})
	alice.expectEvent("stranger_found")
	bob.expectEvent("stranger_found")

	carol.send("find_stranger", map[string]any{})
	carol.expectEvent("searching_stranger")

	alice.send("skip_stranger", map[string]any{})
	bob.expectEvent("stranger_disconnected")

	// alice should now be immediately paired with carol, who was waiting.
	aliceEnv := alice.expectEvent("stranger_found")
	carolEnv := carol.expectEvent("stranger_found")
	var aliceBody, carolBody map[string]any
	require.NoError(t, json.Unmarshal(aliceEnv.Payload, &aliceBody))
	require.NoError(t, json.Unmarshal(carolEnv.Payload, &carolBody))
	assert.Equal(t, aliceBody["room_id"], carolBody["room_id"])
}
