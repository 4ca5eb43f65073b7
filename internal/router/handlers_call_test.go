package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairStrangers(t *testing.T, dial func() *testClient) (*testClient, *testClient) {
	t.Helper()
	alice := dial()
	enterStranger(alice)
	bob := dial()
	enterStranger(bob)

	alice.send("find_stranger", map[string]any{})
	alice.expectEvent("searching_stranger")
	bob.send("find_stranger", map[string]any{})
	alice.expectEvent("stranger_found")
	bob.expectEvent("stranger_found")
	return alice, bob
}

func TestStartVideoCall_NotifiesPartnerAndInitiator(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice, bob := pairStrangers(t, dial)

	alice.send("start_video_call", map[string]any{})

	bobEnv := bob.expectEvent("incoming_video_call")
	aliceEnv := alice.expectEvent("video_call_initiated")

	var bobBody, aliceBody map[string]any
	require.NoError(t, json.Unmarshal(bobEnv.Payload, &bobBody))
	require.NoError(t, json.Unmarshal(aliceEnv.Payload, &aliceBody))
	assert.Equal(t, bobBody["room_id"], aliceBody["room_id"])
}

func TestStartVideoCall_RejectsWithoutPartner(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)

	alice.send("start_video_call", map[string]any{})
	alice.expectEvent("error")
}

func TestAcceptVideoCall_TransitionsCallToActiveForBothSides(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice, bob := pairStrangers(t, dial)

	alice.send("start_video_call", map[string]any{})
	incoming := bob.expectEvent("incoming_video_call")
	alice.expectEvent("video_call_initiated")

	var incomingBody map[string]any
	require.NoError(t, json.Unmarshal(incoming.Payload, &incomingBody))
	roomID := incomingBody["room_id"].(string)

	bob.send("accept_video_call", map[string]any{"room_id": roomID})
	alice.expectEvent("video_call_accepted")
	bob.expectEvent("video_call_accepted")
}

func TestRejectVideoCall_NotifiesOnlyInitiator(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice, bob := pairStrangers(t, dial)

	alice.send("start_video_call", map[string]any{})
	incoming := bob.expectEvent("incoming_video_call")
	alice.expectEvent("video_call_initiated")

	var incomingBody map[string]any
	require.NoError(t, json.Unmarshal(incoming.Payload, &incomingBody))
	roomID := incomingBody["room_id"].(string)

	bob.send("reject_video_call", map[string]any{"room_id": roomID})
	alice.expectEvent("video_call_rejected")
	bob.noMoreMessages()
}

func TestEndVideoCall_TeardownClearsInVideoCallFlagButKeepsPairing(t *testing.T) {
	rt, _, dial := newTestRouter(t)
	alice, bob := pairStrangers(t, dial)

	alice.send("start_video_call", map[string]any{})
	incoming := bob.expectEvent("incoming_video_call")
	alice.expectEvent("video_call_initiated")

	var incomingBody map[string]any
	require.NoError(t, json.Unmarshal(incoming.Payload, &incomingBody))
	roomID := incomingBody["room_id"].(string)

	bob.send("accept_video_call", map[string]any{"room_id": roomID})
	alice.expectEvent("video_call_accepted")
	bob.expectEvent("video_call_accepted")

	alice.send("end_video_call", map[string]any{"room_id": roomID})
	alice.expectEvent("video_call_ended")
	bob.expectEvent("video_call_ended")

	assert.Equal(t, 1, rt.pairs.Count(), "text pairing must survive the call ending")
}

func TestWebRTCOffer_RelaysToPartner(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice, bob := pairStrangers(t, dial)

	alice.send("webrtc_offer", map[string]any{"offer": map[string]any{"sdp": "v=0"}})

	env := bob.expectEvent("webrtc_offer")
	var body map[string]any
	require.NoError(t, json.Unmarshal(env.Payload, &body))
	offer := body["offer"].(map[string]any)
	assert.Equal(t, "v=0", offer["sdp"])
}

func TestWebRTCIceCandidate_SilentlyDroppedWithoutPeer(t *testing.T) {
	_, _, dial := newTestRouter(t)
	alice := dial()
	enterStranger(alice)

	alice.send("webrtc_ice_candidate", map[string]any{"candidate": map[string]any{"x": 1}})
	alice.noMoreMessages()
}

func TestPing_RespondsWithPong(t *testing.T) {
	_, _, dial := newTestRouter(t)
	c := dial()
	c.next() // connection_options

	c.send("ping", map[string]any{})
	c.expectEvent("pong")
}
