package router

import (
	"encoding/json"

	"github.com/mistcall/strangerchat/internal/chatstore"
	"github.com/mistcall/strangerchat/internal/types"
)

// handleEnterStrangerMode creates an anonymous profile and flips the
// session into stranger mode (spec §4.5).
func (r *Router) handleEnterStrangerMode(conn types.ConnID, _ json.RawMessage) {
	if !r.sessions.Exists(conn) {
		r.emitError(conn, "unknown session")
		return
	}

	username := types.Username(generateUsername())
	if !r.sessions.EnterStrangerMode(conn, username) {
		return
	}

	r.emitDirect(conn, types.EventStrangerModeEntered, map[string]any{
		"username": username,
		"user_id":  conn,
		"message":  "you are now browsing anonymously",
	})
}

// handleFindStranger runs the matching algorithm of spec §4.4.
func (r *Router) handleFindStranger(conn types.ConnID, payload json.RawMessage) {
	profile, ok := r.sessions.StrangerProfile(conn)
	if !ok {
		r.emitError(conn, "you must enter stranger mode first")
		return
	}

	if profile.HasPartner {
		r.unpair(conn, profile.Partner)
	}

	f := parseFields(payload)
	interests := f.strSlice("interests")

	r.sessions.SetSearching(conn, interests)

	isLive := func(id types.ConnID) bool {
		_, ok := r.sessions.StrangerProfile(id)
		return ok
	}

	candidate, found := r.matcher.PopCandidate(interests, isLive)
	if !found {
		r.matcher.Enqueue(conn, interests)
		r.emitDirect(conn, types.EventSearchingStranger, map[string]any{"interests": interests})
		return
	}

	r.createPair(conn, candidate)
}

// handleSkipStranger unpairs (if paired) then re-runs find_stranger with
// the same payload (spec §4.4).
func (r *Router) handleSkipStranger(conn types.ConnID, payload json.RawMessage) {
	if profile, ok := r.sessions.StrangerProfile(conn); ok && profile.HasPartner {
		r.unpair(conn, profile.Partner)
	}
	r.matcher.Remove(conn)
	r.handleFindStranger(conn, payload)
}

// createPair implements create_pair (spec §4.6): atomically pairs a and b,
// joins both to the derived stranger room, and notifies each side with its
// own partner_id.
func (r *Router) createPair(a, b types.ConnID) {
	r.pairs.Pair(a, b)
	r.sessions.SetChatting(a, b)
	r.sessions.SetChatting(b, a)

	room := types.DerivedStrangerRoom(a, b)
	r.rooms.Add(room, a)
	r.rooms.Add(room, b)
	r.hub.Join(a, room)
	r.hub.Join(b, room)
	r.subscribeRoom(room)
	r.trackRoomMember(room, a)
	r.trackRoomMember(room, b)

	r.emitDirect(a, types.EventStrangerFound, map[string]any{
		"message":        "you are now chatting with a stranger",
		"room_id":        room,
		"partner_id":     b,
		"can_video_chat": true,
	})
	r.emitDirect(b, types.EventStrangerFound, map[string]any{
		"message":        "you are now chatting with a stranger",
		"room_id":        room,
		"partner_id":     a,
		"can_video_chat": true,
	})
}

// handleSendStrangerMessage requires the source to be currently paired;
// the message is broadcast to the derived room, echoed to the sender
// (spec §4.6).
func (r *Router) handleSendStrangerMessage(conn types.ConnID, payload json.RawMessage) {
	profile, ok := r.sessions.StrangerProfile(conn)
	if !ok || !profile.HasPartner {
		r.emitError(conn, "no stranger connected")
		return
	}

	f := parseFields(payload)
	content, _ := f.str("message", "content", "text")

	room := types.DerivedStrangerRoom(conn, profile.Partner)
	msg := &messageRecord{
		ID:       chatstore.NewStrangerMessageID(conn),
		Type:     types.MessageTypeStranger,
		Content:  content,
		Username: profile.Username,
		Room:     room,
		UserID:   conn,
	}
	r.messages.Add(msg.store())
	r.broadcastRoom(room, types.EventStrangerMessage, msg.toPayload(), "")
}
