package router

import (
	"encoding/json"

	"github.com/mistcall/strangerchat/internal/callsignal"
	"github.com/mistcall/strangerchat/internal/types"
)

// handleStartVideoCall starts a stranger-kind call: source must be in
// stranger mode and currently paired (spec §4.7).
func (r *Router) handleStartVideoCall(conn types.ConnID, _ json.RawMessage) {
	profile, ok := r.sessions.StrangerProfile(conn)
	if !ok {
		r.emitError(conn, "not in stranger mode")
		return
	}
	if !profile.HasPartner {
		if profile.Status == types.StatusSearching {
			r.emitError(conn, "still searching")
		} else {
			r.emitError(conn, "no stranger connected")
		}
		return
	}

	partner := profile.Partner
	room := types.DerivedStrangerRoom(conn, partner)

	if _, err := r.calls.Start(room, conn, partner, types.CallKindStranger); err != nil {
		r.emitError(conn, "a call is already in progress")
		return
	}

	r.sessions.SetInVideoCall(conn, true)
	r.sessions.SetInVideoCall(partner, true)

	r.emitDirect(partner, types.EventIncomingVideoCall, map[string]any{
		"caller_id": conn,
		"room_id":   room,
	})
	r.emitDirect(conn, types.EventVideoCallInitiated, map[string]any{
		"room_id":    room,
		"partner_id": partner,
		"initiator":  conn,
	})
}

// handleStartPrivateVideoCall starts a private-kind call between two
// active regular-mode sessions (spec §4.7).
func (r *Router) handleStartPrivateVideoCall(conn types.ConnID, payload json.RawMessage) {
	source, ok := r.sessions.Get(conn)
	if !ok || source.Mode != types.ModeRegular {
		r.emitError(conn, "unknown session")
		return
	}

	f := parseFields(payload)
	targetID, _ := f.str("target_user_id", "targetUserId")
	if targetID == "" {
		r.emitError(conn, "target_user_id is required")
		return
	}

	target := types.ConnID(targetID)
	targetSess, ok := r.sessions.Get(target)
	if !ok || targetSess.Mode != types.ModeRegular {
		r.emitError(conn, "recipient offline")
		return
	}

	room := types.DerivedCallRoom(conn, target)
	if _, err := r.calls.Start(room, conn, target, types.CallKindPrivate); err != nil {
		r.emitError(conn, "a call is already in progress")
		return
	}

	r.emitDirect(target, types.EventIncomingPrivateVideoCall, map[string]any{
		"caller_id":       conn,
		"caller_username": source.Username,
		"room_id":         room,
	})
	r.emitDirect(conn, types.EventPrivateVideoCallInitiated, map[string]any{
		"room_id":          room,
		"partner_id":       target,
		"partner_username": targetSess.Username,
		"initiator":        conn,
	})
}

// callRoomFromPayload resolves the required room_id field, emitting an
// error and returning ok=false if it's missing.
func (r *Router) callRoomFromPayload(conn types.ConnID, payload json.RawMessage) (types.RoomName, bool) {
	f := parseFields(payload)
	roomID, ok := f.str("room_id", "roomId")
	if !ok {
		r.emitError(conn, "room_id is required")
		return "", false
	}
	return types.RoomName(roomID), true
}

// handleAcceptVideoCall / handleAcceptPrivateVideoCall transition a call
// to active and notify both parties (spec §4.7).
func (r *Router) handleAcceptVideoCall(conn types.ConnID, payload json.RawMessage) {
	r.acceptCall(conn, payload, types.EventVideoCallAccepted)
}

func (r *Router) handleAcceptPrivateVideoCall(conn types.ConnID, payload json.RawMessage) {
	r.acceptCall(conn, payload, types.EventPrivateVideoCallAccepted)
}

func (r *Router) acceptCall(conn types.ConnID, payload json.RawMessage, event types.Event) {
	room, ok := r.callRoomFromPayload(conn, payload)
	if !ok {
		return
	}

	call, err := r.calls.Accept(room)
	if err != nil {
		r.emitError(conn, "call not found")
		return
	}

	if call.Kind == types.CallKindStranger {
		r.sessions.SetInVideoCall(call.Initiator, true)
		r.sessions.SetInVideoCall(call.Partner, true)
	}

	body := map[string]any{
		"room_id":   call.RoomID,
		"initiator": call.Initiator,
		"partner":   call.Partner,
	}
	r.emitDirect(call.Initiator, event, body)
	r.emitDirect(call.Partner, event, body)
}

// handleRejectVideoCall / handleRejectPrivateVideoCall delete the call
// record and notify only the initiator (spec §4.7).
func (r *Router) handleRejectVideoCall(conn types.ConnID, payload json.RawMessage) {
	r.rejectCall(conn, payload, types.EventVideoCallRejected)
}

func (r *Router) handleRejectPrivateVideoCall(conn types.ConnID, payload json.RawMessage) {
	r.rejectCall(conn, payload, types.EventPrivateVideoCallRejected)
}

func (r *Router) rejectCall(conn types.ConnID, payload json.RawMessage, event types.Event) {
	room, ok := r.callRoomFromPayload(conn, payload)
	if !ok {
		return
	}

	call, err := r.calls.End(room)
	if err != nil {
		return
	}
	if call.Kind == types.CallKindStranger {
		r.sessions.SetInVideoCall(call.Initiator, false)
		r.sessions.SetInVideoCall(call.Partner, false)
	}

	r.emitDirect(call.Initiator, event, map[string]any{"message": "call was rejected"})
}

// handleEndVideoCall / handleEndPrivateVideoCall end a call via the shared
// teardownCall helper (spec §4.7: stranger pairing survives the call
// ending).
func (r *Router) handleEndVideoCall(conn types.ConnID, payload json.RawMessage) {
	room, ok := r.callRoomFromPayload(conn, payload)
	if !ok {
		return
	}
	if call, ok := r.calls.Get(room); ok {
		r.teardownCall(call)
	}
}

func (r *Router) handleEndPrivateVideoCall(conn types.ConnID, payload json.RawMessage) {
	r.handleEndVideoCall(conn, payload)
}

// handleWebRTCSignal returns a handler that relays an opaque signaling
// payload to the resolved partner (spec §4.7): offers/answers error out
// with no resolvable partner, ICE candidates are silently dropped.
func (r *Router) handleWebRTCSignal(event types.Event, silentDrop bool) func(types.ConnID, json.RawMessage) {
	return func(conn types.ConnID, payload json.RawMessage) {
		partner, ok := callsignal.ResolvePartner(conn, r.pairs, r.calls)
		if !ok {
			if !silentDrop {
				r.emitError(conn, "no peer to signal")
			}
			return
		}

		f := parseFields(payload)
		body := map[string]any{"from": conn}
		for _, key := range []string{"offer", "answer", "candidate"} {
			if raw, ok := f.raw(key); ok {
				var v any
				json.Unmarshal(raw, &v)
				body[key] = v
			}
		}

		r.emitDirect(partner, event, body)
	}
}

// handlePing answers the application-level heartbeat (spec §6.2/§6.3),
// distinct from the Transport Adapter's own WebSocket ping/pong frames.
func (r *Router) handlePing(conn types.ConnID, _ json.RawMessage) {
	r.emitDirect(conn, types.EventPong, map[string]any{})
}
