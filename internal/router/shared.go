package router

import (
	"github.com/mistcall/strangerchat/internal/callsignal"
	"github.com/mistcall/strangerchat/internal/types"
)

// unpair tears down a stranger pairing initiated by self (spec §4.6): the
// Pair Registry entry is removed, both profiles return to connected/no
// partner, and only the other side (partner) is told — "not to x, x
// initiated".
func (r *Router) unpair(self, partner types.ConnID) {
	r.pairs.Unpair(self)
	r.sessions.ClearPartner(self)
	r.sessions.ClearPartner(partner)

	room := types.DerivedStrangerRoom(self, partner)
	r.rooms.Remove(room, self)
	r.rooms.Remove(room, partner)
	r.hub.Leave(self, room)
	r.hub.Leave(partner, room)
	r.untrackRoomMember(room, self)
	r.untrackRoomMember(room, partner)
	r.unsubscribeRoom(room)

	r.emitDirect(partner, types.EventStrangerDisconnected, map[string]any{
		"message": "your stranger partner disconnected",
	})
}

// teardownCall ends a Call record and notifies both parties, treating
// end/reject/disconnect teardown uniformly (spec §4.7). A call already
// removed by a concurrent teardown is a silent no-op.
func (r *Router) teardownCall(call callsignal.Call) {
	if _, err := r.calls.End(call.RoomID); err != nil {
		return
	}

	event := types.EventVideoCallEnded
	if call.Kind == types.CallKindPrivate {
		event = types.EventPrivateVideoCallEnded
	} else {
		r.sessions.SetInVideoCall(call.Initiator, false)
		r.sessions.SetInVideoCall(call.Partner, false)
	}

	payload := map[string]any{
		"room_id":   call.RoomID,
		"initiator": call.Initiator,
		"partner":   call.Partner,
	}
	r.emitDirect(call.Initiator, event, payload)
	r.emitDirect(call.Partner, event, payload)
}
