package router

import (
	"context"
	"encoding/json"

	"github.com/mistcall/strangerchat/internal/bus"
	"github.com/mistcall/strangerchat/internal/logging"
	"github.com/mistcall/strangerchat/internal/types"
	"go.uber.org/zap"
)

// busRoomKey is the Redis set holding every session ID any instance has
// currently joined to room, used to report cross-instance headcounts
// (spec §9) without running a room registry through Redis.
func busRoomKey(room types.RoomName) string {
	return "strangerchat:room_members:" + string(room)
}

// subscribeRoom starts replaying another instance's broadcasts for room
// into this instance's local Transport Adapter, the receiving side of the
// mirroring broadcastRoom already does over Publish. emitDirect's
// PublishDirect copies have no receiving side.
// No-op without a bus; calling it twice for the same room is a no-op too.
func (r *Router) subscribeRoom(room types.RoomName) {
	if r.bus == nil {
		return
	}

	r.busMu.Lock()
	defer r.busMu.Unlock()
	if _, ok := r.busCancel[room]; ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.busCancel[room] = cancel
	selfID := r.bus.InstanceID()
	r.bus.Subscribe(ctx, string(room), nil, func(msg bus.PubSubPayload) {
		if msg.OriginID == selfID {
			// This instance already delivered the broadcast locally before
			// publishing it; replaying it here would duplicate it for every
			// other local member and re-deliver it to whoever broadcastRoom
			// skipped.
			return
		}
		r.hub.EmitRoomExcept(room, types.Event(msg.Event), json.RawMessage(msg.Payload), "")
	})
}

// unsubscribeRoom stops the cross-instance replay for a room once it has no
// more locally-connected members.
func (r *Router) unsubscribeRoom(room types.RoomName) {
	if r.bus == nil {
		return
	}

	r.busMu.Lock()
	defer r.busMu.Unlock()
	if cancel, ok := r.busCancel[room]; ok {
		cancel()
		delete(r.busCancel, room)
	}
}

// trackRoomMember records conn's presence in room's cross-instance member
// set, run async since it's advisory (used only for headcounts) and must
// never block the join that triggered it.
func (r *Router) trackRoomMember(room types.RoomName, conn types.ConnID) {
	if r.bus == nil {
		return
	}
	go func() {
		if err := r.bus.SetAdd(context.Background(), busRoomKey(room), string(conn)); err != nil {
			logging.Warn(context.Background(), "bus set_add failed",
				zap.String("room", string(room)), zap.Error(err))
		}
	}()
}

// untrackRoomMember is trackRoomMember's counterpart, run on leave/unpair.
func (r *Router) untrackRoomMember(room types.RoomName, conn types.ConnID) {
	if r.bus == nil {
		return
	}
	go func() {
		if err := r.bus.SetRem(context.Background(), busRoomKey(room), string(conn)); err != nil {
			logging.Warn(context.Background(), "bus set_rem failed",
				zap.String("room", string(room)), zap.Error(err))
		}
	}()
}

// globalRoomCount reports how many sessions, across every instance sharing
// the bus, currently have room open. Falls back to 0 when the bus is
// disabled; callers should treat that as "unknown" rather than "empty".
func (r *Router) globalRoomCount(room types.RoomName) int {
	if r.bus == nil {
		return 0
	}
	members, err := r.bus.SetMembers(context.Background(), busRoomKey(room))
	if err != nil {
		logging.Warn(context.Background(), "bus set_members failed",
			zap.String("room", string(room)), zap.Error(err))
		return 0
	}
	return len(members)
}
