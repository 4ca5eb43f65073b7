// Package router implements the Event Router (spec §4.1): the single
// dispatch entry point that resolves a source session, validates an
// inbound event's required fields, drives a state transition across the
// other components under the concurrency discipline of spec §5, and emits
// outbound events via the Transport Adapter. Grounded on the teacher's
// session/room.go router() switch and its assertPayload/logHelper pair
// (session/handlers.go).
package router

import (
	"context"
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/bus"
	"github.com/mistcall/strangerchat/internal/callsignal"
	"github.com/mistcall/strangerchat/internal/chatstore"
	"github.com/mistcall/strangerchat/internal/logging"
	"github.com/mistcall/strangerchat/internal/matchmaker"
	"github.com/mistcall/strangerchat/internal/roomdir"
	"github.com/mistcall/strangerchat/internal/sessionreg"
	"github.com/mistcall/strangerchat/internal/transport"
	"github.com/mistcall/strangerchat/internal/types"
	"go.uber.org/zap"
)

// Router owns every core component and is the only thing that talks to
// the Transport Adapter.
type Router struct {
	hub *transport.Hub
	bus *bus.Service

	sessions   *sessionreg.Registry
	rooms      *roomdir.Directory
	messages   *chatstore.Store
	reactions  *chatstore.ReactionStore
	privateLog *chatstore.PrivateLog
	matcher    *matchmaker.Matchmaker
	pairs      *matchmaker.PairRegistry
	calls      *callsignal.Registry

	// busMu guards busCancel, the set of rooms this instance currently
	// relays cross-instance broadcasts for (spec §9 sharding).
	busMu     sync.Mutex
	busCancel map[types.RoomName]context.CancelFunc
}

// New builds a Router over a fresh set of components, wired to the given
// Transport Adapter. busService may be nil for single-instance operation.
// roomGrace is the delay before an emptied room is forgotten by the Room
// Directory (see internal/roomdir).
func New(hub *transport.Hub, busService *bus.Service, roomGrace time.Duration) *Router {
	return &Router{
		hub:        hub,
		bus:        busService,
		sessions:   sessionreg.NewRegistry(),
		rooms:      roomdir.NewDirectory(roomGrace),
		messages:   chatstore.NewStore(),
		reactions:  chatstore.NewReactionStore(),
		privateLog: chatstore.NewPrivateLog(),
		matcher:    matchmaker.New(),
		pairs:      matchmaker.NewPairRegistry(),
		calls:      callsignal.New(),
		busCancel:  make(map[types.RoomName]context.CancelFunc),
	}
}

// RegisterHandlers wires every inbound event name (spec §6.2) to its
// handler on the Transport Adapter. Called once during startup.
func (r *Router) RegisterHandlers() {
	r.hub.On(types.EventConnect, r.handleConnect)
	r.hub.On(types.EventDisconnect, r.handleDisconnect)

	r.hub.On(types.EventJoinRoom, r.handleJoinRoom)
	r.hub.On(types.EventSendMessage, r.handleSendMessage)
	r.hub.On(types.EventSendFileMessage, r.handleSendFileMessage)
	r.hub.On(types.EventSendReply, r.handleSendReply)
	r.hub.On(types.EventEditMessage, r.handleEditMessage)
	r.hub.On(types.EventDeleteMessage, r.handleDeleteMessage)
	r.hub.On(types.EventPrivateMessage, r.handlePrivateMessage)
	r.hub.On(types.EventAddReaction, r.handleAddReaction)
	r.hub.On(types.EventRemoveReaction, r.handleRemoveReaction)
	r.hub.On(types.EventTypingStart, r.handleTypingStart)
	r.hub.On(types.EventTypingStop, r.handleTypingStop)

	r.hub.On(types.EventEnterStrangerMode, r.handleEnterStrangerMode)
	r.hub.On(types.EventFindStranger, r.handleFindStranger)
	r.hub.On(types.EventSkipStranger, r.handleSkipStranger)
	r.hub.On(types.EventSendStrangerMessage, r.handleSendStrangerMessage)

	r.hub.On(types.EventStartVideoCall, r.handleStartVideoCall)
	r.hub.On(types.EventAcceptVideoCall, r.handleAcceptVideoCall)
	r.hub.On(types.EventRejectVideoCall, r.handleRejectVideoCall)
	r.hub.On(types.EventEndVideoCall, r.handleEndVideoCall)
	r.hub.On(types.EventStartPrivateVideoCall, r.handleStartPrivateVideoCall)
	r.hub.On(types.EventAcceptPrivateVideoCall, r.handleAcceptPrivateVideoCall)
	r.hub.On(types.EventRejectPrivateVideoCall, r.handleRejectPrivateVideoCall)
	r.hub.On(types.EventEndPrivateVideoCall, r.handleEndPrivateVideoCall)

	r.hub.On(types.EventWebRTCOffer, r.handleWebRTCSignal(types.EventWebRTCOffer, false))
	r.hub.On(types.EventWebRTCAnswer, r.handleWebRTCSignal(types.EventWebRTCAnswer, false))
	r.hub.On(types.EventWebRTCIceCandidate, r.handleWebRTCSignal(types.EventWebRTCIceCandidate, true))

	r.hub.On(types.EventPing, r.handlePing)
}

// logHelper mirrors the teacher's logHelper (session/handlers.go): log a
// handled event at Info and a rejected one (malformed payload, session not
// joined, room gone) at Warn, always naming the connection, the handler,
// and (if known) the room.
func logHelper(ok bool, conn types.ConnID, handlerName string, room types.RoomName) {
	ctx := context.Background()
	fieldsOK := []zap.Field{
		zap.String("conn_id", string(conn)),
		zap.String("handler", handlerName),
		zap.String("room", string(room)),
	}
	if ok {
		logging.Info(ctx, "handled inbound event", fieldsOK...)
		return
	}
	logging.Warn(ctx, "inbound event rejected, aborting handler", fieldsOK...)
}

// emitError sends a validation/authorization/state error to the
// originating connection only (spec §4.1, §7). Every call site builds its
// message through newError so the RouterError type stays the single place
// that shape is defined, even though the wire payload only needs the string.
func (r *Router) emitError(conn types.ConnID, message string) {
	err := newError(message)
	r.hub.Emit(conn, types.EventError, map[string]string{"message": err.Error()})
}

// broadcastRoom emits to every member of a room via the transport, and
// mirrors the broadcast over the optional Redis bus for cross-instance
// delivery (spec §9 sharding notes); busService is a no-op when nil or
// disabled, so single-instance deployments pay nothing extra.
func (r *Router) broadcastRoom(room types.RoomName, event types.Event, payload any, skip types.ConnID) {
	r.hub.EmitRoomExcept(room, event, payload, skip)
	if r.bus != nil {
		go r.bus.Publish(context.Background(), string(room), string(event), payload, string(skip), nil)
	}
}

// emitDirect emits to a single connection and also publishes a copy on the
// bus's per-session channel (spec §9). No instance subscribes to that
// channel, so a session connected to another instance does not receive it.
func (r *Router) emitDirect(target types.ConnID, event types.Event, payload any) {
	r.hub.Emit(target, event, payload)
	if r.bus != nil {
		go r.bus.PublishDirect(context.Background(), string(target), string(event), payload, "")
	}
}

