package router

import (
	"encoding/json"
	"fmt"

	"github.com/mistcall/strangerchat/internal/types"
)

// handleConnect creates the session record and offers the two coexisting
// modes (spec §4.2).
func (r *Router) handleConnect(conn types.ConnID, _ json.RawMessage) {
	r.sessions.Connect(conn)

	r.emitDirect(conn, types.EventConnectionOptions, map[string]any{
		"modes":   []string{"chat_rooms", "stranger_chat"},
		"message": "choose a regular chat room or enter stranger mode",
	})

	logHelper(true, conn, "connect", "")
}

// handleDisconnect runs the full, idempotent teardown sequence of spec
// §4.2: session deletion (which hands back the session's room and stranger
// profile, and makes a repeated disconnect a no-op), then regular room
// leave, queue removal, unpair, call teardown. All of it is best-effort
// cleanup; nothing here aborts partway.
func (r *Router) handleDisconnect(conn types.ConnID, _ json.RawMessage) {
	session, profile, ok := r.sessions.Disconnect(conn)
	if !ok {
		return
	}

	if session.Room != "" {
		r.leaveRoomCleanup(conn, session.Room, session.Username)
	}

	r.matcher.Remove(conn)

	if profile.HasPartner {
		r.unpair(conn, profile.Partner)
	}

	for _, call := range r.calls.AllBySession(conn) {
		r.teardownCall(call)
	}

	logHelper(true, conn, "disconnect", session.Room)
}

// leaveRoomCleanup removes conn from a regular room at both the Room
// Directory and transport level, announces the departure, and refreshes
// room_users.
func (r *Router) leaveRoomCleanup(conn types.ConnID, room types.RoomName, username types.Username) {
	nowEmpty := r.rooms.Remove(room, conn)
	r.hub.Leave(conn, room)
	r.untrackRoomMember(room, conn)
	if nowEmpty {
		r.unsubscribeRoom(room)
	}

	sysMsg := &messageRecord{
		Type:    types.MessageTypeSystem,
		Content: fmt.Sprintf("%s left the chat", username),
		Room:    room,
	}
	r.recordAndBroadcastSystem(room, sysMsg)
	r.emitRoomUsers(room)
}

// handleJoinRoom is idempotent per session (guarded by the Session
// Registry's own joined flag) and resolves its fields by the alias
// precedence of spec §6.2/§9.
func (r *Router) handleJoinRoom(conn types.ConnID, payload json.RawMessage) {
	if !r.sessions.Exists(conn) {
		r.emitError(conn, "unknown session")
		return
	}

	f := parseFields(payload)
	room, ok := f.str("room", "roomId", "roomName")
	if !ok {
		r.emitError(conn, "room is required")
		logHelper(false, conn, "join_room", "")
		return
	}
	username := types.Username(f.strDefault("Anonymous", "username", "user"))
	roomName := types.RoomName(room)

	if !r.sessions.Join(conn, username, roomName) {
		// Already joined: idempotent no-op per spec §4.3.
		return
	}

	r.rooms.Add(roomName, conn)
	r.hub.Join(conn, roomName)
	r.subscribeRoom(roomName)
	r.trackRoomMember(roomName, conn)

	r.emitDirect(conn, types.EventJoinSuccess, map[string]any{
		"room":     roomName,
		"username": username,
	})

	welcome := &messageRecord{
		Type:    types.MessageTypeSystem,
		Content: fmt.Sprintf("welcome to %s, %s", roomName, username),
		Room:    roomName,
	}
	r.emitDirect(conn, types.EventMessage, welcome.toPayload())
	r.messages.Add(welcome.store())

	joinMsg := &messageRecord{
		Type:    types.MessageTypeSystem,
		Content: fmt.Sprintf("%s joined the chat", username),
		Room:    roomName,
	}
	r.recordAndBroadcastSystemExcept(roomName, joinMsg, conn)
	r.emitRoomUsers(roomName)

	logHelper(true, conn, "join_room", roomName)
}

// emitRoomUsers builds and broadcasts the room_users roster (spec §4.8).
func (r *Router) emitRoomUsers(room types.RoomName) {
	members := r.rooms.Members(room)
	users := make([]map[string]any, 0, len(members))
	for _, id := range members {
		sess, ok := r.sessions.Get(id)
		if !ok {
			continue
		}
		users = append(users, map[string]any{
			"username": sess.Username,
			"id":       id,
			"isOnline": true,
		})
	}
	payload := map[string]any{
		"room":  room,
		"users": users,
		"count": len(users),
	}
	if r.bus != nil {
		payload["global_count"] = r.globalRoomCount(room)
	}
	r.broadcastRoom(room, types.EventRoomUsers, payload, "")
}
