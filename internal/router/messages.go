package router

import (
	"time"

	"github.com/mistcall/strangerchat/internal/chatstore"
	"github.com/mistcall/strangerchat/internal/types"
)

// messageRecord is a builder for one Message Store entry and its matching
// outbound payload, used by every handler that posts a chat message
// (regular, file, reply, system, stranger).
type messageRecord struct {
	ID        string
	Type      types.MessageType
	Content   string
	Username  types.Username
	Room      types.RoomName
	UserID    types.ConnID
	File      *chatstore.FileDescriptor
	ReplyTo   *chatstore.ReplyInfo
	Timestamp time.Time
}

// store converts the builder into the chatstore.Message the Message Store
// expects, assigning a timestamp if none was set yet.
func (m *messageRecord) store() *chatstore.Message {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	return &chatstore.Message{
		ID:        m.ID,
		Type:      m.Type,
		Content:   m.Content,
		Username:  m.Username,
		Room:      m.Room,
		Timestamp: m.Timestamp,
		UserID:    m.UserID,
		File:      m.File,
		ReplyTo:   m.ReplyTo,
	}
}

// toPayload shapes the outbound "message" event body.
func (m *messageRecord) toPayload() map[string]any {
	p := map[string]any{
		"id":        m.ID,
		"type":      m.Type,
		"content":   m.Content,
		"username":  m.Username,
		"room":      m.Room,
		"timestamp": m.Timestamp,
		"userId":    m.UserID,
	}
	if m.File != nil {
		p["file"] = m.File
	}
	if m.ReplyTo != nil {
		p["replyTo"] = m.ReplyTo
	}
	return p
}

// recordAndBroadcastSystem stores a system message and broadcasts it to
// every member of the room.
func (r *Router) recordAndBroadcastSystem(room types.RoomName, msg *messageRecord) {
	msg.ID = chatstore.NewSystemMessageID()
	rec := msg.store()
	r.messages.Add(rec)
	r.broadcastRoom(room, types.EventMessage, msg.toPayload(), "")
}

// recordAndBroadcastSystemExcept is recordAndBroadcastSystem with
// self-exclusion, used for join/leave announcements the actor doesn't need
// to see twice (spec §4.3 join_room: "broadcast ... to other members").
func (r *Router) recordAndBroadcastSystemExcept(room types.RoomName, msg *messageRecord, skip types.ConnID) {
	msg.ID = chatstore.NewSystemMessageID()
	rec := msg.store()
	r.messages.Add(rec)
	r.broadcastRoom(room, types.EventMessage, msg.toPayload(), skip)
}
