package router

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/mistcall/strangerchat/internal/chatstore"
	"github.com/mistcall/strangerchat/internal/types"
)

// requireJoined fetches the source session and rejects unless it is a
// joined regular-mode session with a room, the precondition shared by
// send_message/send_reply/send_file_message/edit/delete/reactions.
func (r *Router) requireJoined(conn types.ConnID) (types.RoomName, types.Username, bool) {
	sess, ok := r.sessions.Get(conn)
	if !ok || !sess.Joined || sess.Room == "" {
		r.emitError(conn, "you must join a room first")
		return "", "", false
	}
	return sess.Room, sess.Username, true
}

// handleSendMessage accepts message|content|text, and turns the optional
// file|fileInfo field into a type=file message (spec §4.3).
func (r *Router) handleSendMessage(conn types.ConnID, payload json.RawMessage) {
	room, username, ok := r.requireJoined(conn)
	if !ok {
		logHelper(false, conn, "send_message", "")
		return
	}

	f := parseFields(payload)
	content, _ := f.str("message", "content", "text")
	content = strings.TrimSpace(content)

	msg := &messageRecord{
		Type:     types.MessageTypeMessage,
		Content:  content,
		Username: username,
		Room:     room,
		UserID:   conn,
	}
	if file := decodeFile(f); file != nil {
		msg.Type = types.MessageTypeFile
		msg.File = file
	}
	msg.ID = chatstore.NewMessageID(conn)
	if msg.Type == types.MessageTypeFile {
		msg.ID = chatstore.NewFileMessageID(conn)
	}

	r.messages.Add(msg.store())
	r.broadcastRoom(room, types.EventMessage, msg.toPayload(), "")

	logHelper(true, conn, "send_message", room)
}

// decodeFile reads the file|fileInfo alias into a FileDescriptor, nil if
// absent.
func decodeFile(f fields) *chatstore.FileDescriptor {
	raw, ok := f.raw("file")
	if !ok {
		raw, ok = f.raw("fileInfo")
	}
	if !ok {
		return nil
	}
	file, ok := assertPayload[chatstore.FileDescriptor](raw)
	if !ok {
		return nil
	}
	return &file
}

// handleSendFileMessage is send_message specialized to a required file
// attachment (spec §6.2's send_file_message{file, message?}).
func (r *Router) handleSendFileMessage(conn types.ConnID, payload json.RawMessage) {
	room, username, ok := r.requireJoined(conn)
	if !ok {
		logHelper(false, conn, "send_file_message", "")
		return
	}

	f := parseFields(payload)
	file := decodeFile(f)
	if file == nil {
		r.emitError(conn, "file is required")
		return
	}
	content, _ := f.str("message", "content", "text")

	msg := &messageRecord{
		ID:       chatstore.NewFileMessageID(conn),
		Type:     types.MessageTypeFile,
		Content:  content,
		Username: username,
		Room:     room,
		UserID:   conn,
		File:     file,
	}
	r.messages.Add(msg.store())
	r.broadcastRoom(room, types.EventMessage, msg.toPayload(), "")

	logHelper(true, conn, "send_file_message", room)
}

// handleSendReply is send_message plus a truncated replyTo descriptor
// (spec §4.3).
func (r *Router) handleSendReply(conn types.ConnID, payload json.RawMessage) {
	room, username, ok := r.requireJoined(conn)
	if !ok {
		logHelper(false, conn, "send_reply", "")
		return
	}

	f := parseFields(payload)
	content, _ := f.str("message", "content", "text")
	replyToID, _ := f.str("replyToId")
	replyToUsername, _ := f.str("replyToUsername")
	replyToContent, _ := f.str("replyToContent")
	if replyToID == "" {
		r.emitError(conn, "replyToId is required")
		return
	}

	msg := &messageRecord{
		ID:       chatstore.NewReplyMessageID(conn),
		Type:     types.MessageTypeMessage,
		Content:  strings.TrimSpace(content),
		Username: username,
		Room:     room,
		UserID:   conn,
		ReplyTo: &chatstore.ReplyInfo{
			MessageID:      replyToID,
			Username:       types.Username(replyToUsername),
			ContentPreview: chatstore.TruncateForReply(replyToContent),
		},
	}
	r.messages.Add(msg.store())
	r.broadcastRoom(room, types.EventMessage, msg.toPayload(), "")

	logHelper(true, conn, "send_reply", room)
}

// handleEditMessage allows only the original author to edit a non-file
// message (spec §4.3).
func (r *Router) handleEditMessage(conn types.ConnID, payload json.RawMessage) {
	_, username, ok := r.requireJoined(conn)
	if !ok {
		return
	}

	f := parseFields(payload)
	messageID, _ := f.str("message_id", "messageId")
	newContent, _ := f.str("new_content", "newContent")
	if messageID == "" {
		r.emitError(conn, "message_id is required")
		return
	}

	msg, err := r.messages.Edit(messageID, username, newContent)
	if err != nil {
		r.emitError(conn, err.Error())
		return
	}

	r.broadcastRoom(msg.Room, types.EventMessageEdited, map[string]any{
		"message_id":  msg.ID,
		"new_content": msg.Content,
		"edited_at":   msg.EditedAt,
		"room":        msg.Room,
		"username":    msg.Username,
	}, "")
}

// handleDeleteMessage allows only the original author to delete a message.
func (r *Router) handleDeleteMessage(conn types.ConnID, payload json.RawMessage) {
	_, username, ok := r.requireJoined(conn)
	if !ok {
		return
	}

	f := parseFields(payload)
	messageID, _ := f.str("message_id", "messageId")
	if messageID == "" {
		r.emitError(conn, "message_id is required")
		return
	}

	msg, err := r.messages.Delete(messageID, username)
	if err != nil {
		r.emitError(conn, err.Error())
		return
	}

	r.broadcastRoom(msg.Room, types.EventMessageDeleted, map[string]any{
		"message_id": msg.ID,
		"room":       msg.Room,
		"username":   msg.Username,
		"deleted_at": time.Now(),
	}, "")
}

// handlePrivateMessage requires both sender and recipient to be active
// sessions; echoes back to the sender with fromSelf=true (spec §4.3).
func (r *Router) handlePrivateMessage(conn types.ConnID, payload json.RawMessage) {
	sess, ok := r.sessions.Get(conn)
	if !ok {
		r.emitError(conn, "unknown session")
		return
	}

	f := parseFields(payload)
	to, _ := f.str("to", "toUserId")
	content, _ := f.str("message", "content")
	if to == "" || content == "" {
		r.emitError(conn, "to and message are required")
		return
	}

	toID := types.ConnID(to)
	toSess, ok := r.sessions.Get(toID)
	if !ok {
		r.emitError(conn, "recipient offline")
		return
	}

	pm := chatstore.PrivateMessage{
		ID:        chatstore.NewPrivateMessageID(conn),
		FromID:    conn,
		FromUser:  sess.Username,
		ToID:      toID,
		ToUser:    toSess.Username,
		Content:   content,
		Timestamp: time.Now(),
	}
	r.privateLog.Append(pm)

	base := map[string]any{
		"id":        pm.ID,
		"from":      pm.FromID,
		"fromUser":  pm.FromUser,
		"to":        pm.ToID,
		"toUser":    pm.ToUser,
		"message":   pm.Content,
		"timestamp": pm.Timestamp,
	}
	r.emitDirect(toID, types.EventMessage, base)

	self := map[string]any{}
	for k, v := range base {
		self[k] = v
	}
	self["fromSelf"] = true
	r.emitDirect(conn, types.EventMessage, self)
}

// handleTypingStart / handleTypingStop emit user_typing to the relevant
// target: the private recipient, or the current room excluding the sender
// (spec §4.3).
func (r *Router) handleTypingStart(conn types.ConnID, payload json.RawMessage) {
	r.handleTyping(conn, payload, true)
}

func (r *Router) handleTypingStop(conn types.ConnID, payload json.RawMessage) {
	r.handleTyping(conn, payload, false)
}

func (r *Router) handleTyping(conn types.ConnID, payload json.RawMessage, typing bool) {
	sess, ok := r.sessions.Get(conn)
	if !ok {
		return
	}

	f := parseFields(payload)
	isPrivate := false
	if v, ok := f.raw("isPrivate"); ok {
		json.Unmarshal(v, &isPrivate)
	}

	body := map[string]any{
		"username": sess.Username,
		"userId":   conn,
		"typing":   typing,
		"isPrivate": isPrivate,
	}

	if isPrivate {
		target, ok := f.str("targetUserId")
		if !ok {
			return
		}
		r.emitDirect(types.ConnID(target), types.EventUserTyping, body)
		return
	}

	if sess.Room == "" {
		return
	}
	r.broadcastRoom(sess.Room, types.EventUserTyping, body, conn)
}

// handleAddReaction / handleRemoveReaction enforce one reaction per user
// per message (spec §4.3) and broadcast the updated reaction set.
func (r *Router) handleAddReaction(conn types.ConnID, payload json.RawMessage) {
	r.mutateReaction(conn, payload, true)
}

func (r *Router) handleRemoveReaction(conn types.ConnID, payload json.RawMessage) {
	r.mutateReaction(conn, payload, false)
}

func (r *Router) mutateReaction(conn types.ConnID, payload json.RawMessage, add bool) {
	sess, ok := r.sessions.Get(conn)
	if !ok {
		return
	}

	f := parseFields(payload)
	messageID, _ := f.str("messageId", "message_id")
	emoji, _ := f.str("emoji")
	room, _ := f.str("room")
	if messageID == "" || emoji == "" {
		r.emitError(conn, "messageId and emoji are required")
		return
	}

	if add {
		r.reactions.Add(messageID, sess.Username, emoji)
	} else {
		r.reactions.Remove(messageID, sess.Username, emoji)
	}

	target := types.RoomName(room)
	if target == "" {
		target = sess.Room
	}
	r.broadcastRoom(target, types.EventReactionUpdated, map[string]any{
		"messageId": messageID,
		"reactions": r.reactions.Summaries(messageID),
	}, "")
}
