// Package chatstore implements the Message Store, Reaction Store, and
// Private Conversation Log (spec §2.4-§2.6, §3, §4.3). Room insertion order
// is kept with container/list, the same structure the teacher uses for its
// per-room chatHistory.
package chatstore

import (
	"container/list"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
)

// replyPreviewLimit is the truncation length for a reply's content
// preview, per spec §4.3.
const replyPreviewLimit = 50

// FileDescriptor describes an uploaded file attachment referenced by a
// file-type message.
type FileDescriptor struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	MIME string `json:"mime"`
	Size int64  `json:"size"`
}

// ReplyInfo is the truncated reference to the message being replied to.
type ReplyInfo struct {
	MessageID      string         `json:"messageId"`
	Username       types.Username `json:"username"`
	ContentPreview string         `json:"content"`
}

// Message is the record described in spec §3.
type Message struct {
	ID        string
	Type      types.MessageType
	Content   string
	Username  types.Username
	Room      types.RoomName
	Timestamp time.Time
	UserID    types.ConnID
	File      *FileDescriptor
	ReplyTo   *ReplyInfo
	Edited    bool
	EditedAt  time.Time
}

// TruncateForReply truncates s to replyPreviewLimit runes, appending an
// ellipsis when it was longer (spec §4.3).
func TruncateForReply(s string) string {
	runes := []rune(s)
	if len(runes) <= replyPreviewLimit {
		return s
	}
	return string(runes[:replyPreviewLimit]) + "…"
}

// nowMillis returns the current wall-clock time in milliseconds since the
// Unix epoch, the suffix shared by every message ID builder below.
func nowMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// NewMessageID builds the `<sid>_<ms>` ID for a regular message.
func NewMessageID(sid types.ConnID) string {
	return fmt.Sprintf("%s_%d", sid, nowMillis())
}

// NewPrivateMessageID builds the `private_<sid>_<ms>` ID.
func NewPrivateMessageID(sid types.ConnID) string {
	return fmt.Sprintf("private_%s_%d", sid, nowMillis())
}

// NewReplyMessageID builds the `reply_<sid>_<ms>` ID.
func NewReplyMessageID(sid types.ConnID) string {
	return fmt.Sprintf("reply_%s_%d", sid, nowMillis())
}

// NewStrangerMessageID builds the `stranger_<sid>_<ms>` ID.
func NewStrangerMessageID(sid types.ConnID) string {
	return fmt.Sprintf("stranger_%s_%d", sid, nowMillis())
}

// NewFileMessageID builds the `file_<sid>_<ms>` ID.
func NewFileMessageID(sid types.ConnID) string {
	return fmt.Sprintf("file_%s_%d", sid, nowMillis())
}

// NewSystemMessageID builds the `system_<ms>` ID.
func NewSystemMessageID() string {
	return fmt.Sprintf("system_%d", nowMillis())
}

// Store is the Message Store: a map of message ID to record, plus a
// per-room insertion-order list for lookups such as "last N messages".
type Store struct {
	mu        sync.RWMutex
	messages  map[string]*Message
	roomOrder map[types.RoomName]*list.List
	elements  map[string]*list.Element
}

// NewStore creates an empty Message Store.
func NewStore() *Store {
	return &Store{
		messages:  make(map[string]*Message),
		roomOrder: make(map[types.RoomName]*list.List),
		elements:  make(map[string]*list.Element),
	}
}

// Add records a message. If it belongs to a room, it is appended to that
// room's insertion order.
func (s *Store) Add(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[msg.ID] = msg

	if msg.Room == "" {
		return
	}
	order, ok := s.roomOrder[msg.Room]
	if !ok {
		order = list.New()
		s.roomOrder[msg.Room] = order
	}
	s.elements[msg.ID] = order.PushBack(msg.ID)
}

// Get returns a copy of a message, if it exists.
func (s *Store) Get(id string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return Message{}, false
	}
	return *m, true
}

// ErrNotFound is returned when a message ID has no matching record.
var ErrNotFound = fmt.Errorf("message not found")

// ErrNotAuthor is returned when the editor/deleter is not the original
// author.
var ErrNotAuthor = fmt.Errorf("you can only edit or delete your own messages")

// ErrFileNotEditable is returned when attempting to edit a file message.
var ErrFileNotEditable = fmt.Errorf("file messages cannot be edited")

// Edit mutates a message's content if editor is the original author and
// the message is of an editable type (spec §4.3: only type=message).
func (s *Store) Edit(id string, editor types.Username, newContent string) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	if m.Username != editor {
		return Message{}, ErrNotAuthor
	}
	if m.Type == types.MessageTypeFile {
		return Message{}, ErrFileNotEditable
	}
	if m.Type != types.MessageTypeMessage {
		return Message{}, ErrNotAuthor
	}

	m.Content = newContent
	m.Edited = true
	m.EditedAt = time.Now()
	return *m, nil
}

// Delete removes a message from the store and its room's order, if the
// deleter is the original author.
func (s *Store) Delete(id string, deleter types.Username) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	if m.Username != deleter {
		return Message{}, ErrNotAuthor
	}

	delete(s.messages, id)
	if elem, ok := s.elements[id]; ok {
		if order, ok := s.roomOrder[m.Room]; ok {
			order.Remove(elem)
			if order.Len() == 0 {
				delete(s.roomOrder, m.Room)
			}
		}
		delete(s.elements, id)
	}
	return *m, nil
}

// Recent returns the last limit messages posted to a room, oldest first.
func (s *Store) Recent(room types.RoomName, limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.roomOrder[room]
	if !ok || limit <= 0 {
		return nil
	}

	ids := make([]string, 0, limit)
	for e := order.Back(); e != nil && len(ids) < limit; e = e.Prev() {
		ids = append(ids, e.Value.(string))
	}

	out := make([]Message, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if m, ok := s.messages[ids[i]]; ok {
			out = append(out, *m)
		}
	}
	return out
}

// ParseLimit is a small helper for the HTTP handler's ?limit=N query param,
// defaulting to a sane value and rejecting garbage input.
func ParseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
