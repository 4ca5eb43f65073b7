package chatstore

import (
	"testing"

	"github.com/mistcall/strangerchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestTruncateForReply(t *testing.T) {
	short := "hello"
	assert.Equal(t, short, TruncateForReply(short))

	long := ""
	for i := 0; i < 60; i++ {
		long += "a"
	}
	truncated := TruncateForReply(long)
	assert.Equal(t, 51, len([]rune(truncated)))
	assert.Contains(t, truncated, "…")
}

func TestStore_AddAndGet(t *testing.T) {
	s := NewStore()
	msg := &Message{ID: "m1", Type: types.MessageTypeMessage, Content: "hi", Username: "Alice", Room: "lobby"}
	s.Add(msg)

	got, ok := s.Get("m1")
	assert.True(t, ok)
	assert.Equal(t, "hi", got.Content)
}

func TestStore_Edit_OnlyAuthorOnNonFile(t *testing.T) {
	s := NewStore()
	s.Add(&Message{ID: "m1", Type: types.MessageTypeMessage, Content: "hi", Username: "Alice", Room: "lobby"})

	edited, err := s.Edit("m1", "Alice", "hello")
	assert.NoError(t, err)
	assert.Equal(t, "hello", edited.Content)
	assert.True(t, edited.Edited)

	_, err = s.Edit("m1", "Bob", "x")
	assert.ErrorIs(t, err, ErrNotAuthor)

	_, err = s.Edit("missing", "Alice", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Edit_FileNotEditable(t *testing.T) {
	s := NewStore()
	s.Add(&Message{ID: "f1", Type: types.MessageTypeFile, Content: "", Username: "Alice", Room: "lobby"})

	_, err := s.Edit("f1", "Alice", "new")
	assert.ErrorIs(t, err, ErrFileNotEditable)
}

func TestStore_Delete_OnlyAuthor(t *testing.T) {
	s := NewStore()
	s.Add(&Message{ID: "m1", Type: types.MessageTypeMessage, Content: "hi", Username: "Alice", Room: "lobby"})

	_, err := s.Delete("m1", "Bob")
	assert.ErrorIs(t, err, ErrNotAuthor)

	_, err = s.Delete("m1", "Alice")
	assert.NoError(t, err)

	_, ok := s.Get("m1")
	assert.False(t, ok)
}

func TestStore_Recent_OrderedOldestFirst(t *testing.T) {
	s := NewStore()
	s.Add(&Message{ID: "m1", Content: "one", Username: "A", Room: "lobby"})
	s.Add(&Message{ID: "m2", Content: "two", Username: "A", Room: "lobby"})
	s.Add(&Message{ID: "m3", Content: "three", Username: "A", Room: "lobby"})

	recent := s.Recent("lobby", 2)
	assert.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
}

func TestStore_Recent_UnknownRoom(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.Recent("ghost", 10))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 50, ParseLimit("", 50, 200))
	assert.Equal(t, 10, ParseLimit("10", 50, 200))
	assert.Equal(t, 200, ParseLimit("9999", 50, 200))
	assert.Equal(t, 50, ParseLimit("garbage", 50, 200))
}

func TestNewMessageID_Schemes(t *testing.T) {
	assert.Contains(t, NewMessageID("c1"), "c1_")
	assert.Contains(t, NewPrivateMessageID("c1"), "private_c1_")
	assert.Contains(t, NewReplyMessageID("c1"), "reply_c1_")
	assert.Contains(t, NewStrangerMessageID("c1"), "stranger_c1_")
	assert.Contains(t, NewFileMessageID("c1"), "file_c1_")
	assert.Contains(t, NewSystemMessageID(), "system_")
}
