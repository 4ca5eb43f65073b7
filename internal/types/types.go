// Package types declares the shared identifier and event-name types used
// across the session, matchmaking, and signaling packages.
package types

import "fmt"

// ConnID is the opaque, transport-assigned identifier for a live connection.
// Stable for the lifetime of the connection, never reused.
type ConnID string

// RoomName identifies a logical room at the transport and Room Directory
// level. Regular rooms are client-named; stranger and private-call rooms
// use the derived names built by DerivedStrangerRoom / DerivedCallRoom.
type RoomName string

// Username is a display name: client-supplied for regular chat, or
// server-generated for stranger mode.
type Username string

// Event is the wire name of an inbound or outbound event, e.g. "join_room".
type Event string

// SessionMode is the mode a session is operating in.
type SessionMode string

const (
	ModeRegular  SessionMode = "regular"
	ModeStranger SessionMode = "stranger"
)

// StrangerStatus is the status of a session that has entered stranger mode.
type StrangerStatus string

const (
	StatusConnected StrangerStatus = "connected"
	StatusSearching StrangerStatus = "searching"
	StatusChatting  StrangerStatus = "chatting"
)

// CallKind distinguishes a stranger-pairing call from a directed private call.
type CallKind string

const (
	CallKindStranger CallKind = "stranger"
	CallKindPrivate  CallKind = "private"
)

// CallStatus is the lifecycle state of a Call record.
type CallStatus string

const (
	CallStatusCalling CallStatus = "calling"
	CallStatusActive  CallStatus = "active"
)

// MessageType distinguishes the shapes a Message record can take.
type MessageType string

const (
	MessageTypeMessage MessageType = "message"
	MessageTypeFile     MessageType = "file"
	MessageTypeSystem   MessageType = "system"
	MessageTypePrivate  MessageType = "private"
	MessageTypeStranger MessageType = "stranger_message"
)

// Inbound event names (client -> server), spec §6.2.
const (
	EventConnect               Event = "connect"
	EventDisconnect            Event = "disconnect"
	EventJoinRoom              Event = "join_room"
	EventSendMessage           Event = "send_message"
	EventEditMessage           Event = "edit_message"
	EventDeleteMessage         Event = "delete_message"
	EventSendReply             Event = "send_reply"
	EventSendFileMessage       Event = "send_file_message"
	EventPrivateMessage        Event = "private_message"
	EventAddReaction           Event = "add_reaction"
	EventRemoveReaction        Event = "remove_reaction"
	EventTypingStart           Event = "typing_start"
	EventTypingStop            Event = "typing_stop"
	EventEnterStrangerMode     Event = "enter_stranger_mode"
	EventFindStranger          Event = "find_stranger"
	EventSendStrangerMessage   Event = "send_stranger_message"
	EventSkipStranger          Event = "skip_stranger"
	EventStartVideoCall        Event = "start_video_call"
	EventAcceptVideoCall       Event = "accept_video_call"
	EventRejectVideoCall       Event = "reject_video_call"
	EventEndVideoCall          Event = "end_video_call"
	EventStartPrivateVideoCall  Event = "start_private_video_call"
	EventAcceptPrivateVideoCall Event = "accept_private_video_call"
	EventRejectPrivateVideoCall Event = "reject_private_video_call"
	EventEndPrivateVideoCall    Event = "end_private_video_call"
	EventWebRTCOffer           Event = "webrtc_offer"
	EventWebRTCAnswer          Event = "webrtc_answer"
	EventWebRTCIceCandidate    Event = "webrtc_ice_candidate"
	EventPing                  Event = "ping"
)

// Outbound event names (server -> client), spec §6.3.
const (
	EventConnectionOptions          Event = "connection_options"
	EventJoinSuccess                Event = "join_success"
	EventMessage                    Event = "message"
	EventMessageEdited              Event = "message_edited"
	EventMessageDeleted             Event = "message_deleted"
	EventReactionUpdated            Event = "reaction_updated"
	EventUserTyping                 Event = "user_typing"
	EventRoomUsers                  Event = "room_users"
	EventError                      Event = "error"
	EventStrangerModeEntered        Event = "stranger_mode_entered"
	EventSearchingStranger          Event = "searching_stranger"
	EventStrangerFound              Event = "stranger_found"
	EventStrangerMessage            Event = "stranger_message"
	EventStrangerDisconnected       Event = "stranger_disconnected"
	EventIncomingVideoCall          Event = "incoming_video_call"
	EventVideoCallInitiated         Event = "video_call_initiated"
	EventVideoCallAccepted          Event = "video_call_accepted"
	EventVideoCallRejected          Event = "video_call_rejected"
	EventVideoCallEnded             Event = "video_call_ended"
	EventIncomingPrivateVideoCall   Event = "incoming_private_video_call"
	EventPrivateVideoCallInitiated  Event = "private_video_call_initiated"
	EventPrivateVideoCallAccepted   Event = "private_video_call_accepted"
	EventPrivateVideoCallRejected   Event = "private_video_call_rejected"
	EventPrivateVideoCallEnded      Event = "private_video_call_ended"
	EventPong                       Event = "pong"
)

// orderedPair returns (a, b) sorted lexicographically, giving a stable
// min/max for deriving symmetric room names regardless of pairing order.
func orderedPair(a, b ConnID) (ConnID, ConnID) {
	if a <= b {
		return a, b
	}
	return b, a
}

// DerivedStrangerRoom builds the deterministic room name for a stranger
// pairing's text chat: stranger_<min(a,b)>_<max(a,b)> (spec §3).
func DerivedStrangerRoom(a, b ConnID) RoomName {
	lo, hi := orderedPair(a, b)
	return RoomName(fmt.Sprintf("stranger_%s_%s", lo, hi))
}

// DerivedCallRoom builds the deterministic call room ID for a directed
// private call: private_call_<min(a,b)>_<max(a,b)> (spec §3).
func DerivedCallRoom(a, b ConnID) RoomName {
	lo, hi := orderedPair(a, b)
	return RoomName(fmt.Sprintf("private_call_%s_%s", lo, hi))
}

// OrderedPairKey builds the "<min>_<max>" key used by the Private
// Conversation Log to address a pair of sessions regardless of who
// initiated (spec §3).
func OrderedPairKey(a, b ConnID) string {
	lo, hi := orderedPair(a, b)
	return fmt.Sprintf("%s_%s", lo, hi)
}
