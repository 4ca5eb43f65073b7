// Package sessionreg owns the per-connection Session Registry: the
// lifecycle of a live connection's session record and, for connections that
// have entered stranger mode, its anonymous stranger profile.
package sessionreg

import (
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
)

// Session is the per-connection record described in spec §3.
type Session struct {
	ID          types.ConnID
	Mode        types.SessionMode
	Username    types.Username
	Room        types.RoomName
	Joined      bool
	ConnectedAt time.Time
}

// StrangerProfile is present iff the session has entered stranger mode.
type StrangerProfile struct {
	Username    types.Username
	Status      types.StrangerStatus
	Interests   map[string]struct{}
	Partner     types.ConnID
	HasPartner  bool
	InVideoCall bool
}

// Registry is the process-wide map of connection ID to session, plus the
// parallel map of stranger profiles. Both maps share one lock: sessions and
// their stranger profiles are always read and mutated together by the
// Router, and the teacher's single-lock-per-registry shape (room.go's
// mutex guarding its role maps) is the grounded precedent here.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[types.ConnID]*Session
	strangers map[types.ConnID]*StrangerProfile
}

// NewRegistry creates an empty Session Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:  make(map[types.ConnID]*Session),
		strangers: make(map[types.ConnID]*StrangerProfile),
	}
}

// Connect creates a new session record in mode=regular, joined=false.
func (r *Registry) Connect(id types.ConnID) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Session{
		ID:          id,
		Mode:        types.ModeRegular,
		Joined:      false,
		ConnectedAt: time.Now(),
	}
	r.sessions[id] = s
	return s
}

// Get returns a copy of the session record, if any.
func (r *Registry) Get(id types.ConnID) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Exists reports whether a session is currently registered.
func (r *Registry) Exists(id types.ConnID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Join marks a session joined into a regular room with the given username.
// No-op (returns false) if the session is unknown or already joined, per
// spec §4.3's join_room idempotence requirement.
func (r *Registry) Join(id types.ConnID, username types.Username, room types.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Joined {
		return false
	}
	s.Joined = true
	s.Mode = types.ModeRegular
	s.Username = username
	s.Room = room
	return true
}

// LeaveRoom clears a session's current regular room, returning the room it
// was in (empty if none).
func (r *Registry) LeaveRoom(id types.ConnID) types.RoomName {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return ""
	}
	room := s.Room
	s.Room = ""
	s.Joined = false
	return room
}

// EnterStrangerMode creates a stranger profile for the session and flips
// its mode to stranger. No-op if the session is unknown.
func (r *Registry) EnterStrangerMode(id types.ConnID, username types.Username) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return false
	}
	s.Mode = types.ModeStranger

	r.strangers[id] = &StrangerProfile{
		Username:  username,
		Status:    types.StatusConnected,
		Interests: make(map[string]struct{}),
	}
	return true
}

// StrangerProfile returns a copy of the stranger profile, if any.
func (r *Registry) StrangerProfile(id types.ConnID) (StrangerProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.strangers[id]
	if !ok {
		return StrangerProfile{}, false
	}
	return *p, true
}

// SetSearching sets status=searching and records the submitted interests.
func (r *Registry) SetSearching(id types.ConnID, interests []string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.strangers[id]
	if !ok {
		return false
	}
	p.Status = types.StatusSearching
	p.Interests = make(map[string]struct{}, len(interests))
	for _, i := range interests {
		p.Interests[i] = struct{}{}
	}
	return true
}

// SetChatting sets status=chatting and records the partner, per
// create_pair's atomic profile transition (spec §4.6).
func (r *Registry) SetChatting(id, partner types.ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.strangers[id]
	if !ok {
		return false
	}
	p.Status = types.StatusChatting
	p.Partner = partner
	p.HasPartner = true
	return true
}

// ClearPartner resets status=connected, partner=nil, used by unpair
// (spec §4.6) on both sides of a broken pairing.
func (r *Registry) ClearPartner(id types.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.strangers[id]
	if !ok {
		return
	}
	p.Status = types.StatusConnected
	p.Partner = ""
	p.HasPartner = false
}

// SetInVideoCall toggles the orthogonal in_video_call flag.
func (r *Registry) SetInVideoCall(id types.ConnID, inCall bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.strangers[id]
	if !ok {
		return
	}
	p.InVideoCall = inCall
}

// Disconnect removes a session and its stranger profile (if any),
// returning both for the caller to drive the remaining disconnect cleanup
// (spec §4.2: room leave, unpair, queue removal, call teardown happen in
// the Router, which owns cross-component ordering).
func (r *Registry) Disconnect(id types.ConnID) (Session, StrangerProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return Session{}, StrangerProfile{}, false
	}
	sessCopy := *s
	delete(r.sessions, id)

	var profCopy StrangerProfile
	if p, ok := r.strangers[id]; ok {
		profCopy = *p
		delete(r.strangers, id)
	}

	return sessCopy, profCopy, true
}

// All returns a snapshot of every live session, used by the
// /debug/connections HTTP handler.
func (r *Registry) All() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
