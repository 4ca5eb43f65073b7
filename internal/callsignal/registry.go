// Package callsignal implements the Call Registry and the WebRTC signal
// relay (spec §2.9, §3, §4.7). Partner lookup and non-blocking forwarding
// are grounded on the teacher's forwardWebRTCSignal (session/webrtc.go):
// a brief-lock lookup followed by delivery outside the lock.
package callsignal

import (
	"fmt"
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
)

// Call is the record described in spec §3. State machine (stranger kind):
// ∅ -> calling (start) -> active (accept) -> ∅ (end / reject / disconnect).
type Call struct {
	RoomID    types.RoomName
	Initiator types.ConnID
	Partner   types.ConnID
	Status    types.CallStatus
	Kind      types.CallKind
	CreatedAt time.Time
}

// Registry is the map of call room ID to call record, plus a per-session
// index so disconnect cleanup and WebRTC relay fallback lookups don't need
// a full scan.
type Registry struct {
	mu        sync.RWMutex
	calls     map[types.RoomName]*Call
	bySession map[types.ConnID]map[types.RoomName]struct{}
}

// New creates an empty Call Registry.
func New() *Registry {
	return &Registry{
		calls:     make(map[types.RoomName]*Call),
		bySession: make(map[types.ConnID]map[types.RoomName]struct{}),
	}
}

// ErrAlreadyExists is returned when starting a call whose room ID already
// has an active record.
var ErrAlreadyExists = fmt.Errorf("call already exists for this room")

// ErrNotFound is returned when acting on a call room ID with no record.
var ErrNotFound = fmt.Errorf("call not found")

// Start creates a calling-status Call record keyed by roomID.
func (r *Registry) Start(roomID types.RoomName, initiator, partner types.ConnID, kind types.CallKind) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.calls[roomID]; exists {
		return Call{}, ErrAlreadyExists
	}

	call := &Call{
		RoomID:    roomID,
		Initiator: initiator,
		Partner:   partner,
		Status:    types.CallStatusCalling,
		Kind:      kind,
		CreatedAt: time.Now(),
	}
	r.calls[roomID] = call
	r.indexLocked(roomID, initiator, partner)
	return *call, nil
}

// Accept transitions a call to active.
func (r *Registry) Accept(roomID types.RoomName) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := r.calls[roomID]
	if !ok {
		return Call{}, ErrNotFound
	}
	call.Status = types.CallStatusActive
	return *call, nil
}

// End removes a call record (covers end_video_call, reject, and
// disconnect-triggered teardown — spec §4.7 treats all three as deleting
// the record).
func (r *Registry) End(roomID types.RoomName) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	call, ok := r.calls[roomID]
	if !ok {
		return Call{}, ErrNotFound
	}
	delete(r.calls, roomID)
	r.unindexLocked(roomID, call.Initiator, call.Partner)
	return *call, nil
}

// Get returns a copy of a call record, if any.
func (r *Registry) Get(roomID types.RoomName) (Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	call, ok := r.calls[roomID]
	if !ok {
		return Call{}, false
	}
	return *call, true
}

// FindBySession returns one call in which id participates as initiator or
// partner, used by the WebRTC relay's fallback lookup (spec §4.7 step 2).
func (r *Registry) FindBySession(id types.ConnID) (Call, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for roomID := range r.bySession[id] {
		if call, ok := r.calls[roomID]; ok {
			return *call, true
		}
	}
	return Call{}, false
}

// AllBySession returns every call in which id participates, used by
// disconnect cleanup (spec §4.2: "for any Call in which this session
// participates, act as if end_video_call was invoked").
func (r *Registry) AllBySession(id types.ConnID) []Call {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Call, 0, len(r.bySession[id]))
	for roomID := range r.bySession[id] {
		if call, ok := r.calls[roomID]; ok {
			out = append(out, *call)
		}
	}
	return out
}

// Count returns the number of active calls by kind, for /stats.
func (r *Registry) Count() map[types.CallKind]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[types.CallKind]int, 2)
	for _, call := range r.calls {
		out[call.Kind]++
	}
	return out
}

func (r *Registry) indexLocked(roomID types.RoomName, initiator, partner types.ConnID) {
	for _, id := range [2]types.ConnID{initiator, partner} {
		rooms, ok := r.bySession[id]
		if !ok {
			rooms = make(map[types.RoomName]struct{})
			r.bySession[id] = rooms
		}
		rooms[roomID] = struct{}{}
	}
}

func (r *Registry) unindexLocked(roomID types.RoomName, initiator, partner types.ConnID) {
	for _, id := range [2]types.ConnID{initiator, partner} {
		rooms, ok := r.bySession[id]
		if !ok {
			continue
		}
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(r.bySession, id)
		}
	}
}
