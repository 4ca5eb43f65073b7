// Package roomdir owns the Room Directory: the map of room name to the set
// of connection IDs currently inside it. It tracks membership only; the
// Event Router combines a roster with Session Registry data to build the
// room_users payload (spec §4.8).
package roomdir

import (
	"sync"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
	"k8s.io/utils/set"
)

// Directory is the process-wide map of room name to member set, guarded by
// a single mutex — the same granularity the teacher uses for its room
// membership maps.
type Directory struct {
	mu     sync.RWMutex
	rooms  map[types.RoomName]set.Set[types.ConnID]
	purges map[types.RoomName]*time.Timer

	// grace delays the actual deletion of an emptied room so a session that
	// reconnects and rejoins within the window finds its room still alive
	// (e.g. a brief network blip mid-conversation). Zero deletes immediately.
	grace time.Duration
}

// NewDirectory creates an empty Room Directory. grace is the delay before an
// emptied room is forgotten; zero or negative disables the grace period.
func NewDirectory(grace time.Duration) *Directory {
	return &Directory{
		rooms:  make(map[types.RoomName]set.Set[types.ConnID]),
		purges: make(map[types.RoomName]*time.Timer),
		grace:  grace,
	}
}

// Add puts a connection into a room, creating the room if it doesn't exist,
// and cancels any pending deletion the room had queued up from a previous
// emptying within the grace window.
func (d *Directory) Add(room types.RoomName, id types.ConnID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.purges[room]; ok {
		t.Stop()
		delete(d.purges, room)
	}

	members, ok := d.rooms[room]
	if !ok {
		members = set.New[types.ConnID]()
		d.rooms[room] = members
	}
	members.Insert(id)
}

// Remove takes a connection out of a room. Returns true if the room is now
// empty. With no grace period the room is deleted from the directory
// immediately; otherwise deletion is deferred and Add can still cancel it.
func (d *Directory) Remove(room types.RoomName, id types.ConnID) (nowEmpty bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	members, ok := d.rooms[room]
	if !ok {
		return true
	}
	members.Delete(id)
	if members.Len() != 0 {
		return false
	}

	if d.grace <= 0 {
		delete(d.rooms, room)
		return true
	}

	d.schedulePurge(room)
	return true
}

// schedulePurge deletes room from the directory once grace has elapsed,
// unless it has gained members again in the meantime. Caller holds d.mu.
func (d *Directory) schedulePurge(room types.RoomName) {
	if t, ok := d.purges[room]; ok {
		t.Stop()
	}
	d.purges[room] = time.AfterFunc(d.grace, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if members, ok := d.rooms[room]; ok && members.Len() == 0 {
			delete(d.rooms, room)
		}
		delete(d.purges, room)
	})
}

// Members returns a snapshot of the connection IDs currently in a room.
func (d *Directory) Members(room types.RoomName) []types.ConnID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members, ok := d.rooms[room]
	if !ok {
		return nil
	}
	return members.UnsortedList()
}

// Count returns the number of members in a room.
func (d *Directory) Count(room types.RoomName) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	members, ok := d.rooms[room]
	if !ok {
		return 0
	}
	return members.Len()
}

// RoomExists reports whether a room is currently tracked: it has at least
// one member, or it was emptied and its grace period has not yet expired.
func (d *Directory) RoomExists(room types.RoomName) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.rooms[room]
	return ok
}

// Snapshot returns every room name currently tracked along with its member
// count, used by the /debug HTTP handler.
func (d *Directory) Snapshot() map[types.RoomName]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[types.RoomName]int, len(d.rooms))
	for room, members := range d.rooms {
		out[room] = members.Len()
	}
	return out
}
