// Package matchmaker implements the Matchmaker (general + interest FIFO
// waiting queues and the pairing algorithm, spec §4.4) and the Pair
// Registry (spec §4.6). Queues are built on container/list, the same
// structure the teacher uses for its fairness queues (handDrawOrderQueue).
package matchmaker

import (
	"container/list"
	"sync"

	"github.com/mistcall/strangerchat/internal/types"
)

// generalKey is the membership-tracking key for the general queue, chosen
// distinct from any legal interest string.
const generalKey = ""

// Matchmaker holds the general waiting queue and the per-interest queues.
// A session enqueued with interests is present in every one of those
// interest queues simultaneously (never also in the general queue) until
// it is popped or removed — spec §4.4 requires this duplicate presence.
type Matchmaker struct {
	mu          sync.Mutex
	general     *list.List
	interest    map[string]*list.List
	memberships map[types.ConnID]map[string]*list.Element
}

// New creates an empty Matchmaker.
func New() *Matchmaker {
	return &Matchmaker{
		general:     list.New(),
		interest:    make(map[string]*list.List),
		memberships: make(map[types.ConnID]map[string]*list.Element),
	}
}

// Enqueue places a searching session into the general queue (no interests)
// or into every one of its declared interest queues. It first purges any
// stale membership the session might still hold.
func (m *Matchmaker) Enqueue(id types.ConnID, interests []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeAllLocked(id)

	if len(interests) == 0 {
		mem := map[string]*list.Element{generalKey: m.general.PushBack(id)}
		m.memberships[id] = mem
		return
	}

	mem := make(map[string]*list.Element, len(interests))
	for _, interest := range interests {
		q, ok := m.interest[interest]
		if !ok {
			q = list.New()
			m.interest[interest] = q
		}
		mem[interest] = q.PushBack(id)
	}
	m.memberships[id] = mem
}

// PopCandidate runs the matching lookup of spec §4.4 steps 1-3: interest
// queues take strict precedence, in the order given, over the general
// queue; a popped candidate that isLive reports dead is discarded (purged
// from every queue it was in) and the search continues until a live
// candidate is found or all candidate queues are drained.
func (m *Matchmaker) PopCandidate(interests []string, isLive func(types.ConnID) bool) (types.ConnID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		id, ok := m.popOnceLocked(interests)
		if !ok {
			return "", false
		}
		if isLive(id) {
			return id, true
		}
		// Candidate disconnected while queued; already purged by
		// popOnceLocked, keep looking.
	}
}

// popOnceLocked removes and returns a single candidate per the
// interest-then-general precedence, purging all of its residual queue
// memberships. Caller holds m.mu.
func (m *Matchmaker) popOnceLocked(interests []string) (types.ConnID, bool) {
	for _, interest := range interests {
		q, ok := m.interest[interest]
		if !ok || q.Len() == 0 {
			continue
		}
		id := q.Front().Value.(types.ConnID)
		m.removeAllLocked(id)
		return id, true
	}

	if m.general.Len() > 0 {
		id := m.general.Front().Value.(types.ConnID)
		m.removeAllLocked(id)
		return id, true
	}

	return "", false
}

// Remove purges a session from every queue it is waiting in. Used by
// disconnect and skip_stranger cleanup; a no-op if the session isn't
// queued.
func (m *Matchmaker) Remove(id types.ConnID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeAllLocked(id)
}

func (m *Matchmaker) removeAllLocked(id types.ConnID) {
	mem, ok := m.memberships[id]
	if !ok {
		return
	}
	for key, elem := range mem {
		if key == generalKey {
			m.general.Remove(elem)
			continue
		}
		if q, ok := m.interest[key]; ok {
			q.Remove(elem)
			if q.Len() == 0 {
				delete(m.interest, key)
			}
		}
	}
	delete(m.memberships, id)
}

// IsQueued reports whether a session currently has any queue membership.
func (m *Matchmaker) IsQueued(id types.ConnID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.memberships[id]
	return ok
}

// QueueDepths returns the current depth of the general queue (key "general") and
// every interest queue, for /stats and /debug.
func (m *Matchmaker) QueueDepths() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()

	depths := make(map[string]int, len(m.interest)+1)
	depths["general"] = m.general.Len()
	for interest, q := range m.interest {
		depths[interest] = q.Len()
	}
	return depths
}
