package matchmaker

import (
	"sync"

	"github.com/mistcall/strangerchat/internal/types"
)

// PairRegistry is the symmetric mapping of connection ID to partner
// connection ID for active stranger pairings (spec §2.8, §4.6). It is the
// single source of truth for "am I paired?".
type PairRegistry struct {
	mu    sync.RWMutex
	pairs map[types.ConnID]types.ConnID
}

// NewPairRegistry creates an empty Pair Registry.
func NewPairRegistry() *PairRegistry {
	return &PairRegistry{pairs: make(map[types.ConnID]types.ConnID)}
}

// Pair atomically links a and b as partners. Callers must have already
// checked that neither is currently paired (spec §4.6 create_pair
// precondition).
func (p *PairRegistry) Pair(a, b types.ConnID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pairs[a] = b
	p.pairs[b] = a
}

// Partner returns the current partner of id, if paired.
func (p *PairRegistry) Partner(id types.ConnID) (types.ConnID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	partner, ok := p.pairs[id]
	return partner, ok
}

// IsPaired reports whether id currently has a partner.
func (p *PairRegistry) IsPaired(id types.ConnID) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.pairs[id]
	return ok
}

// Unpair removes both sides of id's pairing, returning the former partner.
// No-op (returns ok=false) if id wasn't paired (spec §4.6 unpair).
func (p *PairRegistry) Unpair(id types.ConnID) (types.ConnID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	partner, ok := p.pairs[id]
	if !ok {
		return "", false
	}
	delete(p.pairs, id)
	delete(p.pairs, partner)
	return partner, true
}

// Count returns the number of active pairings (not connections; each
// pairing holds two map entries).
func (p *PairRegistry) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.pairs) / 2
}
