package callsignal

import (
	"github.com/mistcall/strangerchat/internal/types"
)

// PairLookup is the narrow slice of matchmaker.PairRegistry the relay
// needs, so this package doesn't have to import matchmaker.
type PairLookup interface {
	Partner(id types.ConnID) (types.ConnID, bool)
}

// ResolvePartner implements the WebRTC signal relay's partner lookup
// algorithm (spec §4.7): prefer the Pair Registry; fall back to scanning
// the Call Registry for any call the source participates in. Call setup
// can begin before pairing, or survive a skip_stranger that tore pairing
// down, which is why the Call Registry fallback exists.
func ResolvePartner(source types.ConnID, pairs PairLookup, calls *Registry) (types.ConnID, bool) {
	if partner, ok := pairs.Partner(source); ok {
		return partner, true
	}

	if call, ok := calls.FindBySession(source); ok {
		if call.Initiator == source {
			return call.Partner, true
		}
		return call.Initiator, true
	}

	return "", false
}
