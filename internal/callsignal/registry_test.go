package callsignal

import (
	"testing"

	"github.com/mistcall/strangerchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestStart_CreatesCallingCall(t *testing.T) {
	r := New()
	call, err := r.Start("stranger_a_b", "a", "b", types.CallKindStranger)

	assert.NoError(t, err)
	assert.Equal(t, types.CallStatusCalling, call.Status)
	assert.Equal(t, types.CallKindStranger, call.Kind)
}

func TestStart_DuplicateRoomErrors(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)

	_, err := r.Start("room1", "a", "b", types.CallKindStranger)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestAccept_TransitionsToActive(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)

	call, err := r.Accept("room1")
	assert.NoError(t, err)
	assert.Equal(t, types.CallStatusActive, call.Status)
}

func TestAccept_UnknownRoomErrors(t *testing.T) {
	r := New()
	_, err := r.Accept("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEnd_RemovesRecordAndIndex(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)

	_, err := r.End("room1")
	assert.NoError(t, err)

	_, ok := r.Get("room1")
	assert.False(t, ok)
	_, ok = r.FindBySession("a")
	assert.False(t, ok)
}

func TestFindBySession_MatchesInitiatorOrPartner(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)

	call, ok := r.FindBySession("b")
	assert.True(t, ok)
	assert.Equal(t, types.RoomName("room1"), call.RoomID)
}

func TestAllBySession_ReturnsAllParticipatingCalls(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)
	r.Start("room2", "a", "c", types.CallKindPrivate)

	calls := r.AllBySession("a")
	assert.Len(t, calls, 2)
}

func TestCount_ByKind(t *testing.T) {
	r := New()
	r.Start("room1", "a", "b", types.CallKindStranger)
	r.Start("room2", "c", "d", types.CallKindPrivate)

	counts := r.Count()
	assert.Equal(t, 1, counts[types.CallKindStranger])
	assert.Equal(t, 1, counts[types.CallKindPrivate])
}

type fakePairs struct {
	partners map[types.ConnID]types.ConnID
}

func (f fakePairs) Partner(id types.ConnID) (types.ConnID, bool) {
	p, ok := f.partners[id]
	return p, ok
}

func TestResolvePartner_PrefersPairRegistry(t *testing.T) {
	calls := New()
	pairs := fakePairs{partners: map[types.ConnID]types.ConnID{"a": "b"}}

	partner, ok := ResolvePartner("a", pairs, calls)
	assert.True(t, ok)
	assert.Equal(t, types.ConnID("b"), partner)
}

func TestResolvePartner_FallsBackToCallRegistry(t *testing.T) {
	calls := New()
	calls.Start("room1", "a", "b", types.CallKindStranger)
	pairs := fakePairs{partners: map[types.ConnID]types.ConnID{}}

	partner, ok := ResolvePartner("a", pairs, calls)
	assert.True(t, ok)
	assert.Equal(t, types.ConnID("b"), partner)

	partner, ok = ResolvePartner("b", pairs, calls)
	assert.True(t, ok)
	assert.Equal(t, types.ConnID("a"), partner)
}

func TestResolvePartner_NeitherYieldsFalse(t *testing.T) {
	calls := New()
	pairs := fakePairs{partners: map[types.ConnID]types.ConnID{}}

	_, ok := ResolvePartner("a", pairs, calls)
	assert.False(t, ok)
}
