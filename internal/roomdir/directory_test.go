package roomdir

import (
	"testing"
	"time"

	"github.com/mistcall/strangerchat/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestAdd_CreatesRoomOnFirstMember(t *testing.T) {
	d := NewDirectory(0)
	d.Add("lobby", "c1")

	assert.True(t, d.RoomExists("lobby"))
	assert.Equal(t, 1, d.Count("lobby"))
	assert.ElementsMatch(t, []string{"c1"}, connIDsToStrings(d.Members("lobby")))
}

func TestAdd_SecondMemberJoinsSameRoom(t *testing.T) {
	d := NewDirectory(0)
	d.Add("lobby", "c1")
	d.Add("lobby", "c2")

	assert.Equal(t, 2, d.Count("lobby"))
}

func TestRemove_DeletesRoomWhenEmpty(t *testing.T) {
	d := NewDirectory(0)
	d.Add("lobby", "c1")

	nowEmpty := d.Remove("lobby", "c1")
	assert.True(t, nowEmpty)
	assert.False(t, d.RoomExists("lobby"))
}

func TestRemove_KeepsRoomWithRemainingMembers(t *testing.T) {
	d := NewDirectory(0)
	d.Add("lobby", "c1")
	d.Add("lobby", "c2")

	nowEmpty := d.Remove("lobby", "c1")
	assert.False(t, nowEmpty)
	assert.Equal(t, 1, d.Count("lobby"))
}

func TestRemove_UnknownRoomIsNoop(t *testing.T) {
	d := NewDirectory(0)
	assert.True(t, d.Remove("ghost", "c1"))
}

func TestSnapshot_ReflectsMemberCounts(t *testing.T) {
	d := NewDirectory(0)
	d.Add("lobby", "c1")
	d.Add("lobby", "c2")
	d.Add("other", "c3")

	snap := d.Snapshot()
	assert.Equal(t, 2, snap["lobby"])
	assert.Equal(t, 1, snap["other"])
}

func TestRemove_GracePeriodDelaysDeletion(t *testing.T) {
	d := NewDirectory(50 * time.Millisecond)
	d.Add("lobby", "c1")

	nowEmpty := d.Remove("lobby", "c1")
	assert.True(t, nowEmpty)
	assert.True(t, d.RoomExists("lobby"), "room must survive until the grace period elapses")

	assert.Eventually(t, func() bool {
		return !d.RoomExists("lobby")
	}, time.Second, 5*time.Millisecond)
}

func TestAdd_DuringGraceCancelsPendingDeletion(t *testing.T) {
	d := NewDirectory(100 * time.Millisecond)
	d.Add("lobby", "c1")
	d.Remove("lobby", "c1")

	// c2 rejoins within the grace window, the scheduled purge must not fire.
	d.Add("lobby", "c2")

	time.Sleep(200 * time.Millisecond)
	assert.True(t, d.RoomExists("lobby"))
	assert.Equal(t, 1, d.Count("lobby"))
}

func connIDsToStrings(ids []types.ConnID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
