package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honyaku/internal/domain"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry([]string{"room1", "room2", "room3"}, 3, 2, 5, 5)
}

func TestRegistry_DefaultSlots(t *testing.T) {
	r := setupRegistry(t)

	snap, err := r.Snapshot("room1")
	require.NoError(t, err)

	assert.Len(t, snap.Slots, 3)
	assert.Equal(t, "User1", snap.Slots[1])
	assert.Equal(t, "User3", snap.Slots[3])
	assert.Empty(t, snap.Log)
}

func TestRegistry_UnknownRoom(t *testing.T) {
	r := setupRegistry(t)

	assert.False(t, r.Has("room9"))

	_, err := r.Snapshot("room9")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.ErrorIs(t, r.IncrementLive("room9"), domain.ErrRoomNotFound)
	assert.ErrorIs(t, r.DecrementLive("room9"), domain.ErrRoomNotFound)
	_, err = r.AddSlot("room9")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = r.RemoveSlot("room9")
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.ErrorIs(t, r.AppendLog("room9", domain.LogEntry{}), domain.ErrRoomNotFound)
	assert.ErrorIs(t, r.ClearLog("room9"), domain.ErrRoomNotFound)
}

func TestRegistry_AddSlot_MaxBound(t *testing.T) {
	r := setupRegistry(t)

	s4, err := r.AddSlot("room1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotID(4), s4)

	s5, err := r.AddSlot("room1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotID(5), s5)

	_, err = r.AddSlot("room1")
	assert.ErrorIs(t, err, domain.ErrMaxSlotsReached)

	snap, _ := r.Snapshot("room1")
	assert.Len(t, snap.Slots, 5)
	assert.Equal(t, "User5", snap.Slots[5])
}

func TestRegistry_RemoveSlot_TakesHighest(t *testing.T) {
	r := setupRegistry(t)

	removed, err := r.RemoveSlot("room1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotID(3), removed)

	_, err = r.RemoveSlot("room1")
	assert.ErrorIs(t, err, domain.ErrMinSlotsReached)

	snap, _ := r.Snapshot("room1")
	assert.Len(t, snap.Slots, 2)
	_, ok := snap.Slots[3]
	assert.False(t, ok)
}

func TestRegistry_AddThenRemove_RestoresSlotSet(t *testing.T) {
	r := setupRegistry(t)

	before, _ := r.Snapshot("room1")
	_, err := r.AddSlot("room1")
	require.NoError(t, err)
	removed, err := r.RemoveSlot("room1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotID(4), removed)

	after, _ := r.Snapshot("room1")
	assert.Equal(t, before.Slots, after.Slots)
}

func TestRegistry_SlotBoundsHoldUnderChurn(t *testing.T) {
	r := setupRegistry(t)

	for i := 0; i < 20; i++ {
		_, _ = r.AddSlot("room2")
		if i%3 == 0 {
			_, _ = r.RemoveSlot("room2")
		}
	}
	for i := 0; i < 20; i++ {
		_, _ = r.RemoveSlot("room2")
	}

	snap, _ := r.Snapshot("room2")
	assert.GreaterOrEqual(t, len(snap.Slots), 2)
	assert.LessOrEqual(t, len(snap.Slots), 5)
}

func TestRegistry_RenameSlot(t *testing.T) {
	r := setupRegistry(t)

	require.NoError(t, r.RenameSlot("room1", 2, "Alice"))
	snap, _ := r.Snapshot("room1")
	assert.Equal(t, "Alice", snap.Slots[2])

	// Missing slot is a silent no-op, not an error.
	require.NoError(t, r.RenameSlot("room1", 42, "Ghost"))
	snap, _ = r.Snapshot("room1")
	_, ok := snap.Slots[42]
	assert.False(t, ok)
}

func TestRegistry_AppendLog_NewestFirstAndCapped(t *testing.T) {
	r := setupRegistry(t) // cap is 5

	for i := 1; i <= 6; i++ {
		err := r.AppendLog("room1", domain.LogEntry{
			SlotID: 1,
			Input:  fmt.Sprintf("in%d", i),
			Result: fmt.Sprintf("out%d", i),
		})
		require.NoError(t, err)
	}

	snap, _ := r.Snapshot("room1")
	require.Len(t, snap.Log, 5)
	assert.Equal(t, "in6", snap.Log[0].Input)
	assert.Equal(t, "in2", snap.Log[4].Input)
	for _, e := range snap.Log {
		assert.NotEqual(t, "in1", e.Input, "oldest entry must be evicted")
	}
}

func TestRegistry_ClearLog_IsRoomScoped(t *testing.T) {
	r := setupRegistry(t)

	require.NoError(t, r.AppendLog("room1", domain.LogEntry{Input: "a"}))
	require.NoError(t, r.AppendLog("room2", domain.LogEntry{Input: "b"}))

	require.NoError(t, r.ClearLog("room1"))

	snap1, _ := r.Snapshot("room1")
	snap2, _ := r.Snapshot("room2")
	assert.Empty(t, snap1.Log)
	assert.Len(t, snap2.Log, 1)
}

func TestRegistry_LiveCount_ClearsLogOnEmpty(t *testing.T) {
	r := setupRegistry(t)

	require.NoError(t, r.IncrementLive("room1"))
	require.NoError(t, r.AppendLog("room1", domain.LogEntry{Input: "a"}))

	require.NoError(t, r.DecrementLive("room1"))

	// Live count hit zero, so the next join sees an empty log.
	snap, _ := r.Snapshot("room1")
	assert.Empty(t, snap.Log)
	assert.Equal(t, 0, r.Stats()["room1"])
}

func TestRegistry_LiveCount_KeepsLogWhileOccupied(t *testing.T) {
	r := setupRegistry(t)

	require.NoError(t, r.IncrementLive("room1"))
	require.NoError(t, r.IncrementLive("room1"))
	require.NoError(t, r.AppendLog("room1", domain.LogEntry{Input: "a"}))

	require.NoError(t, r.DecrementLive("room1"))

	snap, _ := r.Snapshot("room1")
	assert.Len(t, snap.Log, 1)
	assert.Equal(t, 1, r.Stats()["room1"])
}

func TestRegistry_DecrementLive_FloorsAtZero(t *testing.T) {
	r := setupRegistry(t)

	require.NoError(t, r.DecrementLive("room1"))
	require.NoError(t, r.DecrementLive("room1"))
	assert.Equal(t, 0, r.Stats()["room1"])
}

func TestRegistry_SnapshotIsACopy(t *testing.T) {
	r := setupRegistry(t)
	require.NoError(t, r.AppendLog("room1", domain.LogEntry{Input: "a"}))

	snap, _ := r.Snapshot("room1")
	snap.Slots[1] = "Mutated"
	snap.Log[0].Input = "mutated"

	fresh, _ := r.Snapshot("room1")
	assert.Equal(t, "User1", fresh.Slots[1])
	assert.Equal(t, "a", fresh.Log[0].Input)
}
