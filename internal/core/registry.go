package core

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"honyaku/internal/domain"
)

// roomState is the mutable state behind one room id. Slots are independent
// of the live connection count; the log is newest-first and capped.
type roomState struct {
	slots map[domain.SlotID]string
	log   []domain.LogEntry
	live  int
}

// Registry is the authoritative owner of all room state. Rooms are created
// once at construction and never destroyed. Every operation is atomic under
// the registry mutex; slot add/remove and log append are multi-step and must
// appear atomic to observers.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomState

	minSlots int
	maxSlots int
	logCap   int
}

func NewRegistry(roomIDs []string, defaultSlots, minSlots, maxSlots, logCap int) *Registry {
	r := &Registry{
		rooms:    make(map[domain.RoomID]*roomState, len(roomIDs)),
		minSlots: minSlots,
		maxSlots: maxSlots,
		logCap:   logCap,
	}
	for _, id := range roomIDs {
		st := &roomState{slots: make(map[domain.SlotID]string, defaultSlots)}
		for i := 1; i <= defaultSlots; i++ {
			st.slots[domain.SlotID(i)] = defaultName(domain.SlotID(i))
		}
		r.rooms[domain.RoomID(id)] = st
	}
	log.Info().Str("module", "core.registry").Int("rooms", len(roomIDs)).Msg("registry created")
	return r
}

func defaultName(id domain.SlotID) string {
	return fmt.Sprintf("User%d", id)
}

func (r *Registry) Has(id domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[id]
	return ok
}

// Snapshot returns deep copies so callers can hold the result without locks.
func (r *Registry) Snapshot(id domain.RoomID) (domain.RoomSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.RoomSnapshot{}, domain.ErrRoomNotFound
	}
	slots := make(map[domain.SlotID]string, len(st.slots))
	for sid, name := range st.slots {
		slots[sid] = name
	}
	logCopy := make([]domain.LogEntry, len(st.log))
	copy(logCopy, st.log)
	return domain.RoomSnapshot{ID: id, Slots: slots, Log: logCopy}, nil
}

func (r *Registry) IncrementLive(id domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	st.live++
	return nil
}

// DecrementLive floors at zero. When the room empties its log is cleared, so
// the next join starts from blank history.
func (r *Registry) DecrementLive(id domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if st.live > 0 {
		st.live--
	}
	if st.live == 0 && len(st.log) > 0 {
		st.log = nil
		log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room empty, log cleared")
	}
	return nil
}

// AddSlot appends a new highest-numbered slot with a default name.
func (r *Registry) AddSlot(id domain.RoomID) (domain.SlotID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return 0, domain.ErrRoomNotFound
	}
	if len(st.slots) >= r.maxSlots {
		return 0, domain.ErrMaxSlotsReached
	}
	next := domain.SlotID(0)
	for sid := range st.slots {
		if sid > next {
			next = sid
		}
	}
	next++
	st.slots[next] = defaultName(next)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Int("slot", int(next)).Msg("slot added")
	return next, nil
}

// RemoveSlot always evicts the highest-numbered slot, never a specific one.
func (r *Registry) RemoveSlot(id domain.RoomID) (domain.SlotID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return 0, domain.ErrRoomNotFound
	}
	if len(st.slots) <= r.minSlots {
		return 0, domain.ErrMinSlotsReached
	}
	top := domain.SlotID(0)
	for sid := range st.slots {
		if sid > top {
			top = sid
		}
	}
	delete(st.slots, top)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Int("slot", int(top)).Msg("slot removed")
	return top, nil
}

// RenameSlot overwrites unconditionally; a missing slot is a no-op, not an
// error.
func (r *Registry) RenameSlot(id domain.RoomID, slot domain.SlotID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if _, ok := st.slots[slot]; !ok {
		return nil
	}
	st.slots[slot] = name
	return nil
}

// AppendLog prepends the entry, keeping newest-first order, then truncates
// from the tail down to the cap.
func (r *Registry) AppendLog(id domain.RoomID, entry domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	st.log = append([]domain.LogEntry{entry}, st.log...)
	if len(st.log) > r.logCap {
		st.log = st.log[:r.logCap]
	}
	return nil
}

func (r *Registry) ClearLog(id domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}
	st.log = nil
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("log cleared")
	return nil
}

// Stats reports the live connection count per room.
func (r *Registry) Stats() map[domain.RoomID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[domain.RoomID]int, len(r.rooms))
	for id, st := range r.rooms {
		out[id] = st.live
	}
	return out
}
