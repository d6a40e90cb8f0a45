package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"honyaku/internal/core"
	"honyaku/internal/domain"
)

type sessionEntry struct {
	Room domain.RoomID
	Conn core.SignalConnection
}

// Sessions binds live connections to at most one room each and fans events
// out to them. Room state itself lives in the core registry; Sessions only
// tracks membership.
type Sessions struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*sessionEntry

	registry *core.Registry
}

func NewSessions(registry *core.Registry) *Sessions {
	return &Sessions{
		sessions: make(map[domain.SessionID]*sessionEntry),
		registry: registry,
	}
}

// Bind registers a freshly connected session with no room.
func (s *Sessions) Bind(sid domain.SessionID, conn core.SignalConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = &sessionEntry{Conn: conn}
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Msg("bound session")
}

// Join moves the session into room. Joining the current room is a no-op.
// A previous room is left first, with its live-count side effects. Returns
// true when membership actually changed.
func (s *Sessions) Join(sid domain.SessionID, room domain.RoomID) bool {
	if !s.registry.Has(room) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sid]
	if !ok {
		return false
	}
	if entry.Room == room {
		return false
	}
	if entry.Room != "" {
		_ = s.registry.DecrementLive(entry.Room)
	}
	entry.Room = room
	_ = s.registry.IncrementLive(room)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(room)).Msg("joined room")
	return true
}

// Leave drops the session's room membership, if any.
func (s *Sessions) Leave(sid domain.SessionID) (domain.RoomID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sid]
	if !ok || entry.Room == "" {
		return "", false
	}
	room := entry.Room
	entry.Room = ""
	_ = s.registry.DecrementLive(room)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
	return room, true
}

// Disconnect is terminal: leave the current room and forget the session.
func (s *Sessions) Disconnect(sid domain.SessionID) (domain.RoomID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sid]
	if !ok {
		return "", false
	}
	delete(s.sessions, sid)
	if entry.Room == "" {
		return "", false
	}
	_ = s.registry.DecrementLive(entry.Room)
	log.Info().Str("module", "app.sessions").Str("sid", string(sid)).Str("room", string(entry.Room)).Msg("disconnected")
	return entry.Room, true
}

func (s *Sessions) RoomOf(sid domain.SessionID) (domain.RoomID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[sid]
	if !ok || entry.Room == "" {
		return "", false
	}
	return entry.Room, true
}

// EmitRoom delivers an event to every session joined to room. Slow consumers
// get the frame dropped, never block emission.
func (s *Sessions) EmitRoom(room domain.RoomID, v any) {
	s.emit(room, "", v)
}

// EmitRoomExcept is EmitRoom minus one sender, used for input echo.
func (s *Sessions) EmitRoomExcept(room domain.RoomID, except domain.SessionID, v any) {
	s.emit(room, except, v)
}

// EmitAll delivers an event to every connected session regardless of room.
func (s *Sessions) EmitAll(v any) {
	frame, err := marshalFrame(v)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.sessions {
		_ = entry.Conn.TrySend(frame)
	}
}

func (s *Sessions) emit(room domain.RoomID, except domain.SessionID, v any) {
	frame, err := marshalFrame(v)
	if err != nil {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	dropped := 0
	for sid, entry := range s.sessions {
		if entry.Room != room || sid == except {
			continue
		}
		if err := entry.Conn.TrySend(frame); err != nil {
			dropped++
		}
	}
	if dropped > 0 {
		log.Debug().Str("module", "app.sessions").Str("room", string(room)).Int("dropped", dropped).Msg("slow consumers dropped frame")
	}
}

func marshalFrame(v any) (core.Frame, error) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.sessions").Msg("marshal event")
		return nil, err
	}
	return core.Frame(b), nil
}
