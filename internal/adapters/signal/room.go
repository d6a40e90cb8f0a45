package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"honyaku/internal/domain"
)

func (ctl *Controller) handleJoin(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	if !ctl.Registry.Has(room) {
		// Unknown or late room ids are dropped, never answered.
		return
	}

	if !ctl.Sessions.Join(sid, room) {
		// Already there; re-join must not bump the live count.
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("join")

	snap, err := ctl.Registry.Snapshot(room)
	if err != nil {
		return
	}
	ctl.sendJSON(conn, struct {
		Type  string                   `json:"type"`
		Users map[domain.SlotID]string `json:"users"`
	}{
		Type:  "init-users",
		Users: snap.Slots,
	})
	ctl.sendJSON(conn, struct {
		Type string            `json:"type"`
		Logs []domain.LogEntry `json:"logs"`
	}{
		Type: "existing-logs",
		Logs: snap.Log,
	})
	ctl.broadcastStats()
}

func (ctl *Controller) handleLeave(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type leavePayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	current, ok := ctl.Sessions.RoomOf(sid)
	if !ok || (p.Room != "" && domain.RoomID(p.Room) != current) {
		// Not in that room; treat as a late message and drop it.
		return
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(current)).Msg("leave")
	if _, left := ctl.Sessions.Leave(sid); left {
		ctl.sendJSON(conn, struct {
			Type string `json:"type"`
		}{Type: "left"})
		ctl.broadcastStats()
	}
}

// handleInput echoes live keystrokes to everyone else in the room.
// Debouncing happens client-side.
func (ctl *Controller) handleInput(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type inputPayload struct {
		Type   string        `json:"type"`
		Room   string        `json:"room"`
		SlotID domain.SlotID `json:"userId"`
		Text   string        `json:"text"`
	}
	var p inputPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad input payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	if !ctl.Registry.Has(room) {
		return
	}
	ctl.Sessions.EmitRoomExcept(room, sid, struct {
		Type   string        `json:"type"`
		SlotID domain.SlotID `json:"userId"`
		Text   string        `json:"text"`
	}{
		Type:   "sync-input",
		SlotID: p.SlotID,
		Text:   p.Text,
	})
}

func (ctl *Controller) handleClearLogs(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type clearPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p clearPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad clear payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	if err := ctl.Registry.ClearLog(room); err != nil {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Msg("logs cleared")
	ctl.Sessions.EmitRoom(room, struct {
		Type string `json:"type"`
	}{Type: "logs-cleared"})
}

func (ctl *Controller) broadcastStats() {
	ctl.Sessions.EmitAll(struct {
		Type  string                `json:"type"`
		Rooms map[domain.RoomID]int `json:"rooms"`
	}{
		Type:  "room-stats",
		Rooms: ctl.Registry.Stats(),
	})
}
