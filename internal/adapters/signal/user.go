package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"honyaku/internal/domain"
)

// Slot changes are silent when they hit the configured bounds: the room
// simply sees no users-updated broadcast.

func (ctl *Controller) handleAddUser(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type addPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p addPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad add-user payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	slot, err := ctl.Registry.AddSlot(room)
	if err != nil {
		if errors.Is(err, domain.ErrMaxSlotsReached) {
			log.Warn().Str("module", "signal").Str("room", p.Room).Msg("add-user at max slots")
		}
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Int("slot", int(slot)).Msg("slot added")
	ctl.broadcastUsers(room)
}

func (ctl *Controller) handleRemoveUser(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type removePayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
	}
	var p removePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad remove-user payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	slot, err := ctl.Registry.RemoveSlot(room)
	if err != nil {
		if errors.Is(err, domain.ErrMinSlotsReached) {
			log.Warn().Str("module", "signal").Str("room", p.Room).Msg("remove-user at min slots")
		}
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Int("slot", int(slot)).Msg("slot removed")
	ctl.broadcastUsers(room)
}

func (ctl *Controller) handleRenameUser(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type renamePayload struct {
		Type   string        `json:"type"`
		Room   string        `json:"room"`
		SlotID domain.SlotID `json:"userId"`
		Name   string        `json:"name"`
	}
	var p renamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad rename payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.Name == "" {
		ctl.sendError(conn, "empty name")
		return
	}
	if len(p.Name) > 36 {
		p.Name = p.Name[:36]
	}
	room := domain.RoomID(p.Room)
	if err := ctl.Registry.RenameSlot(room, p.SlotID, p.Name); err != nil {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", p.Room).Int("slot", int(p.SlotID)).Str("name", p.Name).Msg("slot renamed")
	ctl.broadcastUsers(room)
}

func (ctl *Controller) broadcastUsers(room domain.RoomID) {
	snap, err := ctl.Registry.Snapshot(room)
	if err != nil {
		return
	}
	ctl.Sessions.EmitRoom(room, struct {
		Type  string                   `json:"type"`
		Users map[domain.SlotID]string `json:"users"`
	}{
		Type:  "users-updated",
		Users: snap.Slots,
	})
}
