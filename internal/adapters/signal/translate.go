package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"honyaku/internal/app/orch"
	"honyaku/internal/domain"
)

func (ctl *Controller) handleTranslate(
	sid domain.SessionID,
	conn *WsConn,
	data []byte,
) {
	type translatePayload struct {
		Type       string        `json:"type"`
		Room       string        `json:"room"`
		SlotID     domain.SlotID `json:"userId"`
		Text       string        `json:"text"`
		InputLang  string        `json:"inputLang"`
		OutputLang string        `json:"outputLang"`
		Mode       string        `json:"mode"`
		Model      string        `json:"model"`
	}
	var p translatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad translate payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	room := domain.RoomID(p.Room)
	if !ctl.Registry.Has(room) {
		return
	}
	if !ctl.limiter.Allow(sid) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("translate rate limited")
		ctl.sendTranslateError(conn, p.SlotID, "too many requests, slow down")
		return
	}

	req := domain.TranslateRequest{
		Room:       room,
		SlotID:     p.SlotID,
		Text:       p.Text,
		SourceLang: p.InputLang,
		TargetLang: p.OutputLang,
		Mode:       domain.StyleMode(p.Mode),
		Tier:       domain.QualityTier(p.Model),
	}

	// The stream may outlive this connection; errors returned here are
	// request rejections for the sender only, broadcasts happen inside.
	go func() {
		err := ctl.Orch.Translate(ctl.base, req)
		switch {
		case err == nil:
		case errors.Is(err, orch.ErrSlotBusy):
			ctl.sendTranslateError(conn, p.SlotID, "translation already in progress")
		case errors.Is(err, domain.ErrEmptyText):
			ctl.sendError(conn, "empty text")
		default:
			ctl.sendError(conn, "bad_payload")
		}
	}()
}

func (ctl *Controller) sendTranslateError(conn *WsConn, slot domain.SlotID, msg string) {
	ctl.sendJSON(conn, struct {
		Type    string        `json:"type"`
		SlotID  domain.SlotID `json:"userId"`
		Message string        `json:"message"`
	}{
		Type:    "translate-error",
		SlotID:  slot,
		Message: msg,
	})
}
