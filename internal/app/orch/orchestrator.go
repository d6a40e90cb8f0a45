// Package orch runs one translation request end to end: prompt, provider
// stream, room rebroadcast, log commit.
package orch

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"honyaku/internal/core"
	"honyaku/internal/domain"
	"honyaku/internal/translate"
)

// ErrSlotBusy rejects a second concurrent request for a slot that already
// has a stream in flight. The caller surfaces it to the requester only.
var ErrSlotBusy = errors.New("translation already in progress")

// Emitter is the broadcast surface the orchestrator publishes to.
type Emitter interface {
	EmitRoom(room domain.RoomID, v any)
}

// Models maps quality tiers to provider model identifiers.
type Models struct {
	Quality string
	Speed   string
}

type busyKey struct {
	room domain.RoomID
	slot domain.SlotID
}

type Orchestrator struct {
	Registry   *core.Registry
	Emitter    Emitter
	Translator translate.Translator
	Models     Models

	mu   sync.Mutex
	busy map[busyKey]struct{}
}

func New(registry *core.Registry, emitter Emitter, translator translate.Translator, models Models) *Orchestrator {
	return &Orchestrator{
		Registry:   registry,
		Emitter:    emitter,
		Translator: translator,
		Models:     models,
		busy:       make(map[busyKey]struct{}),
	}
}

// Translate blocks until the stream completes or fails; callers run it in a
// goroutine. Provider failures never escape: they become a translate-error
// event for the room. The returned error covers only request-level
// rejections (unknown input, busy slot) for the adapter to relay to the
// sender.
func (o *Orchestrator) Translate(ctx context.Context, req domain.TranslateRequest) error {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return err
	}
	if !o.Registry.Has(req.Room) {
		log.Warn().Str("module", "orch").Str("room", string(req.Room)).Msg("translate for unknown room dropped")
		return nil
	}

	key := busyKey{room: req.Room, slot: req.SlotID}
	if !o.acquire(key) {
		return ErrSlotBusy
	}
	defer o.release(key)

	// Placeholder so the room sees activity before the first fragment.
	o.Emitter.EmitRoom(req.Room, newStreamEvent(req.SlotID, placeholderText))

	system := translate.BuildPrompt(req.Mode, req.TargetLang, req.Tier)
	model := o.model(req.Tier)

	stream, err := o.Translator.Stream(ctx, model, system, req.Text)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("room", string(req.Room)).Int("slot", int(req.SlotID)).Msg("open stream")
		o.Emitter.EmitRoom(req.Room, newTranslateErrorEvent(req.SlotID, "translation failed"))
		return nil
	}
	defer stream.Close()

	var buf string
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Error().Err(err).Str("module", "orch").Str("room", string(req.Room)).Int("slot", int(req.SlotID)).Msg("stream failed")
			o.Emitter.EmitRoom(req.Room, newTranslateErrorEvent(req.SlotID, "translation failed"))
			return nil
		}
		if frag == "" {
			continue
		}
		buf += frag
		// Cumulative: each emission carries the whole text so far.
		o.Emitter.EmitRoom(req.Room, newStreamEvent(req.SlotID, buf))
	}

	o.Emitter.EmitRoom(req.Room, newTranslatedEvent(req.SlotID, buf, req.Text))
	_ = o.Registry.AppendLog(req.Room, domain.LogEntry{
		SlotID: req.SlotID,
		Input:  req.Text,
		Result: buf,
		TS:     time.Now().UnixMilli(),
	})
	log.Info().Str("module", "orch").Str("room", string(req.Room)).Int("slot", int(req.SlotID)).Int("len", len(buf)).Msg("translation committed")
	return nil
}

func (o *Orchestrator) model(tier domain.QualityTier) string {
	if tier == domain.TierQuality {
		return o.Models.Quality
	}
	return o.Models.Speed
}

func (o *Orchestrator) acquire(key busyKey) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.busy[key]; ok {
		return false
	}
	o.busy[key] = struct{}{}
	return true
}

func (o *Orchestrator) release(key busyKey) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.busy, key)
}
