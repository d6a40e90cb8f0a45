package orch

import "honyaku/internal/domain"

// Outbound events carry a fixed field set per type so subscribers never
// destructure loosely shaped payloads.

const placeholderText = "translating…"

type StreamEvent struct {
	Type   string        `json:"type"`
	SlotID domain.SlotID `json:"userId"`
	Text   string        `json:"text"`
}

func newStreamEvent(slot domain.SlotID, text string) StreamEvent {
	return StreamEvent{Type: "stream", SlotID: slot, Text: text}
}

type TranslatedEvent struct {
	Type      string        `json:"type"`
	SlotID    domain.SlotID `json:"userId"`
	Text      string        `json:"text"`
	InputText string        `json:"inputText"`
}

func newTranslatedEvent(slot domain.SlotID, text, input string) TranslatedEvent {
	return TranslatedEvent{Type: "translated", SlotID: slot, Text: text, InputText: input}
}

type TranslateErrorEvent struct {
	Type    string        `json:"type"`
	SlotID  domain.SlotID `json:"userId"`
	Message string        `json:"message"`
}

func newTranslateErrorEvent(slot domain.SlotID, msg string) TranslateErrorEvent {
	return TranslateErrorEvent{Type: "translate-error", SlotID: slot, Message: msg}
}
