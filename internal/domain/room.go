// Package domain contains entity without logic, just meta-data
package domain

import "errors"

type (
	RoomID    string
	SlotID    int
	SessionID string
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrMaxSlotsReached = errors.New("max slots reached")
	ErrMinSlotsReached = errors.New("min slots reached")
)

// LogEntry is one committed translation kept in a room's history.
// Immutable once created; evicted only by the log cap or an explicit clear.
type LogEntry struct {
	SlotID SlotID `json:"userId"`
	Input  string `json:"input"`
	Result string `json:"result"`
	TS     int64  `json:"ts"`
}

// RoomSnapshot is a read-only view for adapters (no lock, no live state).
type RoomSnapshot struct {
	ID    RoomID            `json:"room"`
	Slots map[SlotID]string `json:"users"`
	Log   []LogEntry        `json:"logs"`
}
