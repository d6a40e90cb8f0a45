package domain

import "errors"

const MaxInputLen = 4000

var ErrEmptyText = errors.New("empty text")

// StyleMode selects the tone the translation should carry.
type StyleMode string

const (
	StyleLiteral StyleMode = "literal"
	StyleNatural StyleMode = "natural"
	StyleCasual  StyleMode = "casual"
)

// QualityTier selects which provider model handles the request.
type QualityTier string

const (
	TierQuality QualityTier = "quality"
	TierSpeed   QualityTier = "speed"
)

// TranslateRequest is transient: it exists only for the duration of one
// orchestration call and has no identity beyond it.
type TranslateRequest struct {
	Room       RoomID
	SlotID     SlotID
	Text       string
	SourceLang string
	TargetLang string
	Mode       StyleMode
	Tier       QualityTier
}

// Normalize clamps unknown labels to the lenient defaults instead of
// rejecting them, so stale clients keep working.
func (r *TranslateRequest) Normalize() {
	switch r.Mode {
	case StyleLiteral, StyleNatural, StyleCasual:
	default:
		r.Mode = StyleNatural
	}
	switch r.Tier {
	case TierQuality, TierSpeed:
	default:
		r.Tier = TierSpeed
	}
	if r.TargetLang == "" {
		r.TargetLang = "Japanese"
	}
}

func (r *TranslateRequest) Validate() error {
	if r.Text == "" {
		return ErrEmptyText
	}
	if len(r.Text) > MaxInputLen {
		r.Text = r.Text[:MaxInputLen]
	}
	return nil
}
