package models

import "time"

// GameEvent is the append-only game event stream (qr.generated, qr.scanned, ...).
// Payload is a pre-marshalled JSON blob; events are best-effort and never
// block the request that emits them.
type GameEvent struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	EventType string  `gorm:"type:varchar(64);not null;index" json:"event_type"`
	PlayerID  *string `gorm:"type:uuid;index" json:"player_id,omitempty"`
	ZoneID    *string `gorm:"type:uuid" json:"zone_id,omitempty"`
	FactionID *string `gorm:"type:uuid" json:"faction_id,omitempty"`
	Payload   string  `gorm:"type:jsonb" json:"payload"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
