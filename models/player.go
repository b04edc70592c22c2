package models

import (
	"time"

	"gorm.io/gorm"
)

// ProfileFields are the known player profile attributes synced from the
// account service, plus an opaque extension map for anything it adds later.
type ProfileFields struct {
	Callsign  string            `json:"callsign,omitempty"`
	Motto     string            `json:"motto,omitempty"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// PlayerProfile is a local snapshot of account-service players plus the
// reward balance owned by this service. The sync worker maintains the
// identity columns; XP and Credits are credited only by redemption commits.
type PlayerProfile struct {
	ID               string  `gorm:"primaryKey;type:uuid" json:"id"`
	ExternalPlayerID string  `gorm:"uniqueIndex;not null" json:"external_player_id"`
	Handle           string  `gorm:"index;not null" json:"handle"`
	FactionID        *string `gorm:"type:uuid" json:"faction_id,omitempty"`

	// Reward balance, owned by the redemption engine.
	XP      int64 `gorm:"not null;default:0" json:"xp"`
	Credits int64 `gorm:"not null;default:0" json:"credits"`

	Profile ProfileFields `gorm:"serializer:json" json:"profile"`

	LastSeen  *time.Time     `json:"last_seen,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
