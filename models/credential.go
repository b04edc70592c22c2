package models

import (
	"time"

	"gorm.io/gorm"
)

// CredentialType is the closed set of QR credential kinds
type CredentialType string

const (
	CredentialTypeMission CredentialType = "mission"
	CredentialTypeItem    CredentialType = "item"
	CredentialTypeIntel   CredentialType = "intel"
	CredentialTypeFaction CredentialType = "faction"
)

// ValidCredentialType reports whether t is one of the supported kinds
func ValidCredentialType(t CredentialType) bool {
	switch t {
	case CredentialTypeMission, CredentialTypeItem, CredentialTypeIntel, CredentialTypeFaction:
		return true
	}
	return false
}

// CredentialMetadata carries the known operational fields plus an opaque
// extension map for campaign-specific extras. Stored as a single JSON column.
type CredentialMetadata struct {
	Label    string            `json:"label,omitempty"`
	Campaign string            `json:"campaign,omitempty"`
	DropHint string            `json:"drop_hint,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Credential is a minted, signed, scannable QR credential.
// Never hard-deleted — deactivation keeps the audit trail intact.
type Credential struct {
	ID        string         `gorm:"primaryKey;type:uuid" json:"id"`
	Code      string         `gorm:"uniqueIndex;size:12;not null" json:"code"`
	SignedJWT string         `gorm:"type:text;not null" json:"-"`
	Type      CredentialType `gorm:"type:varchar(16);not null;index" json:"qr_type"`
	MissionID *string        `gorm:"type:uuid;index" json:"mission_id,omitempty"`
	ZoneID    *string        `gorm:"type:uuid;index" json:"zone_id,omitempty"`

	// Optional geofence anchor. A credential without an anchor is scannable anywhere.
	AnchorLat *float64 `json:"anchor_lat,omitempty"`
	AnchorLon *float64 `json:"anchor_lon,omitempty"`

	// MaxScans nil = unlimited. ScanCount only ever moves through TryRedeem.
	MaxScans  *int `json:"max_scans,omitempty"`
	ScanCount int  `gorm:"not null;default:0" json:"scan_count"`

	Active    bool       `gorm:"not null;default:true;index" json:"active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	CreatorPlayerID string             `gorm:"type:uuid;not null;index" json:"creator_player_id"`
	Metadata        CredentialMetadata `gorm:"serializer:json" json:"metadata"`

	Mission *Mission `gorm:"foreignKey:MissionID" json:"mission,omitempty"`

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
