package models

import "time"

// RedemptionOutcome labels a scan attempt in the audit trail
type RedemptionOutcome string

const (
	RedemptionOutcomeSuccess RedemptionOutcome = "success"

	RedemptionOutcomeInvalidToken RedemptionOutcome = "rejected:invalid_token"
	RedemptionOutcomeExpired      RedemptionOutcome = "rejected:expired"
	RedemptionOutcomeNotFound     RedemptionOutcome = "rejected:not_found"
	RedemptionOutcomeInactive     RedemptionOutcome = "rejected:inactive"
	RedemptionOutcomeTooFar       RedemptionOutcome = "rejected:too_far"
	RedemptionOutcomeLimitReached RedemptionOutcome = "rejected:limit_reached"
	RedemptionOutcomeFailed       RedemptionOutcome = "rejected:internal"
)

// RedemptionRecord is the append-only scan audit trail. One row per attempt,
// success or rejection — this is the anti-abuse evidence and must never be skipped.
type RedemptionRecord struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	CredentialID *string `gorm:"type:uuid;index" json:"credential_id,omitempty"` // nil when the token never resolved to a credential
	PlayerID     string  `gorm:"type:uuid;not null;index" json:"player_id"`
	MissionID    *string `gorm:"type:uuid" json:"mission_id,omitempty"`

	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	WifiHash string `gorm:"size:128" json:"wifi_hash,omitempty"` // client fingerprint, optional

	Outcome       RedemptionOutcome `gorm:"type:varchar(32);not null;index" json:"outcome"`
	RewardXP      int64             `json:"reward_xp"`
	RewardCredits int64             `json:"reward_credits"`

	ScannedAt time.Time `gorm:"autoCreateTime;index" json:"scanned_at"`
}
