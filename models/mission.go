package models

import (
	"time"

	"gorm.io/gorm"
)

// Mission content is authored elsewhere (admin tools); the redemption engine
// only reads difficulty/kind and drives assignments.
type Mission struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Kind        string `gorm:"type:varchar(32)" json:"kind"`
	Difficulty  int    `gorm:"default:1" json:"difficulty"` // 1–5, scales scan rewards

	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// AssignmentStatus values; transitions only move forward.
type AssignmentStatus string

const (
	AssignmentInProgress AssignmentStatus = "in_progress"
	AssignmentSucceeded  AssignmentStatus = "succeeded"
	AssignmentFailed     AssignmentStatus = "failed"
)

// Terminal reports whether s permits no further transitions
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentSucceeded || s == AssignmentFailed
}

// MissionAssignment is the per-player progress row for a mission.
// The redemption engine is the sole writer for scan-triggered transitions.
type MissionAssignment struct {
	ID        string           `gorm:"primaryKey;type:uuid" json:"id"`
	MissionID string           `gorm:"type:uuid;not null;uniqueIndex:idx_mission_player" json:"mission_id"`
	PlayerID  string           `gorm:"type:uuid;not null;uniqueIndex:idx_mission_player" json:"player_id"`
	Status    AssignmentStatus `gorm:"type:varchar(16);not null" json:"status"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"` // set iff status is terminal

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
