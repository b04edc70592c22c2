package services

import (
	"time"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MissionUpdate reports what a scan did to the player's assignment
type MissionUpdate struct {
	Action string                  `json:"action"` // accepted | completed | none
	Status models.AssignmentStatus `json:"status"`
}

type MissionService struct {
	DB *gorm.DB
}

func NewMissionService(db *gorm.DB) *MissionService {
	return &MissionService{DB: db}
}

// AdvanceAssignment drives the two-phase mission state machine for a successful
// scan of a mission-bound credential. Runs on the caller's transaction so the
// transition commits or rolls back with the rest of the redemption.
//
//   - no assignment row        → create in_progress ("accepted")
//   - in_progress              → succeeded, completed_at set ("completed")
//   - already terminal         → untouched ("none"); rewards are independent
func (s *MissionService) AdvanceAssignment(tx *gorm.DB, missionID, playerID string) (*MissionUpdate, error) {
	var assignment models.MissionAssignment
	err := tx.Where("mission_id = ? AND player_id = ?", missionID, playerID).First(&assignment).Error
	if err == gorm.ErrRecordNotFound {
		assignment = models.MissionAssignment{
			ID:        uuid.NewString(),
			MissionID: missionID,
			PlayerID:  playerID,
			Status:    models.AssignmentInProgress,
			StartedAt: time.Now(),
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return nil, err
		}
		return &MissionUpdate{Action: "accepted", Status: models.AssignmentInProgress}, nil
	}
	if err != nil {
		return nil, err
	}

	if assignment.Status == models.AssignmentInProgress {
		now := time.Now()
		if err := tx.Model(&models.MissionAssignment{}).
			Where("mission_id = ? AND player_id = ? AND status = ?", missionID, playerID, models.AssignmentInProgress).
			Updates(map[string]interface{}{
				"status":       models.AssignmentSucceeded,
				"completed_at": now,
			}).Error; err != nil {
			return nil, err
		}
		return &MissionUpdate{Action: "completed", Status: models.AssignmentSucceeded}, nil
	}

	// Terminal states never regress.
	return &MissionUpdate{Action: "none", Status: assignment.Status}, nil
}

// GetAssignment returns the player's assignment row for a mission, if any.
func (s *MissionService) GetAssignment(missionID, playerID string) (*models.MissionAssignment, error) {
	var assignment models.MissionAssignment
	err := s.DB.Where("mission_id = ? AND player_id = ?", missionID, playerID).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
