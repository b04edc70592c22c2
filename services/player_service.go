package services

import (
	"spynet-qr-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PlayerService struct {
	DB *gorm.DB
}

func NewPlayerService(db *gorm.DB) *PlayerService {
	return &PlayerService{DB: db}
}

// EnsureProfile guarantees a PlayerProfile row exists for the external player
// id (idempotent). The sync worker usually creates these first; scans from
// players who haven't synced yet still need a balance row to credit.
// Insert-on-conflict so two first-ever scans racing each other both succeed.
func (s *PlayerService) EnsureProfile(externalPlayerID string) (*models.PlayerProfile, error) {
	prof := models.PlayerProfile{
		ID:               uuid.NewString(),
		ExternalPlayerID: externalPlayerID,
		Handle:           externalPlayerID,
	}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "external_player_id"}},
		DoNothing: true,
	}).Create(&prof).Error; err != nil {
		return nil, err
	}

	var existing models.PlayerProfile
	if err := s.DB.Where("external_player_id = ?", externalPlayerID).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// GrantRewards credits a scan's reward tuple to the player balance on the
// caller's transaction. In-place SQL arithmetic, never read-modify-write.
func (s *PlayerService) GrantRewards(tx *gorm.DB, externalPlayerID string, rewards ScanRewards) error {
	res := tx.Model(&models.PlayerProfile{}).
		Where("external_player_id = ?", externalPlayerID).
		Updates(map[string]interface{}{
			"xp":      gorm.Expr("xp + ?", rewards.XP),
			"credits": gorm.Expr("credits + ?", rewards.Credits),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PlayerSummary aggregates profile, balance, mission and scan stats for display
type PlayerSummary struct {
	Profile           *models.PlayerProfile `json:"profile"`
	MissionsCompleted int64                 `json:"missions_completed"`
	MissionsFailed    int64                 `json:"missions_failed"`
	MissionsActive    int64                 `json:"missions_active"`
	TotalScans        int64                 `json:"total_scans"`
	XPFromScans       int64                 `json:"xp_from_scans"`
	CreditsFromScans  int64                 `json:"credits_from_scans"`
}

// GetSummary builds the player dashboard payload. Read-only.
func (s *PlayerService) GetSummary(externalPlayerID string) (*PlayerSummary, error) {
	prof, err := s.EnsureProfile(externalPlayerID)
	if err != nil {
		return nil, err
	}

	summary := &PlayerSummary{Profile: prof}

	countByStatus := func(status models.AssignmentStatus) (int64, error) {
		var n int64
		err := s.DB.Model(&models.MissionAssignment{}).
			Where("player_id = ? AND status = ?", externalPlayerID, status).
			Count(&n).Error
		return n, err
	}
	if summary.MissionsCompleted, err = countByStatus(models.AssignmentSucceeded); err != nil {
		return nil, err
	}
	if summary.MissionsFailed, err = countByStatus(models.AssignmentFailed); err != nil {
		return nil, err
	}
	if summary.MissionsActive, err = countByStatus(models.AssignmentInProgress); err != nil {
		return nil, err
	}

	type scanTotals struct {
		TotalScans int64
		XPSum      int64
		CreditsSum int64
	}
	var totals scanTotals
	if err := s.DB.Model(&models.RedemptionRecord{}).
		Select("COUNT(*) as total_scans, COALESCE(SUM(reward_xp), 0) as xp_sum, COALESCE(SUM(reward_credits), 0) as credits_sum").
		Where("player_id = ? AND outcome = ?", externalPlayerID, models.RedemptionOutcomeSuccess).
		Scan(&totals).Error; err != nil {
		return nil, err
	}
	summary.TotalScans = totals.TotalScans
	summary.XPFromScans = totals.XPSum
	summary.CreditsFromScans = totals.CreditsSum

	return summary, nil
}
