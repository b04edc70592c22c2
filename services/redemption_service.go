package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scan rejection codes, surfaced verbatim in the error payload
const (
	ScanErrInvalidToken     = "INVALID_TOKEN"
	ScanErrExpired          = "EXPIRED"
	ScanErrNotFound         = "NOT_FOUND"
	ScanErrInactive         = "INACTIVE"
	ScanErrTooFar           = "TOO_FAR"
	ScanErrLimitReached     = "LIMIT_REACHED"
	ScanErrRedemptionFailed = "REDEMPTION_FAILED"
)

// ScanError is the structured rejection returned to the client. Distance is
// rounded to whole meters — close enough to explain, too coarse to brute-force
// the geofence boundary.
type ScanError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Distance int    `json:"distance,omitempty"`
	Status   int    `json:"-"`
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ScanInput is the redemption request payload
type ScanInput struct {
	JWT      string    `json:"jwt"`
	Location *GeoPoint `json:"location"`
	WifiHash string    `json:"wifi_hash,omitempty"`
}

// ScanNarrative is the flavor text returned with a successful scan
type ScanNarrative struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Rewards string `json:"rewards"`
}

// ScanResult is the success payload for a redemption
type ScanResult struct {
	ScanID    string                `json:"scan_id"`
	ScannedAt time.Time             `json:"scanned_at"`
	Code      string                `json:"code"`
	Type      models.CredentialType `json:"qr_type"`
	Mission   *models.Mission       `json:"mission_detail,omitempty"`
	Rewards   ScanRewards           `json:"rewards"`
	Update    *MissionUpdate        `json:"mission"`
	Narrative ScanNarrative         `json:"narrative"`
}

// RedemptionService orchestrates a scan: token verification, credential load,
// validation gates, then one transaction for the scan-count increment, reward
// grant, mission transition and audit record. Every attempt — success or
// rejection — writes exactly one RedemptionRecord.
type RedemptionService struct {
	DB          *gorm.DB
	Signer      *TokenSigner
	Credentials *CredentialService
	Missions    *MissionService
	Players     *PlayerService
	Events      *EventService
}

func NewRedemptionService(db *gorm.DB, signer *TokenSigner, creds *CredentialService, missions *MissionService, players *PlayerService, events *EventService) *RedemptionService {
	return &RedemptionService{
		DB:          db,
		Signer:      signer,
		Credentials: creds,
		Missions:    missions,
		Players:     players,
		Events:      events,
	}
}

// Redeem runs the full scan pipeline for an authenticated player.
func (s *RedemptionService) Redeem(playerID string, in ScanInput) (*ScanResult, *ScanError) {
	// The handler rejects missing locations; a zero value here keeps the audit
	// row honest and lets the geofence gate reject anchored credentials.
	var loc GeoPoint
	if in.Location != nil {
		loc = *in.Location
	}

	// Gate 1: token authenticity, strictly before any DB lookup. Forged
	// tokens never get to probe which codes exist.
	claims, err := s.Signer.Verify(in.JWT)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			s.recordRejection(nil, nil, playerID, loc, in.WifiHash, models.RedemptionOutcomeExpired)
			return nil, &ScanError{Code: ScanErrExpired, Message: "QR code has expired", Status: http.StatusBadRequest}
		}
		s.recordRejection(nil, nil, playerID, loc, in.WifiHash, models.RedemptionOutcomeInvalidToken)
		return nil, &ScanError{Code: ScanErrInvalidToken, Message: "QR code is invalid", Status: http.StatusBadRequest}
	}

	// Gate 2: the durable record behind the code.
	cred, err := s.Credentials.GetByCode(claims.Code)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			s.recordRejection(nil, nil, playerID, loc, in.WifiHash, models.RedemptionOutcomeNotFound)
			return nil, &ScanError{Code: ScanErrNotFound, Message: "QR code not found", Status: http.StatusNotFound}
		}
		log.Printf("❌ [SCAN] Credential load failed for code %s: %v", claims.Code, err)
		s.recordRejection(nil, nil, playerID, loc, in.WifiHash, models.RedemptionOutcomeFailed)
		return nil, &ScanError{Code: ScanErrRedemptionFailed, Message: "Scan failed, try again", Status: http.StatusInternalServerError}
	}

	// Gate 3: record-level expiry before the active flag, so a credential the
	// sweeper already deactivated for staleness still reports EXPIRED. Records
	// can expire or be deactivated independently of their tokens.
	if cred.ExpiresAt != nil && cred.ExpiresAt.Before(time.Now()) {
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeExpired)
		return nil, &ScanError{Code: ScanErrExpired, Message: "QR code has expired", Status: http.StatusBadRequest}
	}
	if !cred.Active {
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeInactive)
		return nil, &ScanError{Code: ScanErrInactive, Message: "QR code is no longer active", Status: http.StatusBadRequest}
	}

	// Gate 4: geofence. No anchor means scannable anywhere.
	if cred.AnchorLat != nil && cred.AnchorLon != nil {
		ok, distance := WithinRange(*cred.AnchorLat, *cred.AnchorLon, loc.Lat, loc.Lon, GeofenceRadiusMeters)
		if !ok {
			s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeTooFar)
			return nil, &ScanError{
				Code:     ScanErrTooFar,
				Message:  fmt.Sprintf("You must be within %.0fm of the QR code location", GeofenceRadiusMeters),
				Distance: int(math.Round(distance)),
				Status:   http.StatusBadRequest,
			}
		}
	}

	// Cheap pre-check; the conditional update inside the transaction is the
	// authority under concurrency.
	if cred.MaxScans != nil && cred.ScanCount >= *cred.MaxScans {
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeLimitReached)
		return nil, &ScanError{Code: ScanErrLimitReached, Message: "QR code has reached maximum scans", Status: http.StatusBadRequest}
	}

	difficulty := 0
	if cred.Mission != nil {
		difficulty = cred.Mission.Difficulty
	}
	rewards := CalculateRewards(cred.Type, difficulty)

	// The balance row must exist before the transaction credits it.
	if _, err := s.Players.EnsureProfile(playerID); err != nil {
		log.Printf("❌ [SCAN] Failed to ensure profile for %s: %v", playerID, err)
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeFailed)
		return nil, &ScanError{Code: ScanErrRedemptionFailed, Message: "Scan failed, try again", Status: http.StatusInternalServerError}
	}

	// One atomic unit: counter increment, reward credit, mission transition,
	// success audit record. All land or none do.
	record := models.RedemptionRecord{
		ID:            uuid.NewString(),
		CredentialID:  &cred.ID,
		PlayerID:      playerID,
		MissionID:     cred.MissionID,
		Lat:           loc.Lat,
		Lon:           loc.Lon,
		WifiHash:      in.WifiHash,
		Outcome:       models.RedemptionOutcomeSuccess,
		RewardXP:      rewards.XP,
		RewardCredits: rewards.Credits,
	}
	var update *MissionUpdate
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Credentials.TryRedeem(tx, cred.ID); err != nil {
			return err
		}
		if err := s.Players.GrantRewards(tx, playerID, rewards); err != nil {
			return err
		}
		if cred.MissionID != nil {
			var err error
			update, err = s.Missions.AdvanceAssignment(tx, *cred.MissionID, playerID)
			if err != nil {
				return err
			}
		}
		return tx.Create(&record).Error
	})
	if txErr != nil {
		if errors.Is(txErr, ErrScanConflict) {
			// A precondition gave way between the gates and the increment; the
			// counter was not consumed. Re-read to report which one.
			return nil, s.conflictError(cred, playerID, loc, in.WifiHash)
		}
		log.Printf("❌ [SCAN] Redemption transaction failed for %s: %v", cred.Code, txErr)
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, in.WifiHash, models.RedemptionOutcomeFailed)
		return nil, &ScanError{Code: ScanErrRedemptionFailed, Message: "Scan failed, try again", Status: http.StatusInternalServerError}
	}

	s.Events.Log("qr.scanned", map[string]interface{}{
		"qr_id":   cred.ID,
		"scan_id": record.ID,
		"code":    cred.Code,
		"xp":      rewards.XP,
		"credits": rewards.Credits,
	}, EventActor{PlayerID: &playerID, ZoneID: cred.ZoneID})

	return &ScanResult{
		ScanID:    record.ID,
		ScannedAt: record.ScannedAt,
		Code:      cred.Code,
		Type:      cred.Type,
		Mission:   cred.Mission,
		Rewards:   rewards,
		Update:    update,
		Narrative: narrativeFor(cred.Type, rewards),
	}, nil
}

// conflictError classifies a scan-count conflict: the credential expired, was
// deactivated, or hit its limit while the scan was in flight. Expiry is
// checked first so an expired credential always rejects as EXPIRED.
func (s *RedemptionService) conflictError(cred *models.Credential, playerID string, loc GeoPoint, wifiHash string) *ScanError {
	var fresh models.Credential
	if err := s.DB.First(&fresh, "id = ?", cred.ID).Error; err != nil {
		log.Printf("❌ [SCAN] Conflict re-read failed for %s: %v", cred.Code, err)
		fresh = *cred
	}
	switch {
	case fresh.ExpiresAt != nil && fresh.ExpiresAt.Before(time.Now()):
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, wifiHash, models.RedemptionOutcomeExpired)
		return &ScanError{Code: ScanErrExpired, Message: "QR code has expired", Status: http.StatusBadRequest}
	case !fresh.Active:
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, wifiHash, models.RedemptionOutcomeInactive)
		return &ScanError{Code: ScanErrInactive, Message: "QR code is no longer active", Status: http.StatusBadRequest}
	default:
		s.recordRejection(&cred.ID, cred.MissionID, playerID, loc, wifiHash, models.RedemptionOutcomeLimitReached)
		return &ScanError{Code: ScanErrLimitReached, Message: "QR code has reached maximum scans", Status: http.StatusBadRequest}
	}
}

// recordRejection appends the audit row for a failed attempt. Losing this
// record is the one thing this service must never do quietly — it is the sole
// abuse-detection signal.
func (s *RedemptionService) recordRejection(credentialID, missionID *string, playerID string, loc GeoPoint, wifiHash string, outcome models.RedemptionOutcome) {
	record := models.RedemptionRecord{
		ID:           uuid.NewString(),
		CredentialID: credentialID,
		PlayerID:     playerID,
		MissionID:    missionID,
		Lat:          loc.Lat,
		Lon:          loc.Lon,
		WifiHash:     wifiHash,
		Outcome:      outcome,
	}
	if err := s.DB.Create(&record).Error; err != nil {
		log.Printf("🚨 [SCAN] FATAL: failed to write audit record (outcome=%s player=%s): %v", outcome, playerID, err)
	}
}

var narratives = map[models.CredentialType]string{
	models.CredentialTypeMission: "Dead drop retrieved. Mission parameters downloaded to your device.",
	models.CredentialTypeIntel:   "Classified intel acquired. Your faction will be notified.",
	models.CredentialTypeFaction: "Faction beacon scanned. Loyalty points awarded.",
	models.CredentialTypeItem:    "Item cache discovered. Check your inventory.",
}

func narrativeFor(credType models.CredentialType, rewards ScanRewards) ScanNarrative {
	message, ok := narratives[credType]
	if !ok {
		message = "QR code scanned successfully."
	}
	return ScanNarrative{
		Title:   "QR Code Scanned",
		Message: message,
		Rewards: fmt.Sprintf("+%d XP, +%d credits", rewards.XP, rewards.Credits),
	}
}
