package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

var (
	// ErrUnsupportedType rejects credential types outside the closed set
	ErrUnsupportedType = errors.New("unsupported credential type")
	// ErrCredentialNotFound: no active credential for the presented code
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrScanConflict: the conditional scan-count increment found its
	// precondition gone (limit reached or credential deactivated mid-flight)
	ErrScanConflict = errors.New("scan conflict")
)

// codeAlphabet matches the original short-code style: 6 uppercase chars
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GeoPoint is a WGS84 coordinate
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CreateCredentialInput is the issuance request payload
type CreateCredentialInput struct {
	Type      models.CredentialType     `json:"qr_type"`
	MissionID *string                   `json:"mission_id,omitempty"`
	ZoneID    *string                   `json:"zone_id,omitempty"`
	Location  *GeoPoint                 `json:"location,omitempty"`
	ExpiresIn string                    `json:"expires_in,omitempty"` // e.g. "30m", "12h", "7d"
	MaxScans  *int                      `json:"max_scans,omitempty"`
	Metadata  models.CredentialMetadata `json:"payload,omitempty"`
}

type CredentialService struct {
	DB     *gorm.DB
	Signer *TokenSigner
}

func NewCredentialService(db *gorm.DB, signer *TokenSigner) *CredentialService {
	return &CredentialService{DB: db, Signer: signer}
}

// CreateCredential mints a credential: short code, signed token, durable record.
// scan_count starts at 0 and active at true; the record is never hard-deleted.
func (s *CredentialService) CreateCredential(creatorID string, in CreateCredentialInput) (*models.Credential, string, error) {
	if !models.ValidCredentialType(in.Type) {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedType, in.Type)
	}
	if in.MaxScans != nil && *in.MaxScans < 1 {
		return nil, "", fmt.Errorf("%w: max_scans must be positive", ErrUnsupportedType)
	}

	code, err := gonanoid.Generate(codeAlphabet, 6)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate code: %w", err)
	}

	ttl := parseExpiresIn(in.ExpiresIn)
	expiresAt := time.Now().Add(ttl)

	claims := &CredentialClaims{
		Code:      code,
		Type:      in.Type,
		MissionID: in.MissionID,
		ZoneID:    in.ZoneID,
		CreatedBy: creatorID,
		Metadata:  in.Metadata,
	}
	signed, err := s.Signer.Issue(claims, ttl)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign credential: %w", err)
	}

	cred := models.Credential{
		ID:              uuid.NewString(),
		Code:            code,
		SignedJWT:       signed,
		Type:            in.Type,
		MissionID:       in.MissionID,
		ZoneID:          in.ZoneID,
		MaxScans:        in.MaxScans,
		ScanCount:       0,
		Active:          true,
		ExpiresAt:       &expiresAt,
		CreatorPlayerID: creatorID,
		Metadata:        in.Metadata,
	}
	if in.Location != nil {
		lat, lon := in.Location.Lat, in.Location.Lon
		cred.AnchorLat = &lat
		cred.AnchorLon = &lon
	}

	if err := s.DB.Create(&cred).Error; err != nil {
		return nil, "", fmt.Errorf("failed to persist credential: %w", err)
	}
	return &cred, signed, nil
}

// GetByCode loads a credential (with its mission, if bound) by short code.
func (s *CredentialService) GetByCode(code string) (*models.Credential, error) {
	var cred models.Credential
	err := s.DB.Preload("Mission").Where("code = ?", code).First(&cred).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrCredentialNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// GetWithStats returns the credential plus total recorded scan attempts,
// for creator/admin display. Read-only.
func (s *CredentialService) GetWithStats(code string) (*models.Credential, int64, error) {
	cred, err := s.GetByCode(code)
	if err != nil {
		return nil, 0, err
	}
	var attempts int64
	if err := s.DB.Model(&models.RedemptionRecord{}).
		Where("credential_id = ?", cred.ID).
		Count(&attempts).Error; err != nil {
		return nil, 0, err
	}
	return cred, attempts, nil
}

// TryRedeem is the single mutation point for scan_count: one conditional
// UPDATE so two racing scans of the same credential can never both pass the
// limit. The predicate re-checks active, expiry and the limit so a credential
// that expired after the coordinator's gates still cannot be consumed.
// Callers run it inside the redemption transaction. RowsAffected 0 means a
// precondition no longer holds — reload and re-validate, don't retry.
func (s *CredentialService) TryRedeem(tx *gorm.DB, credentialID string) error {
	res := tx.Model(&models.Credential{}).
		Where("id = ? AND active = ? AND (expires_at IS NULL OR expires_at > ?) AND (max_scans IS NULL OR scan_count < max_scans)",
			credentialID, true, time.Now()).
		UpdateColumn("scan_count", gorm.Expr("scan_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrScanConflict
	}
	return nil
}

// Deactivate soft-disables a credential; once inactive it is never redeemable again.
func (s *CredentialService) Deactivate(credentialID string) error {
	res := s.DB.Model(&models.Credential{}).
		Where("id = ?", credentialID).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

var expiresInPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// parseExpiresIn parses the original "30m"/"12h"/"7d" style. Anything
// unparseable falls back to the 7-day default.
func parseExpiresIn(str string) time.Duration {
	m := expiresInPattern.FindStringSubmatch(str)
	if m == nil {
		return DefaultTokenTTL
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "s":
		return time.Duration(n) * time.Second
	case "m":
		return time.Duration(n) * time.Minute
	case "h":
		return time.Duration(n) * time.Hour
	case "d":
		return time.Duration(n) * 24 * time.Hour
	}
	return DefaultTokenTTL
}
