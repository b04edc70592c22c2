package services

import (
	"math"

	"spynet-qr-service/models"
)

// Base scan reward before multipliers
const (
	BaseScanXP      = 25
	BaseScanCredits = 10
)

// ScanRewards is the XP/credits pair granted by one successful scan
type ScanRewards struct {
	XP      int64 `json:"xp"`
	Credits int64 `json:"credits"`
}

var typeMultipliers = map[models.CredentialType]float64{
	models.CredentialTypeMission: 2,
	models.CredentialTypeIntel:   1.5,
	models.CredentialTypeFaction: 1.2,
	models.CredentialTypeItem:    1,
}

// CalculateRewards maps credential type (and mission difficulty, when bound to
// one) to a reward tuple. Pure function: floor(base × type × difficulty).
func CalculateRewards(credType models.CredentialType, difficulty int) ScanRewards {
	multiplier := 1.0
	if m, ok := typeMultipliers[credType]; ok {
		multiplier = m
	}
	if difficulty > 0 {
		multiplier *= float64(difficulty)
	}
	return ScanRewards{
		XP:      int64(math.Floor(BaseScanXP * multiplier)),
		Credits: int64(math.Floor(BaseScanCredits * multiplier)),
	}
}
