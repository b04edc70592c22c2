package services

import (
	"testing"

	"spynet-qr-service/models"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRewards(t *testing.T) {
	tests := []struct {
		name        string
		credType    models.CredentialType
		difficulty  int
		wantXP      int64
		wantCredits int64
	}{
		{"item base", models.CredentialTypeItem, 0, 25, 10},
		{"faction x1.2", models.CredentialTypeFaction, 0, 30, 12},
		{"intel x1.5", models.CredentialTypeIntel, 0, 37, 15},
		{"mission x2", models.CredentialTypeMission, 0, 50, 20},
		{"mission difficulty 1", models.CredentialTypeMission, 1, 50, 20},
		{"mission difficulty 3", models.CredentialTypeMission, 3, 150, 60},
		{"mission difficulty 5", models.CredentialTypeMission, 5, 250, 100},
		{"intel difficulty 3 floors", models.CredentialTypeIntel, 3, 112, 45},
		{"unknown type falls back to x1", models.CredentialType("mystery"), 0, 25, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRewards(tt.credType, tt.difficulty)
			assert.Equal(t, tt.wantXP, got.XP)
			assert.Equal(t, tt.wantCredits, got.Credits)
		})
	}
}

func TestCalculateRewards_Deterministic(t *testing.T) {
	a := CalculateRewards(models.CredentialTypeMission, 3)
	b := CalculateRewards(models.CredentialTypeMission, 3)
	assert.Equal(t, a, b)
}
