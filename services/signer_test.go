package services

import (
	"strings"
	"testing"
	"time"

	"spynet-qr-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := NewTokenSigner("secret-a")

	missionID := "8b9f4df1-6a3e-4d15-9f2e-0f1c2d3e4f50"
	issued, err := signer.Issue(&CredentialClaims{
		Code:      "ABC123",
		Type:      models.CredentialTypeMission,
		MissionID: &missionID,
		CreatedBy: "creator-1",
		Metadata:  models.CredentialMetadata{Campaign: "autumn-op"},
	}, time.Hour)
	require.NoError(t, err)

	claims, err := signer.Verify(issued)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", claims.Code)
	assert.Equal(t, models.CredentialTypeMission, claims.Type)
	require.NotNil(t, claims.MissionID)
	assert.Equal(t, missionID, *claims.MissionID)
	assert.Equal(t, "creator-1", claims.CreatedBy)
	assert.Equal(t, "autumn-op", claims.Metadata.Campaign)
}

func TestTokenSigner_TamperedTokenIsInvalid(t *testing.T) {
	signer := NewTokenSigner("secret-a")

	issued, err := signer.Issue(&CredentialClaims{Code: "ABC123", Type: models.CredentialTypeItem, CreatedBy: "c"}, time.Hour)
	require.NoError(t, err)

	// Flip one byte of the signature segment. Must always be INVALID, never a
	// "not found" style miss — tampering is detected before any lookup.
	parts := strings.Split(issued, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = signer.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_WrongSecret(t *testing.T) {
	issued, err := NewTokenSigner("secret-a").Issue(&CredentialClaims{Code: "ABC123", Type: models.CredentialTypeItem, CreatedBy: "c"}, time.Hour)
	require.NoError(t, err)

	_, err = NewTokenSigner("secret-b").Verify(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenSigner_ExpiredToken(t *testing.T) {
	signer := NewTokenSigner("secret-a")

	issued, err := signer.Issue(&CredentialClaims{Code: "ABC123", Type: models.CredentialTypeItem, CreatedBy: "c"}, -time.Minute)
	require.NoError(t, err)

	_, err = signer.Verify(issued)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenSigner_GarbageToken(t *testing.T) {
	_, err := NewTokenSigner("secret-a").Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
