package services

import (
	"errors"
	"time"

	"spynet-qr-service/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL applies when issuance does not specify expires_in
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken: signature mismatch, malformed token, wrong algorithm
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired: signature fine, embedded expiry passed
	ErrTokenExpired = errors.New("token expired")
)

// CredentialClaims is the signed payload embedded in every QR token.
type CredentialClaims struct {
	Code      string                    `json:"code"`
	Type      models.CredentialType     `json:"qr_type"`
	MissionID *string                   `json:"mission_id,omitempty"`
	ZoneID    *string                   `json:"zone_id,omitempty"`
	CreatedBy string                    `json:"created_by"`
	Metadata  models.CredentialMetadata `json:"payload"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 credential tokens. Verification is
// pure CPU work — callers must verify before touching the database so forged
// codes can't probe for credential existence.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// Issue signs claims with an expiry ttl from now (DefaultTokenTTL when unset).
func (s *TokenSigner) Issue(claims *CredentialClaims, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims.
// Returns ErrTokenExpired for stale tokens, ErrInvalidToken for everything else.
func (s *TokenSigner) Verify(tokenString string) (*CredentialClaims, error) {
	claims := &CredentialClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Code == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
