package services

import (
	"testing"

	"spynet-qr-service/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database. Capped to a single connection
// so every query sees the same in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Mission{},
		&models.Credential{},
		&models.RedemptionRecord{},
		&models.MissionAssignment{},
		&models.PlayerProfile{},
		&models.GameEvent{},
	))
	return db
}

// newTestStack wires the full service graph over a test database.
func newTestStack(t *testing.T) (*gorm.DB, *TokenSigner, *CredentialService, *MissionService, *PlayerService, *RedemptionService) {
	t.Helper()

	db := newTestDB(t)
	signer := NewTokenSigner("test-signing-secret")
	creds := NewCredentialService(db, signer)
	missions := NewMissionService(db)
	players := NewPlayerService(db)
	events := NewEventService(db)
	redemptions := NewRedemptionService(db, signer, creds, missions, players, events)
	return db, signer, creds, missions, players, redemptions
}
