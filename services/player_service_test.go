package services

import (
	"sync"
	"testing"

	"spynet-qr-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile_Idempotent(t *testing.T) {
	db, _, _, _, players, _ := newTestStack(t)

	first, err := players.EnsureProfile("player-1")
	require.NoError(t, err)
	assert.Equal(t, "player-1", first.ExternalPlayerID)
	assert.Equal(t, "player-1", first.Handle)

	second, err := players.EnsureProfile("player-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.PlayerProfile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// Two first-ever scans by the same player can race EnsureProfile; neither
// attempt may fail and exactly one row lands.
func TestEnsureProfile_ConcurrentFirstScan(t *testing.T) {
	db, _, _, _, players, _ := newTestStack(t)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := players.EnsureProfile("player-1")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}

	var count int64
	require.NoError(t, db.Model(&models.PlayerProfile{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestGrantRewards_RequiresExistingProfile(t *testing.T) {
	db, _, _, _, players, _ := newTestStack(t)

	err := players.GrantRewards(db, "ghost-player", ScanRewards{XP: 25, Credits: 10})
	assert.Error(t, err)

	prof, err := players.EnsureProfile("player-1")
	require.NoError(t, err)
	require.NoError(t, players.GrantRewards(db, "player-1", ScanRewards{XP: 25, Credits: 10}))

	var reloaded models.PlayerProfile
	require.NoError(t, db.First(&reloaded, "id = ?", prof.ID).Error)
	assert.EqualValues(t, 25, reloaded.XP)
	assert.EqualValues(t, 10, reloaded.Credits)
}
