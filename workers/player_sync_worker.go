// workers/player_sync_worker.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"spynet-qr-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RemotePlayer matches the JSON the account service returns for a player.
type RemotePlayer struct {
	ID        string     `json:"id"`
	Handle    string     `json:"handle"`
	FactionID *string    `json:"faction_id,omitempty"`
	Callsign  string     `json:"callsign,omitempty"`
	Motto     string     `json:"motto,omitempty"`
	AvatarURL string     `json:"avatar_url,omitempty"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GetPlayerChangesResponse is the top-level structure of the account service response.
type GetPlayerChangesResponse struct {
	Players []RemotePlayer `json:"players"`
}

// PlayerSyncWorker mirrors account-service identities into player_profiles.
// It only ever writes identity columns — XP and credits belong to the
// redemption engine and are never part of the upsert.
type PlayerSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string // e.g., "http://localhost:8400"
	endpointPath string // e.g., "/api/v1/public/players"
	serviceToken string
	httpClient   *http.Client
}

func NewPlayerSyncWorker(db *gorm.DB, accountServiceBaseURL, endpointPath, serviceToken string) *PlayerSyncWorker {
	return &PlayerSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      accountServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *PlayerSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Player Sync Worker (account-service → player_profiles)…")
	go w.run(ctx)
}

func (w *PlayerSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial player sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Player sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Player Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt in the local snapshot.
func (w *PlayerSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM player_profiles WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

// syncBatch fetches player changes since the watermark and upserts them.
func (w *PlayerSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid account service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()
	finalURL := endpointURL.String()

	req, err := http.NewRequestWithContext(ctx, "GET", finalURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request to %s: %w", finalURL, err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to account service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("account service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetPlayerChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode account service response: %w", err)
	}

	if len(response.Players) == 0 {
		return nil
	}

	var upsertCount, errorCount int
	for _, remote := range response.Players {
		profile := models.PlayerProfile{
			ID:               uuid.NewString(),
			ExternalPlayerID: remote.ID,
			Handle:           remote.Handle,
			FactionID:        remote.FactionID,
			Profile: models.ProfileFields{
				Callsign:  remote.Callsign,
				Motto:     remote.Motto,
				AvatarURL: remote.AvatarURL,
			},
			LastSeen: remote.LastSeen,
		}

		// Identity columns only — never xp/credits, those are reward state.
		if err := w.db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "external_player_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"handle", "faction_id", "profile", "last_seen", "updated_at",
			}),
		}).Create(&profile).Error; err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to upsert player_profile (external_id=%q, handle=%q): %v",
				remote.ID, remote.Handle, err)
		} else {
			upsertCount++
		}
	}

	log.Printf("[SYNC] ✅ Synced %d player(s) (%d upserted, %d errors)", len(response.Players), upsertCount, errorCount)
	return nil
}
