// workers/player_sync_worker.go
package workers

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"landmark-quest-system/models"
	"landmark-quest-system/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const profilesPath = "/api/v1/public/profiles"

// RemoteProfile is one account as served by the sync service.
type RemoteProfile struct {
	ExternalID string    `json:"external_id"`
	Username   string    `json:"username"`
	ClanID     *string   `json:"clan_id"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type profileChanges struct {
	Users []RemoteProfile `json:"users"`
}

// PlayerSyncWorker mirrors usernames and clan membership into players. It
// never writes coins, experience or level.
type PlayerSyncWorker struct {
	db       *gorm.DB
	client   *utils.ServiceClient
	interval time.Duration
	since    time.Time
}

func NewPlayerSyncWorker(db *gorm.DB, client *utils.ServiceClient, interval time.Duration) *PlayerSyncWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PlayerSyncWorker{db: db, client: client, interval: interval}
}

func (w *PlayerSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Player Sync Worker (sync-service → players)…")
	go w.run(ctx)
}

func (w *PlayerSyncWorker) run(ctx context.Context) {
	if _, err := w.SyncOnce(ctx); err != nil {
		log.Printf("⚠️ [SYNC] initial profile sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := w.SyncOnce(ctx); err != nil {
				log.Printf("❌ [SYNC] profile sync failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Player Sync Worker stopped")
			return
		}
	}
}

// SyncOnce pulls profiles changed since the last successful batch and
// returns how many rows were upserted. Rows that fail are logged and skipped.
func (w *PlayerSyncWorker) SyncOnce(ctx context.Context) (int, error) {
	q := url.Values{}
	q.Set("since", w.since.UTC().Format(time.RFC3339))

	var changes profileChanges
	if err := w.client.GetJSON(ctx, profilesPath, q, &changes); err != nil {
		return 0, err
	}
	if len(changes.Users) == 0 {
		return 0, nil
	}

	var upserted, failed int
	latest := w.since
	for _, remote := range changes.Users {
		if remote.ExternalID == "" {
			failed++
			continue
		}
		player := models.Player{
			ID:       remote.ExternalID,
			Username: remote.Username,
			ClanID:   remote.ClanID,
			Level:    1,
		}
		err := w.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "clan_id", "updated_at"}),
		}).Create(&player).Error
		if err != nil {
			failed++
			log.Printf("[SYNC] ⚠️ Failed to upsert player %q: %v", remote.ExternalID, err)
			continue
		}
		upserted++
		if remote.UpdatedAt.After(latest) {
			latest = remote.UpdatedAt
		}
	}

	if failed == 0 {
		w.since = latest
	}
	log.Printf("[SYNC] ✅ Profiles: %d received, %d upserted, %d failed", len(changes.Users), upserted, failed)
	if failed > 0 {
		return upserted, fmt.Errorf("%d profile(s) failed to sync", failed)
	}
	return upserted, nil
}
