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

const clansPath = "/api/v1/public/clans"

type ClanSyncClient struct {
	Client *utils.ServiceClient
	DB     *gorm.DB
}

func NewClanSyncClient(db *gorm.DB, client *utils.ServiceClient) *ClanSyncClient {
	return &ClanSyncClient{Client: client, DB: db}
}

func (c *ClanSyncClient) GetChangedClans(ctx context.Context, since time.Time) ([]models.Clan, error) {
	q := url.Values{}
	q.Set("since", since.UTC().Format(time.RFC3339))

	var response struct {
		Clans []models.Clan `json:"clans"`
	}
	if err := c.Client.GetJSON(ctx, clansPath, q, &response); err != nil {
		return nil, err
	}
	return response.Clans, nil
}

// SaveClans bulk-upserts clan names in one statement.
func (c *ClanSyncClient) SaveClans(clans []models.Clan) error {
	if len(clans) == 0 {
		return nil
	}
	err := c.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&clans).Error
	if err != nil {
		return fmt.Errorf("upsert %d clan(s): %w", len(clans), err)
	}
	return nil
}

// PollClans mirrors clan names until ctx is done. The window only advances
// after a successful upsert, so a failed tick is retried on the next one.
func PollClans(ctx context.Context, client *ClanSyncClient, pollInterval time.Duration) {
	log.Println("Starting clan polling (DB-backed)...")
	var lastSyncTime time.Time

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Clan polling stopped.")
			return
		case <-ticker.C:
			tickTime := time.Now().UTC()
			clans, err := client.GetChangedClans(ctx, lastSyncTime)
			if err != nil {
				log.Printf("❌ [SYNC] Error polling clans: %v", err)
				continue
			}
			if err := client.SaveClans(clans); err != nil {
				log.Printf("❌ [SYNC] %v", err)
				continue
			}
			lastSyncTime = tickTime
			if len(clans) > 0 {
				log.Printf("✅ [SYNC] Upserted %d clan(s).", len(clans))
			}
		}
	}
}
