package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"landmark-quest-system/models"

	"github.com/gosimple/slug"
	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultCatalogCacheSize = 256
	maxRewardAmount         = 1_000_000_000
)

// QuestDefinition is one entry of a catalog document.
type QuestDefinition struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Count        int     `json:"count"`
	RewardType   string  `json:"reward_type"`
	RewardAmount int64   `json:"reward_amount"`
	ItemID       *string `json:"item_id"`
	PromoCode    string  `json:"promo_code"`
	IsActive     *bool   `json:"is_active"`
}

type CatalogSkip struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type CatalogSyncReport struct {
	Upserted int           `json:"upserted"`
	Skipped  []CatalogSkip `json:"skipped,omitempty"`
}

// ObjectFetcher reads a whole object from blob storage.
type ObjectFetcher interface {
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

// CatalogSource yields a catalog document.
type CatalogSource interface {
	Load(ctx context.Context) ([]byte, error)
}

type FileCatalogSource struct {
	Path string
}

func (f FileCatalogSource) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}

type ObjectCatalogSource struct {
	Fetcher ObjectFetcher
	Key     string
}

func (o ObjectCatalogSource) Load(ctx context.Context) ([]byte, error) {
	return o.Fetcher.FetchObject(ctx, o.Key)
}

// CatalogService serves quest templates. Lookups by id go through an LRU that
// is purged on every sync.
type CatalogService struct {
	DB    *gorm.DB
	cache *lru.Cache
}

func NewCatalogService(db *gorm.DB, cacheSize int) (*CatalogService, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCatalogCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	return &CatalogService{DB: db, cache: cache}, nil
}

// Quest returns a template by id regardless of whether it is active.
func (s *CatalogService) Quest(questID string) (*models.Quest, error) {
	if questID == "" {
		return nil, invalidf("quest id is required")
	}
	if v, ok := s.cache.Get(questID); ok {
		q := v.(models.Quest)
		return &q, nil
	}

	var q models.Quest
	if err := s.DB.Where("id = ?", questID).First(&q).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrQuestNotFound.with(fmt.Sprintf("quest %s not found", questID), nil)
		}
		return nil, fmt.Errorf("load quest %s: %w", questID, err)
	}
	s.cache.Add(questID, q)
	return &q, nil
}

// ActiveQuest is Quest restricted to active templates.
func (s *CatalogService) ActiveQuest(questID string) (*models.Quest, error) {
	q, err := s.Quest(questID)
	if err != nil {
		return nil, err
	}
	if !q.IsActive {
		return nil, ErrQuestNotFound.with(fmt.Sprintf("quest %s is not active", questID), nil)
	}
	return q, nil
}

// ActiveQuests lists templates eligible for daily assignment.
func (s *CatalogService) ActiveQuests() ([]models.Quest, error) {
	var quests []models.Quest
	if err := s.DB.Where("is_active = ? AND type <> ?", true, "").
		Order("id").
		Find(&quests).Error; err != nil {
		return nil, fmt.Errorf("load active quests: %w", err)
	}
	return quests, nil
}

// Purge drops every cached template.
func (s *CatalogService) Purge() {
	s.cache.Purge()
}

// NormalizeQuestType turns "Mark Sights" or "mark-sights" into "mark_sights".
func NormalizeQuestType(raw string) string {
	return strings.ReplaceAll(slug.Make(raw), "-", "_")
}

// NormalizePromoCode trims and upper-cases a promo code.
func NormalizePromoCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func (d QuestDefinition) toQuest() (models.Quest, error) {
	q := models.Quest{
		ID:           strings.TrimSpace(d.ID),
		Type:         NormalizeQuestType(d.Type),
		Title:        strings.TrimSpace(d.Title),
		Description:  strings.TrimSpace(d.Description),
		Count:        d.Count,
		RewardType:   models.RewardType(strings.ToLower(strings.TrimSpace(d.RewardType))),
		RewardAmount: d.RewardAmount,
		PromoCode:    NormalizePromoCode(d.PromoCode),
		IsActive:     d.IsActive == nil || *d.IsActive,
	}
	if d.ItemID != nil {
		if item := strings.TrimSpace(*d.ItemID); item != "" {
			q.ItemID = &item
		}
	}

	switch {
	case q.ID == "":
		return q, fmt.Errorf("id is required")
	case q.Title == "":
		return q, fmt.Errorf("title is required")
	case q.Count < 1:
		return q, fmt.Errorf("count must be at least 1")
	case !q.RewardType.Valid():
		return q, fmt.Errorf("unknown reward_type %q", d.RewardType)
	case q.RewardAmount < 0:
		return q, fmt.Errorf("reward_amount must be non-negative")
	case q.RewardAmount > maxRewardAmount:
		return q, fmt.Errorf("reward_amount above %d", maxRewardAmount)
	case q.RewardType == models.RewardTypeItem && q.ItemID == nil:
		return q, fmt.Errorf("item_id is required for item rewards")
	case q.RewardType != models.RewardTypeItem && q.ItemID != nil:
		return q, fmt.Errorf("item_id is only allowed for item rewards")
	case len(q.PromoCode) > 100:
		return q, fmt.Errorf("promo_code too long (max 100 characters)")
	}
	return q, nil
}

// SyncCatalog upserts every valid definition of a JSON array document.
// Invalid entries are skipped and reported; templates absent from the
// document are left untouched.
func (s *CatalogService) SyncCatalog(data []byte) (*CatalogSyncReport, error) {
	var defs []QuestDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, invalidf("catalog document is not a JSON array of quests: %v", err)
	}

	report := &CatalogSyncReport{}
	quests := make([]models.Quest, 0, len(defs))
	seen := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		q, err := d.toQuest()
		if err != nil {
			report.Skipped = append(report.Skipped, CatalogSkip{ID: d.ID, Reason: err.Error()})
			continue
		}
		if _, dup := seen[q.ID]; dup {
			report.Skipped = append(report.Skipped, CatalogSkip{ID: q.ID, Reason: "duplicate id"})
			continue
		}
		seen[q.ID] = struct{}{}
		quests = append(quests, q)
	}

	if len(quests) > 0 {
		err := s.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"type", "title", "description", "count", "reward_type",
				"reward_amount", "item_id", "promo_code", "is_active", "updated_at",
			}),
		}).Create(&quests).Error
		if err != nil {
			return nil, fmt.Errorf("upsert %d quest(s): %w", len(quests), err)
		}
	}
	report.Upserted = len(quests)
	s.Purge()

	for _, sk := range report.Skipped {
		log.Printf("⚠️ [CATALOG] skipped quest %q: %s", sk.ID, sk.Reason)
	}
	log.Printf("📚 [CATALOG] synced %d quest(s), %d skipped", report.Upserted, len(report.Skipped))
	return report, nil
}

// RefreshCatalog loads a document from src and syncs it.
func (s *CatalogService) RefreshCatalog(ctx context.Context, src CatalogSource) (*CatalogSyncReport, error) {
	data, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return s.SyncCatalog(data)
}
