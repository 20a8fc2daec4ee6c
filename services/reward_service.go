// services/reward_service.go
package services

import (
	"fmt"
	"log"
	"time"

	"landmark-quest-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardService turns a completed quest into currency, experience or an item
// exactly once, and issues the quest's promo code if it has one.
type RewardService struct {
	DB       *gorm.DB
	Catalog  *CatalogService
	Players  *PlayerService
	Location *time.Location
	Now      func() time.Time
}

func NewRewardService(db *gorm.DB, catalog *CatalogService, players *PlayerService, loc *time.Location) *RewardService {
	if loc == nil {
		loc = time.UTC
	}
	return &RewardService{DB: db, Catalog: catalog, Players: players, Location: loc, Now: time.Now}
}

type RewardDescription struct {
	Type   models.RewardType `json:"type"`
	Amount int64             `json:"amount"`
	ItemID *string           `json:"item_id,omitempty"`
	// Fulfilled is false for item rewards: they are recorded, not delivered.
	Fulfilled bool `json:"fulfilled"`
}

type LevelUp struct {
	NewLevel     int `json:"new_level"`
	LevelsGained int `json:"levels_gained"`
}

type RewardResult struct {
	QuestID   string            `json:"quest_id"`
	Date      string            `json:"date"`
	Reward    RewardDescription `json:"reward"`
	Player    PlayerStats       `json:"player"`
	LevelUp   *LevelUp          `json:"level_up,omitempty"`
	PromoCode string            `json:"promo_code,omitempty"`
	Progress  models.Progress   `json:"progress"`
}

// CompleteQuest claims today's reward for questID. Everything it writes
// (economy, claim flag, promo grant, audit row) commits together or not at
// all, so a failed call can be retried safely.
func (s *RewardService) CompleteQuest(playerID, questID string) (*RewardResult, error) {
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}
	quest, err := s.Catalog.ActiveQuest(questID)
	if err != nil {
		return nil, err
	}

	date := DateOf(s.Now(), s.Location)
	result := &RewardResult{
		QuestID: quest.ID,
		Date:    date,
		Reward: RewardDescription{
			Type:      quest.RewardType,
			Amount:    quest.RewardAmount,
			ItemID:    quest.ItemID,
			Fulfilled: quest.RewardType != models.RewardTypeItem,
		},
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		now := s.Now().UTC()
		prog, err := lockProgress(tx, playerID, quest.ID, date, nil, now)
		if err != nil {
			return err
		}
		if prog.CurrentProgress < quest.Count {
			return ErrQuestNotComplete.with(
				fmt.Sprintf("quest %s progress %d/%d", quest.ID, prog.CurrentProgress, quest.Count),
				map[string]interface{}{"current_progress": prog.CurrentProgress, "required": quest.Count},
			)
		}
		if prog.RewardClaimed {
			return ErrAlreadyClaimed.with(fmt.Sprintf("reward for quest %s on %s already claimed", quest.ID, date), nil)
		}

		player, levels, err := s.grant(tx, playerID, quest)
		if err != nil {
			return err
		}
		result.Player = s.Players.StatsOf(player)
		if levels.LeveledUp {
			result.LevelUp = &LevelUp{NewLevel: levels.Level, LevelsGained: levels.LevelsGained}
		}

		updates := map[string]interface{}{
			"reward_claimed": true,
			"is_completed":   true,
			"claimed_at":     now,
		}
		prog.RewardClaimed, prog.IsCompleted, prog.ClaimedAt = true, true, &now
		if prog.CompletedAt == nil {
			updates["completed_at"] = now
			prog.CompletedAt = &now
		}
		if err := tx.Model(prog).Updates(updates).Error; err != nil {
			return fmt.Errorf("mark progress claimed: %w", err)
		}

		if quest.PromoCode != "" {
			grant, err := issuePromo(tx, prog, quest.PromoCode, now)
			if err != nil {
				return err
			}
			result.PromoCode = grant.PromoCode
		}

		audit := models.RewardGrant{
			ID:           uuid.NewString(),
			ProgressID:   prog.ID,
			PlayerID:     playerID,
			QuestID:      quest.ID,
			Date:         date,
			RewardType:   quest.RewardType,
			Amount:       quest.RewardAmount,
			ItemID:       quest.ItemID,
			LevelsGained: levels.LevelsGained,
			GrantedAt:    now,
		}
		if err := tx.Create(&audit).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyClaimed.with(fmt.Sprintf("reward for quest %s on %s already granted", quest.ID, date), nil)
			}
			return fmt.Errorf("record reward grant: %w", err)
		}

		result.Progress = *prog
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🎁 [REWARD] player %s claimed quest %s (%s %d) promo=%t",
		playerID, quest.ID, quest.RewardType, quest.RewardAmount, result.PromoCode != "")
	return result, nil
}

func (s *RewardService) grant(tx *gorm.DB, playerID string, quest *models.Quest) (*models.Player, LevelResult, error) {
	switch quest.RewardType {
	case models.RewardTypeCoins:
		p, err := s.Players.addCoins(tx, playerID, quest.RewardAmount)
		if err != nil {
			return nil, LevelResult{}, err
		}
		return p, LevelResult{Experience: p.Experience, Level: p.Level}, nil
	case models.RewardTypeExperience:
		return s.Players.addExperience(tx, playerID, quest.RewardAmount)
	case models.RewardTypeItem:
		// Inventory is not modeled yet; the claim is recorded in reward_grants only.
		p, err := findPlayer(tx, playerID, true)
		if err != nil {
			return nil, LevelResult{}, err
		}
		log.Printf("📦 [REWARD] item %s for player %s recorded, fulfillment pending", derefOr(quest.ItemID, "?"), playerID)
		return p, LevelResult{Experience: p.Experience, Level: p.Level}, nil
	default:
		return nil, LevelResult{}, fmt.Errorf("quest %s has unknown reward type %q", quest.ID, quest.RewardType)
	}
}

// issuePromo reuses the grant of a previous attempt for the same completion
// instead of creating a second one.
func issuePromo(tx *gorm.DB, prog *models.Progress, code string, now time.Time) (*models.PromoGrant, error) {
	fresh := models.PromoGrant{
		ID:         uuid.NewString(),
		PlayerID:   prog.PlayerID,
		QuestID:    prog.QuestID,
		Date:       prog.Date,
		PromoCode:  code,
		ProgressID: prog.ID,
		IssuedAt:   now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "quest_id"}, {Name: "date"}, {Name: "promo_code"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("issue promo code: %w", err)
	}

	var grant models.PromoGrant
	if err := tx.Where("player_id = ? AND quest_id = ? AND date = ? AND promo_code = ?",
		prog.PlayerID, prog.QuestID, prog.Date, code).
		First(&grant).Error; err != nil {
		return nil, fmt.Errorf("load promo grant: %w", err)
	}
	return &grant, nil
}

// PromoCodes lists every promo code the player has earned, newest first.
func (s *RewardService) PromoCodes(playerID string) ([]models.PromoGrant, error) {
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}
	grants := []models.PromoGrant{}
	if err := s.DB.Where("player_id = ?", playerID).
		Order("issued_at DESC").
		Find(&grants).Error; err != nil {
		return nil, fmt.Errorf("load promo codes for %s: %w", playerID, err)
	}
	return grants, nil
}
