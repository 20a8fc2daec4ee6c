package services

import (
	"fmt"
	"log"
	"time"

	"landmark-quest-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerService is the local face of the identity provider: lookups,
// existence checks and the two economy mutations quests may perform.
type PlayerService struct {
	DB                 *gorm.DB
	ExperiencePerLevel int64
	Now                func() time.Time
}

func NewPlayerService(db *gorm.DB, experiencePerLevel int64) *PlayerService {
	if experiencePerLevel <= 0 {
		experiencePerLevel = DefaultExperiencePerLevel
	}
	return &PlayerService{DB: db, ExperiencePerLevel: experiencePerLevel, Now: time.Now}
}

// PlayerStats is what the client shows on the profile screen.
type PlayerStats struct {
	ID                    string  `json:"id"`
	Username              string  `json:"username"`
	Coins                 int64   `json:"coins"`
	Experience            int64   `json:"experience"`
	Level                 int     `json:"level"`
	ExperienceToNextLevel int64   `json:"experience_to_next_level"`
	ClanID                *string `json:"clan_id"`
}

func (s *PlayerService) StatsOf(p *models.Player) PlayerStats {
	return PlayerStats{
		ID:                    p.ID,
		Username:              p.Username,
		Coins:                 p.Coins,
		Experience:            p.Experience,
		Level:                 p.Level,
		ExperienceToNextLevel: ExperienceToNextLevel(p.Experience, s.ExperiencePerLevel),
		ClanID:                p.ClanID,
	}
}

// GetPlayer returns ErrPlayerNotFound for unknown ids.
func (s *PlayerService) GetPlayer(playerID string) (*models.Player, error) {
	return findPlayer(s.DB, playerID, false)
}

// EnsurePlayer creates the mirror row if it does not exist yet (idempotent).
func (s *PlayerService) EnsurePlayer(playerID, username string) (*models.Player, error) {
	if playerID == "" {
		return nil, invalidf("player id is required")
	}
	p := models.Player{ID: playerID, Username: username, Level: 1}
	if err := s.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
		return nil, fmt.Errorf("ensure player %s: %w", playerID, err)
	}
	return s.GetPlayer(playerID)
}

// AddCoins credits a non-negative amount of coins.
func (s *PlayerService) AddCoins(playerID string, amount int64) (*models.Player, error) {
	var out *models.Player
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.addCoins(tx, playerID, amount)
		out = p
		return err
	})
	return out, err
}

// AddExperience credits experience and applies the leveling loop.
func (s *PlayerService) AddExperience(playerID string, amount int64) (*models.Player, LevelResult, error) {
	var (
		out *models.Player
		res LevelResult
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, r, err := s.addExperience(tx, playerID, amount)
		out, res = p, r
		return err
	})
	return out, res, err
}

func (s *PlayerService) addCoins(tx *gorm.DB, playerID string, amount int64) (*models.Player, error) {
	if amount < 0 {
		return nil, invalidf("coin amount must be non-negative, got %d", amount)
	}
	p, err := findPlayer(tx, playerID, true)
	if err != nil {
		return nil, err
	}
	p.Coins += amount
	if err := tx.Model(p).Update("coins", p.Coins).Error; err != nil {
		return nil, fmt.Errorf("update coins for %s: %w", playerID, err)
	}
	log.Printf("💰 Coins credited: %s +%d → %d", playerID, amount, p.Coins)
	return p, nil
}

func (s *PlayerService) addExperience(tx *gorm.DB, playerID string, amount int64) (*models.Player, LevelResult, error) {
	if amount < 0 {
		return nil, LevelResult{}, invalidf("experience amount must be non-negative, got %d", amount)
	}
	p, err := findPlayer(tx, playerID, true)
	if err != nil {
		return nil, LevelResult{}, err
	}

	res, err := ApplyExperience(p.Experience, p.Level, amount, s.ExperiencePerLevel)
	if err != nil {
		return nil, LevelResult{}, err
	}

	updates := map[string]interface{}{
		"experience": res.Experience,
		"level":      res.Level,
	}
	if res.LeveledUp {
		now := s.Now().UTC()
		updates["last_level_up_at"] = now
		p.LastLevelUpAt = &now
	}
	if err := tx.Model(p).Updates(updates).Error; err != nil {
		return nil, LevelResult{}, fmt.Errorf("update experience for %s: %w", playerID, err)
	}
	p.Experience, p.Level = res.Experience, res.Level

	log.Printf("🎮 XP Awarded: %s +%d → XP=%d, Lvl=%d (levels gained: %d)",
		playerID, amount, p.Experience, p.Level, res.LevelsGained)
	return p, res, nil
}

func findPlayer(db *gorm.DB, playerID string, forUpdate bool) (*models.Player, error) {
	if playerID == "" {
		return nil, invalidf("player id is required")
	}
	q := db
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p models.Player
	if err := q.Where("id = ?", playerID).First(&p).Error; err != nil {
		if isNotFound(err) {
			return nil, ErrPlayerNotFound.with(fmt.Sprintf("player %s not found", playerID), nil)
		}
		return nil, fmt.Errorf("load player %s: %w", playerID, err)
	}
	return &p, nil
}
