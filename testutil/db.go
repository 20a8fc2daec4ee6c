// Package testutil provides an in-memory database migrated with the
// production models, plus a controllable clock.
package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"landmark-quest-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database. It allows a single
// connection, so concurrent transactions are serialized.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(0)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedPlayer inserts a level 1 player with no coins or experience.
func SeedPlayer(t testing.TB, db *gorm.DB, id string, clanID *string) *models.Player {
	t.Helper()
	p := &models.Player{ID: id, Username: "user-" + id, ClanID: clanID, Level: 1}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed player %s: %v", id, err)
	}
	return p
}

// SeedQuest inserts an active quest, filling unset fields with a one-step
// coin reward.
func SeedQuest(t testing.TB, db *gorm.DB, q models.Quest) models.Quest {
	t.Helper()
	if q.Title == "" {
		q.Title = "Quest " + q.ID
	}
	if q.Count == 0 {
		q.Count = 1
	}
	if q.RewardType == "" {
		q.RewardType = models.RewardTypeCoins
	}
	if q.Type == "" {
		q.Type = models.QuestTypeSteps
	}
	q.IsActive = true
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("seed quest %s: %v", q.ID, err)
	}
	return q
}

// Deactivate flips a seeded quest to inactive.
func Deactivate(t testing.TB, db *gorm.DB, questID string) {
	t.Helper()
	if err := db.Model(&models.Quest{}).Where("id = ?", questID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate %s: %v", questID, err)
	}
}

// Assign offers questID to playerID on date.
func Assign(t testing.TB, db *gorm.DB, playerID, questID, date string) {
	t.Helper()
	a := models.DailyAssignment{ID: uuid.NewString(), PlayerID: playerID, QuestID: questID, Date: date}
	if err := db.Omit("Quest").Create(&a).Error; err != nil {
		t.Fatalf("assign %s to %s: %v", questID, playerID, err)
	}
}

type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
