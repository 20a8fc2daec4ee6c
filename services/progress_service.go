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

// ProgressFailure is a matching quest whose counter could not be updated.
type ProgressFailure struct {
	QuestID string `json:"quest_id"`
	Reason  string `json:"reason"`
}

type ProgressUpdate struct {
	QuestType string            `json:"type"`
	Date      string            `json:"date"`
	Updated   []models.Progress `json:"updated"`
	Failed    []ProgressFailure `json:"failed,omitempty"`
}

// ProgressService accumulates per-day quest counters from game events.
type ProgressService struct {
	DB       *gorm.DB
	Location *time.Location
	Now      func() time.Time
}

func NewProgressService(db *gorm.DB, loc *time.Location) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	return &ProgressService{DB: db, Location: loc, Now: time.Now}
}

func (s *ProgressService) Today() string {
	return DateOf(s.Now(), s.Location)
}

// ApplyProgress adds delta to every active quest of questType assigned to the
// player on date. Each quest is updated in its own transaction; a failure on
// one is reported in Failed and does not stop the others.
func (s *ProgressService) ApplyProgress(playerID, questType, date string, delta int) (*ProgressUpdate, error) {
	if delta <= 0 {
		return nil, invalidf("delta must be positive, got %d", delta)
	}
	questType = NormalizeQuestType(questType)
	if questType == "" {
		return nil, invalidf("quest type is required")
	}
	if date == "" {
		date = s.Today()
	}
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}

	var assignments []models.DailyAssignment
	if err := s.DB.Select("daily_assignments.*").
		Joins("JOIN quests ON quests.id = daily_assignments.quest_id").
		Where("daily_assignments.player_id = ? AND daily_assignments.date = ?", playerID, date).
		Where("quests.type = ? AND quests.is_active = ?", questType, true).
		Preload("Quest").
		Find(&assignments).Error; err != nil {
		return nil, fmt.Errorf("load %s assignments for %s: %w", questType, playerID, err)
	}

	update := &ProgressUpdate{QuestType: questType, Date: date, Updated: []models.Progress{}}
	for _, a := range assignments {
		p, err := s.bump(a, delta)
		if err != nil {
			log.Printf("❌ [PROGRESS] player %s quest %s: %v", playerID, a.QuestID, err)
			update.Failed = append(update.Failed, ProgressFailure{QuestID: a.QuestID, Reason: err.Error()})
			continue
		}
		update.Updated = append(update.Updated, *p)
		log.Printf("📈 [PROGRESS] player %s quest %s: %d/%d (completed=%t)",
			playerID, a.QuestID, p.CurrentProgress, a.Quest.Count, p.IsCompleted)
	}
	return update, nil
}

func (s *ProgressService) bump(a models.DailyAssignment, delta int) (*models.Progress, error) {
	var out models.Progress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := s.Now().UTC()
		p, err := lockProgress(tx, a.PlayerID, a.QuestID, a.Date, &a.ID, now)
		if err != nil {
			return err
		}

		next := min(p.CurrentProgress+delta, a.Quest.Count)
		updates := map[string]interface{}{"current_progress": next}
		if p.DailyAssignmentID == nil {
			updates["daily_assignment_id"] = a.ID
			p.DailyAssignmentID = &a.ID
		}
		if next >= a.Quest.Count && !p.IsCompleted {
			updates["is_completed"] = true
			updates["completed_at"] = now
			p.IsCompleted = true
			p.CompletedAt = &now
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		p.CurrentProgress = next
		out = *p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ProgressFor returns every progress row of the player for date.
func (s *ProgressService) ProgressFor(playerID, date string) ([]models.Progress, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}
	rows := []models.Progress{}
	if err := s.DB.Where("player_id = ? AND date = ?", playerID, date).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load progress for %s on %s: %w", playerID, date, err)
	}
	return rows, nil
}

// LandmarksObserved feeds newly visited landmarks into mark_sights quests.
func (s *ProgressService) LandmarksObserved(evt LandmarksObserved) {
	s.applyEvent(evt.PlayerID, models.QuestTypeMarkSights, evt.ObservedAt, len(evt.LandmarkIDs))
}

// LandmarkCaptured feeds accepted captures into capture_landmarks quests.
func (s *ProgressService) LandmarkCaptured(evt LandmarkCaptured) {
	s.applyEvent(evt.PlayerID, models.QuestTypeCaptureLandmarks, evt.CapturedAt, 1)
}

func (s *ProgressService) applyEvent(playerID, questType string, at time.Time, delta int) {
	if delta <= 0 {
		return
	}
	if _, err := s.ApplyProgress(playerID, questType, DateOf(at, s.Location), delta); err != nil {
		log.Printf("❌ [PROGRESS] %s event for player %s not applied: %v", questType, playerID, err)
	}
}

// lockProgress fetches or lazily creates the progress row and locks it for
// the rest of the transaction.
func lockProgress(tx *gorm.DB, playerID, questID, date string, assignmentID *string, now time.Time) (*models.Progress, error) {
	fresh := models.Progress{
		ID:                uuid.NewString(),
		PlayerID:          playerID,
		QuestID:           questID,
		Date:              date,
		DailyAssignmentID: assignmentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "player_id"}, {Name: "quest_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create progress row: %w", err)
	}

	var p models.Progress
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND quest_id = ? AND date = ?", playerID, questID, date).
		First(&p).Error; err != nil {
		return nil, fmt.Errorf("lock progress row: %w", err)
	}
	return &p, nil
}
