package services

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"landmark-quest-system/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultDailyQuestMin = 3
	DefaultDailyQuestMax = 5
	dateLayout           = "2006-01-02"
)

// DateOf renders the calendar day of t in loc.
func DateOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateLayout)
}

// AssignmentService hands out the daily quest set of each player.
type AssignmentService struct {
	DB       *gorm.DB
	Catalog  *CatalogService
	Min      int
	Max      int
	Location *time.Location
	Workers  int
	Now      func() time.Time
}

func NewAssignmentService(db *gorm.DB, catalog *CatalogService, min, max int, loc *time.Location) *AssignmentService {
	if min < 1 {
		min = DefaultDailyQuestMin
	}
	if max < min {
		max = min
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AssignmentService{DB: db, Catalog: catalog, Min: min, Max: max, Location: loc, Workers: 8, Now: time.Now}
}

func (s *AssignmentService) Today() string {
	return DateOf(s.Now(), s.Location)
}

// AssignmentsForToday returns today's quests for the player, drawing them on
// the first call of the day.
func (s *AssignmentService) AssignmentsForToday(playerID string) ([]models.Quest, error) {
	return s.AssignmentsFor(playerID, s.Today())
}

// AssignmentsFor is idempotent per (player, date): once a set exists it is
// returned unchanged.
func (s *AssignmentService) AssignmentsFor(playerID, date string) ([]models.Quest, error) {
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}

	existing, err := loadAssignedQuests(s.DB, playerID, date)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	eligible, err := s.Catalog.ActiveQuests()
	if err != nil {
		return nil, err
	}
	if len(eligible) < s.Min {
		return nil, ErrInsufficientCatalog.with(
			fmt.Sprintf("need at least %d active quests, catalog has %d", s.Min, len(eligible)),
			map[string]interface{}{"required": s.Min, "available": len(eligible)},
		)
	}

	var quests []models.Quest
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// The player row lock makes concurrent first calls of the day agree on one set.
		if _, err := findPlayer(tx, playerID, true); err != nil {
			return err
		}
		already, err := loadAssignedQuests(tx, playerID, date)
		if err != nil {
			return err
		}
		if len(already) > 0 {
			quests = already
			return nil
		}

		r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
		picked := pickQuests(r, eligible, s.Min, s.Max)

		rows := make([]models.DailyAssignment, len(picked))
		for i, q := range picked {
			rows[i] = models.DailyAssignment{
				ID:       uuid.NewString(),
				PlayerID: playerID,
				QuestID:  q.ID,
				Date:     date,
			}
		}
		if err := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&rows).Error; err != nil {
			return fmt.Errorf("save daily assignments for %s: %w", playerID, err)
		}
		quests = picked
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("🗓️ [ASSIGN] player %s has %d quest(s) for %s", playerID, len(quests), date)
	return quests, nil
}

// pickQuests draws between min and max distinct quests, bounded by len(eligible).
func pickQuests(r *rand.Rand, eligible []models.Quest, min, max int) []models.Quest {
	upper := max
	if upper > len(eligible) {
		upper = len(eligible)
	}
	if min > upper {
		min = upper
	}
	n := min + r.IntN(upper-min+1)

	out := make([]models.Quest, 0, n)
	for _, idx := range r.Perm(len(eligible))[:n] {
		out = append(out, eligible[idx])
	}
	return out
}

func loadAssignedQuests(db *gorm.DB, playerID, date string) ([]models.Quest, error) {
	var rows []models.DailyAssignment
	if err := db.Preload("Quest").
		Where("player_id = ? AND date = ?", playerID, date).
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load daily assignments for %s on %s: %w", playerID, date, err)
	}
	quests := make([]models.Quest, 0, len(rows))
	for _, r := range rows {
		quests = append(quests, r.Quest)
	}
	return quests, nil
}

// RolloverReport summarizes one day rollover run.
type RolloverReport struct {
	Date     string `json:"date"`
	Players  int    `json:"players"`
	Assigned int64  `json:"assigned"`
	Failed   int64  `json:"failed"`
}

// RolloverDay draws today's quests in advance for every player who had an
// assignment yesterday. Per-player failures are logged and counted.
func (s *AssignmentService) RolloverDay(ctx context.Context) (*RolloverReport, error) {
	now := s.Now()
	today := DateOf(now, s.Location)
	yesterday := DateOf(now.In(s.Location).AddDate(0, 0, -1), s.Location)

	var playerIDs []string
	if err := s.DB.WithContext(ctx).Model(&models.DailyAssignment{}).
		Where("date = ?", yesterday).
		Distinct().
		Pluck("player_id", &playerIDs).Error; err != nil {
		return nil, fmt.Errorf("list players active on %s: %w", yesterday, err)
	}

	report := &RolloverReport{Date: today, Players: len(playerIDs)}
	var assigned, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for _, pid := range playerIDs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			if _, err := s.AssignmentsFor(pid, today); err != nil {
				failed.Add(1)
				log.Printf("⚠️ [ROLLOVER] player %s: %v", pid, err)
				return nil
			}
			assigned.Add(1)
			return nil
		})
	}
	err := g.Wait()
	report.Assigned, report.Failed = assigned.Load(), failed.Load()

	log.Printf("🌅 [ROLLOVER] %s: %d player(s), %d assigned, %d failed", today, report.Players, report.Assigned, report.Failed)
	return report, err
}
