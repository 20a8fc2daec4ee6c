package services_test

import (
	"errors"
	"testing"
	"time"

	"landmark-quest-system/models"
	"landmark-quest-system/services"
	"landmark-quest-system/testutil"

	"gorm.io/gorm"
)

const today = "2026-10-14"

func newProgressService(t *testing.T) (*services.ProgressService, *gorm.DB, *testutil.Clock) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedPlayer(t, db, "7", nil)
	clk := testutil.NewClock(day)
	svc := services.NewProgressService(db, time.UTC)
	svc.Now = clk.Now
	return svc, db, clk
}

func TestApplyProgress_CapsAtCount(t *testing.T) {
	svc, db, clk := newProgressService(t)
	testutil.SeedQuest(t, db, models.Quest{ID: "walk", Type: models.QuestTypeSteps, Count: 3})
	testutil.Assign(t, db, "7", "walk", today)

	wants := []struct {
		progress  int
		completed bool
	}{{1, false}, {2, false}, {3, true}, {3, true}}

	var completedAt time.Time
	for i, want := range wants {
		update, err := svc.ApplyProgress("7", "steps", "", 1)
		if err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
		if len(update.Updated) != 1 {
			t.Fatalf("call %d updated %d rows, want 1", i+1, len(update.Updated))
		}
		got := update.Updated[0]
		if got.CurrentProgress != want.progress || got.IsCompleted != want.completed {
			t.Errorf("call %d = %d/%t, want %d/%t", i+1, got.CurrentProgress, got.IsCompleted, want.progress, want.completed)
		}
		if i == 2 {
			completedAt = *got.CompletedAt
		}
		clk.Advance(time.Minute)
	}

	var stored models.Progress
	db.Where("player_id = ? AND quest_id = ?", "7", "walk").First(&stored)
	if stored.CurrentProgress != 3 || stored.CompletedAt == nil || !stored.CompletedAt.Equal(completedAt) {
		t.Errorf("stored = %+v, want 3 completed at %s", stored, completedAt)
	}
	if stored.DailyAssignmentID == nil {
		t.Error("progress not linked to its assignment")
	}
}

func TestApplyProgress_UpdatesEveryMatchingQuest(t *testing.T) {
	svc, db, _ := newProgressService(t)
	testutil.SeedQuest(t, db, models.Quest{ID: "short", Type: models.QuestTypeSteps, Count: 2})
	testutil.SeedQuest(t, db, models.Quest{ID: "long", Type: models.QuestTypeSteps, Count: 10})
	testutil.SeedQuest(t, db, models.Quest{ID: "retired", Type: models.QuestTypeSteps, Count: 10})
	testutil.SeedQuest(t, db, models.Quest{ID: "coins", Type: models.QuestTypeCollectCoins, Count: 10})
	for _, q := range []string{"short", "long", "retired", "coins"} {
		testutil.Assign(t, db, "7", q, today)
	}
	testutil.Deactivate(t, db, "retired")

	update, err := svc.ApplyProgress("7", "Steps", today, 5)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]int{}
	for _, p := range update.Updated {
		got[p.QuestID] = p.CurrentProgress
	}
	if len(got) != 2 || got["short"] != 2 || got["long"] != 5 {
		t.Errorf("updated = %v, want short=2 long=5", got)
	}
	if len(update.Failed) != 0 {
		t.Errorf("failed = %+v", update.Failed)
	}
}

func TestApplyProgress_IgnoresOtherDays(t *testing.T) {
	svc, db, _ := newProgressService(t)
	testutil.SeedQuest(t, db, models.Quest{ID: "walk", Count: 3})
	testutil.Assign(t, db, "7", "walk", "2026-10-13")

	update, err := svc.ApplyProgress("7", "steps", "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(update.Updated) != 0 {
		t.Errorf("updated %+v, want nothing for today", update.Updated)
	}
}

func TestApplyProgress_Errors(t *testing.T) {
	svc, _, _ := newProgressService(t)

	tests := []struct {
		name   string
		player string
		typ    string
		delta  int
		want   error
	}{
		{"zero delta", "7", "steps", 0, services.ErrInvalid},
		{"negative delta", "7", "steps", -2, services.ErrInvalid},
		{"empty type", "7", " ", 1, services.ErrInvalid},
		{"unknown player", "nobody", "steps", 1, services.ErrPlayerNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyProgress(tt.player, tt.typ, "", tt.delta)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLandmarkCaptured_FeedsCaptureQuests(t *testing.T) {
	svc, db, _ := newProgressService(t)
	testutil.SeedQuest(t, db, models.Quest{ID: "conquer", Type: models.QuestTypeCaptureLandmarks, Count: 2})
	testutil.Assign(t, db, "7", "conquer", today)

	svc.LandmarkCaptured(services.LandmarkCaptured{PlayerID: "7", LandmarkID: "X", CapturedAt: day})

	rows, err := svc.ProgressFor("7", today)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].CurrentProgress != 1 {
		t.Errorf("progress = %+v, want 1", rows)
	}
}

func TestApplyProgress_ItemizesFailedQuest(t *testing.T) {
	svc, db, _ := newProgressService(t)
	testutil.SeedQuest(t, db, models.Quest{ID: "ok", Type: models.QuestTypeSteps, Count: 5})
	testutil.SeedQuest(t, db, models.Quest{ID: "broken", Type: models.QuestTypeSteps, Count: 5})
	testutil.Assign(t, db, "7", "ok", today)
	testutil.Assign(t, db, "7", "broken", today)

	err := db.Callback().Update().Before("gorm:update").Register("test:fail_broken", func(tx *gorm.DB) {
		if p, ok := tx.Statement.Model.(*models.Progress); ok && p.QuestID == "broken" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	update, err := svc.ApplyProgress("7", "steps", today, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(update.Updated) != 1 || update.Updated[0].QuestID != "ok" || update.Updated[0].CurrentProgress != 2 {
		t.Errorf("updated = %+v, want only ok at 2", update.Updated)
	}
	if len(update.Failed) != 1 || update.Failed[0].QuestID != "broken" || update.Failed[0].Reason == "" {
		t.Errorf("failed = %+v, want broken itemized", update.Failed)
	}

	var broken models.Progress
	db.Where("player_id = ? AND quest_id = ?", "7", "broken").First(&broken)
	if broken.CurrentProgress != 0 {
		t.Errorf("broken progress = %d, want 0", broken.CurrentProgress)
	}
}
