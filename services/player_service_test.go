package services_test

import (
	"errors"
	"testing"

	"landmark-quest-system/services"
	"landmark-quest-system/testutil"
)

func TestEnsurePlayer_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	svc := services.NewPlayerService(db, 1000)

	p, err := svc.EnsurePlayer("7", "alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.Level != 1 || p.Username != "alice" {
		t.Errorf("player = %+v", p)
	}
	if _, err := svc.AddCoins("7", 30); err != nil {
		t.Fatal(err)
	}

	again, err := svc.EnsurePlayer("7", "renamed")
	if err != nil {
		t.Fatal(err)
	}
	if again.Username != "alice" || again.Coins != 30 {
		t.Errorf("second ensure = %+v, want untouched row", again)
	}
}

func TestAddExperience_LevelsUp(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedPlayer(t, db, "7", nil)
	svc := services.NewPlayerService(db, 1000)

	p, res, err := svc.AddExperience("7", 1500)
	if err != nil {
		t.Fatal(err)
	}
	if p.Level != 2 || p.Experience != 500 || res.LevelsGained != 1 {
		t.Errorf("player = %+v, result = %+v", p, res)
	}
	if stats := svc.StatsOf(p); stats.ExperienceToNextLevel != 500 {
		t.Errorf("to next level = %d, want 500", stats.ExperienceToNextLevel)
	}
}

func TestPlayerService_Errors(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.SeedPlayer(t, db, "7", nil)
	svc := services.NewPlayerService(db, 1000)

	if _, err := svc.AddCoins("7", -5); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("negative coins err = %v", err)
	}
	if _, _, err := svc.AddExperience("7", -5); !errors.Is(err, services.ErrInvalid) {
		t.Errorf("negative experience err = %v", err)
	}
	if _, err := svc.GetPlayer("nobody"); !errors.Is(err, services.ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v", err)
	}
	if _, err := svc.AddCoins("nobody", 5); !errors.Is(err, services.ErrPlayerNotFound) {
		t.Errorf("coins for unknown player err = %v", err)
	}
}
