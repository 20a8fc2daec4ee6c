package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"landmark-quest-system/models"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxLandmarkIDLength = 100

// LandmarksObserved is emitted once per batch that recorded at least one new id.
type LandmarksObserved struct {
	PlayerID    string
	LandmarkIDs []string
	ObservedAt  time.Time
}

type ObservationListener interface {
	LandmarksObserved(evt LandmarksObserved)
}

// SkippedID is a batch entry that could not be recorded.
type SkippedID struct {
	ExternalID string `json:"external_id"`
	Reason     string `json:"reason"`
}

// ObservationBatch lists ids recorded for the first time by this call. Ids the
// player had already visited appear in neither list.
type ObservationBatch struct {
	PlayerID string      `json:"player_id"`
	Recorded []string    `json:"saved_external_ids"`
	Skipped  []SkippedID `json:"skipped,omitempty"`
}

type ObservationService struct {
	DB        *gorm.DB
	Now       func() time.Time
	listeners []ObservationListener
}

func NewObservationService(db *gorm.DB) *ObservationService {
	return &ObservationService{DB: db, Now: time.Now}
}

func (s *ObservationService) Subscribe(l ObservationListener) {
	s.listeners = append(s.listeners, l)
}

// NormalizeLandmarkID trims and NFC-normalizes an external landmark id.
func NormalizeLandmarkID(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

// RecordObservations stores every id the player has not visited before.
// Malformed entries are skipped and itemized; they never abort the batch.
func (s *ObservationService) RecordObservations(playerID string, ids []string) (*ObservationBatch, error) {
	if len(ids) == 0 {
		return nil, invalidf("external_ids must not be empty")
	}
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}

	batch := &ObservationBatch{PlayerID: playerID, Recorded: []string{}}
	seen := make(map[string]struct{}, len(ids))
	now := s.Now().UTC()

	for _, raw := range ids {
		id := NormalizeLandmarkID(raw)
		switch {
		case id == "":
			batch.Skipped = append(batch.Skipped, SkippedID{ExternalID: raw, Reason: "empty id"})
			continue
		case len(id) > maxLandmarkIDLength:
			batch.Skipped = append(batch.Skipped, SkippedID{ExternalID: id, Reason: "id too long"})
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		obs := models.Observation{
			ID:                 uuid.NewString(),
			PlayerID:           playerID,
			LandmarkExternalID: id,
			ObservedAt:         now,
		}
		res := s.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "player_id"}, {Name: "landmark_external_id"}},
			DoNothing: true,
		}).Create(&obs)
		if res.Error != nil {
			log.Printf("⚠️ [OBSERVE] failed to save %s for player %s: %v", id, playerID, res.Error)
			batch.Skipped = append(batch.Skipped, SkippedID{ExternalID: id, Reason: "storage error"})
			continue
		}
		if res.RowsAffected == 1 {
			batch.Recorded = append(batch.Recorded, id)
		}
	}

	log.Printf("📍 [OBSERVE] player %s: %d new, %d skipped, %d submitted",
		playerID, len(batch.Recorded), len(batch.Skipped), len(ids))

	if len(batch.Recorded) > 0 {
		evt := LandmarksObserved{PlayerID: playerID, LandmarkIDs: batch.Recorded, ObservedAt: now}
		for _, l := range s.listeners {
			l.LandmarksObserved(evt)
		}
	}
	return batch, nil
}

// ObservedLandmarks returns every landmark the player has visited, newest first.
func (s *ObservationService) ObservedLandmarks(playerID string) ([]string, error) {
	if _, err := findPlayer(s.DB, playerID, false); err != nil {
		return nil, err
	}
	ids := []string{}
	err := s.DB.Model(&models.Observation{}).
		Where("player_id = ?", playerID).
		Order("observed_at DESC").
		Pluck("landmark_external_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load observations for %s: %w", playerID, err)
	}
	return ids, nil
}
