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

// DefaultCaptureCooldown is the minimum time between two ownership changes.
const DefaultCaptureCooldown = time.Hour

// LandmarkCaptured is emitted after an accepted capture has been committed.
type LandmarkCaptured struct {
	PlayerID   string
	LandmarkID string
	ClanID     *string
	CapturedAt time.Time
}

// CaptureListener receives accepted captures. Implementations must not block.
type CaptureListener interface {
	LandmarkCaptured(evt LandmarkCaptured)
}

type OwnerRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ClanRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CaptureResult describes an attempt. A rejection is not an error: Accepted is
// false and RetryAfter says how long the current owner is protected.
type CaptureResult struct {
	Accepted   bool            `json:"accepted"`
	Capture    *models.Capture `json:"capture"`
	Owner      OwnerRef        `json:"current_owner"`
	Clan       *ClanRef        `json:"clan"`
	CapturedAt time.Time       `json:"captured_at"`
	RetryAfter time.Duration   `json:"-"`
}

// Ownership is the read model for a landmark.
type Ownership struct {
	ExternalID    string        `json:"external_id"`
	Captured      bool          `json:"captured"`
	CanCaptureNow bool          `json:"can_capture_now"`
	CapturedBy    *OwnerRef     `json:"captured_by"`
	CapturedAt    *time.Time    `json:"captured_at"`
	Clan          *ClanRef      `json:"clan"`
	RetryAfter    time.Duration `json:"-"`
}

type CaptureService struct {
	DB        *gorm.DB
	Cooldown  time.Duration
	Now       func() time.Time
	listeners []CaptureListener
}

func NewCaptureService(db *gorm.DB, cooldown time.Duration) *CaptureService {
	if cooldown <= 0 {
		cooldown = DefaultCaptureCooldown
	}
	return &CaptureService{DB: db, Cooldown: cooldown, Now: time.Now}
}

func (s *CaptureService) Subscribe(l CaptureListener) {
	s.listeners = append(s.listeners, l)
}

// AttemptCapture tries to make playerID the owner of landmarkID.
//
// The landmark row is locked for the whole read-decide-append sequence, so of
// two concurrent attempts after the cooldown exactly one is accepted and the
// other observes the new capture as latest.
func (s *CaptureService) AttemptCapture(landmarkID, playerID string, clanID *string) (*CaptureResult, error) {
	landmarkID, err := landmarkKey(landmarkID)
	if err != nil {
		return nil, err
	}

	var (
		result CaptureResult
		latest models.Capture
	)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := findPlayer(tx, playerID, false); err != nil {
			return err
		}

		lm := models.Landmark{ExternalID: landmarkID, FirstSeenAt: s.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&lm).Error; err != nil {
			return fmt.Errorf("register landmark %s: %w", landmarkID, err)
		}
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_id = ?", landmarkID).
			First(&lm).Error; err != nil {
			return fmt.Errorf("lock landmark %s: %w", landmarkID, err)
		}

		found, err := latestCapture(tx, landmarkID, &latest)
		if err != nil {
			return err
		}

		now := s.Now().UTC()
		if found {
			elapsed := now.Sub(latest.CapturedAt)
			if elapsed < s.Cooldown {
				result = CaptureResult{
					Accepted:   false,
					Capture:    &latest,
					CapturedAt: latest.CapturedAt,
					RetryAfter: s.Cooldown - elapsed,
				}
				return nil
			}
		}

		capture := models.Capture{
			ID:                 uuid.NewString(),
			LandmarkExternalID: landmarkID,
			CapturedByPlayerID: playerID,
			ClanID:             clanID,
			CapturedAt:         now,
		}
		if err := tx.Create(&capture).Error; err != nil {
			return fmt.Errorf("append capture for %s: %w", landmarkID, err)
		}
		result = CaptureResult{Accepted: true, Capture: &capture, CapturedAt: now}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Owner, result.Clan = s.describeOwner(result.Capture.CapturedByPlayerID, result.Capture.ClanID)

	if !result.Accepted {
		log.Printf("⏳ [CAPTURE] %s rejected for %s: owned by %s, retry in %s",
			landmarkID, playerID, result.Owner.ID, result.RetryAfter.Round(time.Second))
		return &result, nil
	}

	log.Printf("🏴 [CAPTURE] %s captured by %s (clan=%v)", landmarkID, playerID, derefOr(clanID, "-"))
	evt := LandmarkCaptured{PlayerID: playerID, LandmarkID: landmarkID, ClanID: clanID, CapturedAt: result.CapturedAt}
	for _, l := range s.listeners {
		l.LandmarkCaptured(evt)
	}
	return &result, nil
}

// GetOwnership reports the current owner of a landmark. Landmarks that were
// never captured come back with Captured=false and CanCaptureNow=true.
func (s *CaptureService) GetOwnership(landmarkID string) (*Ownership, error) {
	landmarkID, err := landmarkKey(landmarkID)
	if err != nil {
		return nil, err
	}

	var latest models.Capture
	found, err := latestCapture(s.DB, landmarkID, &latest)
	if err != nil {
		return nil, err
	}

	own := &Ownership{ExternalID: landmarkID, CanCaptureNow: true}
	if !found {
		return own, nil
	}

	owner, clan := s.describeOwner(latest.CapturedByPlayerID, latest.ClanID)
	capturedAt := latest.CapturedAt
	own.Captured = true
	own.CapturedBy = &owner
	own.CapturedAt = &capturedAt
	own.Clan = clan

	if elapsed := s.Now().UTC().Sub(latest.CapturedAt); elapsed < s.Cooldown {
		own.CanCaptureNow = false
		own.RetryAfter = s.Cooldown - elapsed
	}
	return own, nil
}

// CaptureHistory returns accepted captures of a landmark, newest first.
func (s *CaptureService) CaptureHistory(landmarkID string, limit int) ([]models.Capture, error) {
	landmarkID, err := landmarkKey(landmarkID)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	var captures []models.Capture
	err = s.DB.Where("landmark_external_id = ?", landmarkID).
		Order("captured_at DESC").
		Limit(limit).
		Find(&captures).Error
	if err != nil {
		return nil, fmt.Errorf("load capture history for %s: %w", landmarkID, err)
	}
	return captures, nil
}

// ClanLandmarkCount counts distinct landmarks ever captured by a clan.
func (s *CaptureService) ClanLandmarkCount(clanID string) (int64, error) {
	if clanID == "" {
		return 0, invalidf("clan id is required")
	}
	var n int64
	err := s.DB.Model(&models.Capture{}).
		Where("clan_id = ?", clanID).
		Distinct("landmark_external_id").
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count clan landmarks for %s: %w", clanID, err)
	}
	return n, nil
}

// landmarkKey normalizes an external id and checks it fits the landmark key column.
func landmarkKey(raw string) (string, error) {
	id := NormalizeLandmarkID(raw)
	switch {
	case id == "":
		return "", invalidf("external_id is required")
	case len(id) > maxLandmarkIDLength:
		return "", invalidf("external_id longer than %d characters", maxLandmarkIDLength)
	}
	return id, nil
}

func latestCapture(db *gorm.DB, landmarkID string, into *models.Capture) (bool, error) {
	var rows []models.Capture
	if err := db.Where("landmark_external_id = ?", landmarkID).
		Order("captured_at DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return false, fmt.Errorf("load latest capture for %s: %w", landmarkID, err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	*into = rows[0]
	return true, nil
}

// describeOwner decorates ids with mirrored names. Missing mirrors are not an
// error; the client falls back to ids.
func (s *CaptureService) describeOwner(playerID string, clanID *string) (OwnerRef, *ClanRef) {
	owner := OwnerRef{ID: playerID}
	var p models.Player
	if err := s.DB.Select("id", "username").Where("id = ?", playerID).Limit(1).Find(&p).Error; err == nil {
		owner.Username = p.Username
	}

	if clanID == nil {
		return owner, nil
	}
	clan := &ClanRef{ID: *clanID}
	var c models.Clan
	if err := s.DB.Where("id = ?", *clanID).Limit(1).Find(&c).Error; err == nil {
		clan.Name = c.Name
	}
	return owner, clan
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
