package models

import "time"

// Landmark is created the first time any player touches an external id.
// Capture attempts lock this row to serialize ownership changes.
type Landmark struct {
	ExternalID  string    `gorm:"primaryKey;type:varchar(100)" json:"external_id"`
	FirstSeenAt time.Time `gorm:"not null" json:"first_seen_at"`
}

// Observation records that a player has visited a landmark. One row per
// (player, landmark); never updated or deleted.
type Observation struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID           string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_observation_player_landmark,priority:1" json:"player_id"`
	LandmarkExternalID string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_observation_player_landmark,priority:2" json:"external_id"`
	ObservedAt         time.Time `gorm:"not null;index" json:"observed_at"`
}

// Capture is one accepted ownership change. The current owner of a landmark
// is the newest row for its external id.
type Capture struct {
	ID                 string    `gorm:"primaryKey;type:uuid" json:"id"`
	LandmarkExternalID string    `gorm:"type:varchar(100);not null;index:idx_capture_landmark_time,priority:1" json:"external_id"`
	CapturedByPlayerID string    `gorm:"type:varchar(64);not null;index" json:"captured_by"`
	ClanID             *string   `gorm:"type:varchar(64);index" json:"clan_id,omitempty"`
	CapturedAt         time.Time `gorm:"not null;index:idx_capture_landmark_time,priority:2" json:"captured_at"`
}
