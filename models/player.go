package models

import (
	"time"

	"gorm.io/gorm"
)

// Player is the local mirror of an account from the identity provider.
// Username and ClanID are written by the profile sync worker only; the
// economy columns (coins, experience, level) are owned by this service.
type Player struct {
	ID       string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username string  `gorm:"index" json:"username"`
	ClanID   *string `gorm:"type:varchar(64);index" json:"clan_id,omitempty"`

	Coins      int64 `gorm:"not null;default:0" json:"coins"`
	Experience int64 `gorm:"not null;default:0" json:"experience"`
	Level      int   `gorm:"not null;default:1" json:"level"`

	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
