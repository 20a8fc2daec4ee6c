package models

import "time"

// PromoGrant is a promo code issued for one completed quest instance.
type PromoGrant struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_promo_grant_unique,priority:1" json:"player_id"`
	QuestID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_promo_grant_unique,priority:2" json:"quest_id"`
	Date       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_promo_grant_unique,priority:3" json:"date"`
	PromoCode  string    `gorm:"size:100;not null;uniqueIndex:idx_promo_grant_unique,priority:4" json:"promo_code"`
	ProgressID string    `gorm:"type:uuid;not null" json:"progress_id"`
	IssuedAt   time.Time `gorm:"not null" json:"issued_at"`
}

// RewardGrant is the audit row written once per claimed quest instance.
// Item rewards are recorded here without any inventory side effect.
type RewardGrant struct {
	ID           string     `gorm:"primaryKey;type:uuid" json:"id"`
	ProgressID   string     `gorm:"type:uuid;not null;uniqueIndex" json:"progress_id"`
	PlayerID     string     `gorm:"type:varchar(64);not null;index" json:"player_id"`
	QuestID      string     `gorm:"type:varchar(64);not null" json:"quest_id"`
	Date         string     `gorm:"type:varchar(10);not null" json:"date"`
	RewardType   RewardType `gorm:"type:varchar(16);not null" json:"reward_type"`
	Amount       int64      `gorm:"not null" json:"amount"`
	ItemID       *string    `gorm:"type:varchar(64)" json:"item_id,omitempty"`
	LevelsGained int        `gorm:"not null;default:0" json:"levels_gained"`
	GrantedAt    time.Time  `gorm:"not null" json:"granted_at"`
}
