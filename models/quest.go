package models

import "time"

// RewardType is what a completed quest pays out.
type RewardType string

const (
	RewardTypeCoins      RewardType = "coins"
	RewardTypeExperience RewardType = "experience"
	RewardTypeItem       RewardType = "item"
)

func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeCoins, RewardTypeExperience, RewardTypeItem:
		return true
	}
	return false
}

// Quest types fed by game events.
const (
	QuestTypeMarkSights       = "mark_sights"
	QuestTypeCaptureLandmarks = "capture_landmarks"
	QuestTypeSteps            = "steps"
	QuestTypeCollectCoins     = "collect_coins"
)

// Quest is a catalog template. Rows change only through catalog sync.
type Quest struct {
	ID           string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Type         string     `gorm:"type:varchar(64);not null;index" json:"type"`
	Title        string     `gorm:"size:100;not null" json:"title"`
	Description  string     `gorm:"size:300" json:"description"`
	Count        int        `gorm:"not null" json:"count"`
	RewardType   RewardType `gorm:"type:varchar(16);not null" json:"reward_type"`
	RewardAmount int64      `gorm:"not null" json:"reward_amount"`
	ItemID       *string    `gorm:"type:varchar(64)" json:"item_id,omitempty"`
	PromoCode    string     `gorm:"size:100" json:"promo_code,omitempty"`
	IsActive     bool       `gorm:"not null;index" json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// DailyAssignment offers a quest to a player for one calendar day.
type DailyAssignment struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_assignment_player_quest_date,priority:1;index:idx_assignment_player_date,priority:1" json:"player_id"`
	QuestID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_assignment_player_quest_date,priority:2" json:"quest_id"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_assignment_player_quest_date,priority:3;index:idx_assignment_player_date,priority:2" json:"date"`
	Quest     Quest     `gorm:"foreignKey:QuestID" json:"quest"`
	CreatedAt time.Time `json:"created_at"`
}

// Progress accumulates toward a quest for one player and one day.
// CurrentProgress only grows and is capped at Quest.Count; IsCompleted and
// RewardClaimed only ever flip from false to true.
type Progress struct {
	ID                string     `gorm:"primaryKey;type:uuid" json:"id"`
	PlayerID          string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_progress_player_quest_date,priority:1;index:idx_progress_player_date,priority:1" json:"player_id"`
	QuestID           string     `gorm:"type:varchar(64);not null;uniqueIndex:idx_progress_player_quest_date,priority:2" json:"quest_id"`
	Date              string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_progress_player_quest_date,priority:3;index:idx_progress_player_date,priority:2" json:"date"`
	DailyAssignmentID *string    `gorm:"type:uuid" json:"daily_assignment_id,omitempty"`
	CurrentProgress   int        `gorm:"not null;default:0" json:"current_progress"`
	IsCompleted       bool       `gorm:"not null;default:false" json:"is_completed"`
	RewardClaimed     bool       `gorm:"not null;default:false" json:"reward_claimed"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ClaimedAt         *time.Time `json:"claimed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName keeps the table name readable next to quests.
func (Progress) TableName() string {
	return "quest_progress"
}
