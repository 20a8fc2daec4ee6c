package models

import "time"

// Clan mirrors clan names from the clan service so ownership responses can
// show them. Membership itself lives on Player.ClanID.
type Clan struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
