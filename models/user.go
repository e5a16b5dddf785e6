package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered player. Match bookkeeping (wins, games played) lives
// directly on the row; the match service increments the counters exactly
// once per finished room.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Username     string `gorm:"uniqueIndex;type:varchar(32);not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`

	WinCount   int64 `gorm:"not null;default:0" json:"win_count"`
	TotalGames int64 `gorm:"not null;default:0" json:"total_games"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
