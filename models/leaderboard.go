package models

// LeaderboardEntry is a denormalized ranking row rebuilt periodically by the
// scheduler from user win counters. Readers only ever see a fully rebuilt
// table; the refresh runs in one transaction.
type LeaderboardEntry struct {
	ID         string  `gorm:"primaryKey;type:uuid" json:"id"`
	Rank       int     `gorm:"not null" json:"rank"`
	UserID     string  `gorm:"uniqueIndex;type:uuid;not null" json:"user_id"`
	Username   string  `gorm:"type:varchar(32);not null" json:"username"`
	WinCount   int64   `json:"win_count"`
	TotalGames int64   `json:"total_games"`
	WinRate    float64 `json:"win_rate"`

	Timestamps
}
