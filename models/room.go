package models

import "time"

// Room lifecycle states. The only legal transitions are
// waiting → active (second player joins) and active → finished (a player
// completes a winning trio). Finished is terminal.
const (
	RoomWaiting  = "waiting"
	RoomActive   = "active"
	RoomFinished = "finished"
)

// Room is a two-player match identified by its public join code. The room
// exclusively owns its rounds; deleting a room cascades to them.
type Room struct {
	ID        string  `gorm:"primaryKey;type:uuid" json:"id"`
	Code      string  `gorm:"uniqueIndex;type:varchar(16);not null" json:"code"`
	Player1ID string  `gorm:"type:uuid;not null" json:"player1_id"`
	Player2ID *string `gorm:"type:uuid" json:"player2_id,omitempty"`

	Status string `gorm:"type:varchar(16);not null;default:'waiting'" json:"status"`

	Player1Score int `gorm:"not null;default:0" json:"player1_score"`
	Player2Score int `gorm:"not null;default:0" json:"player2_score"`

	// Set only when Status is finished; always one of the two players.
	WinnerID *string `gorm:"type:uuid" json:"winner_id,omitempty"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`

	Rounds []Round `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`

	Timestamps
}

// Round is one simultaneous exchange of cards. At most one round per room is
// unresolved at any time, and a resolved round is never reopened. Round
// numbers are 1-based and strictly increasing per room.
type Round struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	RoomID      string `gorm:"uniqueIndex:uq_room_round;type:uuid;not null" json:"room_id"`
	RoundNumber int    `gorm:"uniqueIndex:uq_room_round;not null" json:"round_number"`

	Player1CardID *uint `json:"player1_card_id,omitempty"`
	Player2CardID *uint `json:"player2_card_id,omitempty"`

	Resolved     bool    `gorm:"not null;default:false" json:"resolved"`
	WinnerUserID *string `gorm:"type:uuid" json:"winner_user_id,omitempty"` // nil on a draw

	Timestamps
}
