package services

import (
	"errors"
	"fmt"
)

// Validation and state failures surfaced by the services. None of these are
// retried internally; the handlers map each one to a response code and pass
// the message through verbatim.
var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomNotJoinable = errors.New("room is not joinable")
	ErrNotAParticipant = errors.New("you are not part of this room")
	ErrCardNotInDeck   = errors.New("this card is not in your active deck")
	ErrAlreadyPlayed   = errors.New("you already played this round")
	ErrInvalidCard     = errors.New("unknown card id")
	ErrNoActiveDeck    = errors.New("an active deck is required")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrDeckNotFound  = errors.New("deck not found")
	ErrDeckSize      = fmt.Errorf("deck must contain exactly %d cards", DeckSize)
	ErrCardsNotOwned = errors.New("one or more cards do not belong to this user")
)

// RoomNotActiveError rejects a play against a room that is not in the active
// state. It carries the current status for diagnostics.
type RoomNotActiveError struct {
	Status string
}

func (e *RoomNotActiveError) Error() string {
	return fmt.Sprintf("room is not active (status=%s)", e.Status)
}
