package services

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"card-jitsu-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomService owns room creation, the waiting → active join transition, and
// the read-only room snapshot used by UI polling.
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

const roomCodeLength = 6

// Ambiguous characters (0/O, 1/I) are left out of join codes.
const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newRoomCode allocates a code not currently in use, retrying on collision.
func (s *RoomService) newRoomCode() (string, error) {
	for {
		b := make([]byte, roomCodeLength)
		for i := range b {
			b[i] = roomCodeAlphabet[rand.Intn(len(roomCodeAlphabet))]
		}
		code := string(b)

		var count int64
		if err := s.DB.Model(&models.Room{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
}

// CreateRoom opens a new waiting room with the caller as player 1. An
// active deck is required up front so the room can never get stuck with a
// player who has nothing to play.
func (s *RoomService) CreateRoom(userID string) (*models.Room, error) {
	deck, err := activeDeckOf(s.DB, userID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrNoActiveDeck
	}

	code, err := s.newRoomCode()
	if err != nil {
		return nil, err
	}

	room := models.Room{
		ID:        uuid.NewString(),
		Code:      code,
		Player1ID: userID,
		Status:    models.RoomWaiting,
	}
	if err := s.DB.Create(&room).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// JoinRoom seats the caller as player 2 and activates the room. The
// transition is a conditional update on status = waiting, so two concurrent
// joiners cannot both take the seat.
func (s *RoomService) JoinRoom(code, userID string) (*models.Room, error) {
	var room models.Room
	err := s.DB.Where("code = ?", normalizeCode(code)).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	if room.Status != models.RoomWaiting {
		return nil, ErrRoomNotJoinable
	}
	if room.Player1ID == userID {
		return nil, ErrRoomNotJoinable
	}

	deck, err := activeDeckOf(s.DB, userID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrNoActiveDeck
	}

	now := time.Now().UTC()
	res := s.DB.Model(&models.Room{}).
		Where("id = ? AND status = ?", room.ID, models.RoomWaiting).
		Updates(map[string]interface{}{
			"player2_id": userID,
			"status":     models.RoomActive,
			"started_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Someone else took the seat between the read and the update.
		return nil, ErrRoomNotJoinable
	}

	room.Player2ID = &userID
	room.Status = models.RoomActive
	room.StartedAt = &now
	return &room, nil
}

// CardPayload is the wire shape of a catalog card inside snapshots.
type CardPayload struct {
	ID         uint    `json:"id"`
	Element    string  `json:"element"`
	Power      int     `json:"power"`
	Colour     string  `json:"colour"`
	Name       string  `json:"name"`
	ArtworkURL *string `json:"artwork_url,omitempty"`
}

// MoveSummary is one line of a room's round history.
type MoveSummary struct {
	RoundNumber  int     `json:"round_number"`
	Resolved     bool    `json:"resolved"`
	WinnerUserID *string `json:"winner_user_id,omitempty"`
}

// RoomSnapshot is the read-only projection a polling client renders. It only
// ever reflects committed state: every mutation commits in one transaction
// before any snapshot can observe it.
type RoomSnapshot struct {
	RoomCode     string  `json:"room_code"`
	Status       string  `json:"status"`
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	WinnerID     *string `json:"winner_id,omitempty"`

	Player1Username string  `json:"player1_username"`
	Player2Username *string `json:"player2_username,omitempty"`
	WinnerUsername  *string `json:"winner_username,omitempty"`

	LastRoundPlayer1Card    *CardPayload `json:"last_round_player1_card,omitempty"`
	LastRoundPlayer2Card    *CardPayload `json:"last_round_player2_card,omitempty"`
	LastRoundWinnerUsername *string      `json:"last_round_winner_username,omitempty"`

	Player1WonCards []CardPayload `json:"player1_won_cards"`
	Player2WonCards []CardPayload `json:"player2_won_cards"`

	Moves []MoveSummary `json:"moves"`
}

// Snapshot builds the full room view for one of its participants.
func (s *RoomService) Snapshot(code, userID string) (*RoomSnapshot, error) {
	var room models.Room
	err := s.DB.Where("code = ?", normalizeCode(code)).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	if !isParticipant(&room, userID) {
		return nil, ErrNotAParticipant
	}

	snap := &RoomSnapshot{
		RoomCode:        room.Code,
		Status:          room.Status,
		Player1Score:    room.Player1Score,
		Player2Score:    room.Player2Score,
		WinnerID:        room.WinnerID,
		Player1WonCards: []CardPayload{},
		Player2WonCards: []CardPayload{},
		Moves:           []MoveSummary{},
	}

	if name, err := s.usernameOf(room.Player1ID); err == nil {
		snap.Player1Username = name
	} else {
		return nil, err
	}
	if room.Player2ID != nil {
		name, err := s.usernameOf(*room.Player2ID)
		if err != nil {
			return nil, err
		}
		snap.Player2Username = &name
	}
	if room.WinnerID != nil {
		name, err := s.usernameOf(*room.WinnerID)
		if err != nil {
			return nil, err
		}
		snap.WinnerUsername = &name
	}

	var rounds []models.Round
	err = s.DB.Where("room_id = ?", room.ID).Order("round_number ASC").Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rounds {
		snap.Moves = append(snap.Moves, MoveSummary{
			RoundNumber:  r.RoundNumber,
			Resolved:     r.Resolved,
			WinnerUserID: r.WinnerUserID,
		})
	}

	if len(rounds) > 0 {
		last := rounds[len(rounds)-1]
		if last.Player1CardID != nil {
			c, err := lookupCard(s.DB, *last.Player1CardID)
			if err != nil {
				return nil, err
			}
			snap.LastRoundPlayer1Card = cardPayload(c)
		}
		if last.Player2CardID != nil {
			c, err := lookupCard(s.DB, *last.Player2CardID)
			if err != nil {
				return nil, err
			}
			snap.LastRoundPlayer2Card = cardPayload(c)
		}
		if last.WinnerUserID != nil {
			name, err := s.usernameOf(*last.WinnerUserID)
			if err != nil {
				return nil, err
			}
			snap.LastRoundWinnerUsername = &name
		}
	}

	p1Cards, err := wonCardsFor(s.DB, &room, room.Player1ID, true)
	if err != nil {
		return nil, err
	}
	for i := range p1Cards {
		snap.Player1WonCards = append(snap.Player1WonCards, *cardPayload(&p1Cards[i]))
	}
	if room.Player2ID != nil {
		p2Cards, err := wonCardsFor(s.DB, &room, *room.Player2ID, false)
		if err != nil {
			return nil, err
		}
		for i := range p2Cards {
			snap.Player2WonCards = append(snap.Player2WonCards, *cardPayload(&p2Cards[i]))
		}
	}

	return snap, nil
}

func (s *RoomService) usernameOf(userID string) (string, error) {
	var user models.User
	if err := s.DB.Select("username").First(&user, "id = ?", userID).Error; err != nil {
		return "", err
	}
	return user.Username, nil
}

func cardPayload(c *models.Card) *CardPayload {
	if c == nil {
		return nil
	}
	return &CardPayload{
		ID:         c.ID,
		Element:    c.Element,
		Power:      c.Power,
		Colour:     c.Colour,
		Name:       c.Name,
		ArtworkURL: c.ArtworkURL,
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
