package services

import (
	"errors"
	"sync"
	"time"

	"card-jitsu-system/game"
	"card-jitsu-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchService drives the round lifecycle of a room: it validates play
// submissions, fills round slots, and resolves a round the moment both cards
// are in. All mutations for one submission commit in a single transaction,
// so a failed submission leaves no partial state behind.
type MatchService struct {
	DB *gorm.DB

	// Serializes the locate-round / fill-slot / resolve sequence per room so
	// two concurrent submissions can never both create round N, both claim
	// the same slot, or both apply resolution effects.
	roomLocks sync.Map // room id -> *sync.Mutex
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{DB: db}
}

// PlayCardCommand is the sole mutating entry point into a running match.
type PlayCardCommand struct {
	RoomCode string
	UserID   string
	CardID   uint
}

// RoundResult reports the (possibly just-resolved) round together with the
// room's committed scores and status.
type RoundResult struct {
	RoundNumber  int     `json:"round_number"`
	Resolved     bool    `json:"resolved"`
	WinnerUserID *string `json:"winner_user_id,omitempty"`

	RoomStatus   string  `json:"room_status"`
	Player1Score int     `json:"player1_score"`
	Player2Score int     `json:"player2_score"`
	RoomWinnerID *string `json:"room_winner_id,omitempty"`
}

func (s *MatchService) lockRoom(roomID string) func() {
	v, _ := s.roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// PlayCard validates a submission and writes the card into the room's
// current round, creating the round if none is open. When the write fills
// the second slot the round is resolved in the same transaction. A
// submission that fills only one slot returns immediately; nothing ever
// blocks waiting for the opponent.
func (s *MatchService) PlayCard(cmd PlayCardCommand) (*RoundResult, error) {
	var room models.Room
	err := s.DB.Where("code = ?", normalizeCode(cmd.RoomCode)).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	if room.Status != models.RoomActive {
		return nil, &RoomNotActiveError{Status: room.Status}
	}
	if !isParticipant(&room, cmd.UserID) {
		return nil, ErrNotAParticipant
	}

	inDeck, err := s.cardInActiveDeck(cmd.UserID, cmd.CardID)
	if err != nil {
		return nil, err
	}
	if !inDeck {
		return nil, ErrCardNotInDeck
	}

	unlock := s.lockRoom(room.ID)
	defer unlock()

	var result *RoundResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Reload under the lock: the room may have finished, or a round may
		// have been opened, since the checks above.
		if err := tx.First(&room, "id = ?", room.ID).Error; err != nil {
			return err
		}
		if room.Status != models.RoomActive {
			return &RoomNotActiveError{Status: room.Status}
		}

		isPlayer1 := cmd.UserID == room.Player1ID

		var round models.Round
		err := tx.Where("room_id = ? AND resolved = ?", room.ID, false).
			Order("round_number DESC").
			First(&round).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No open round: start the next one with the caller's slot set.
			var last int
			row := tx.Model(&models.Round{}).
				Where("room_id = ?", room.ID).
				Select("COALESCE(MAX(round_number), 0)").
				Row()
			if err := row.Scan(&last); err != nil {
				return err
			}

			round = models.Round{
				ID:          uuid.NewString(),
				RoomID:      room.ID,
				RoundNumber: last + 1,
			}
			if isPlayer1 {
				round.Player1CardID = &cmd.CardID
			} else {
				round.Player2CardID = &cmd.CardID
			}
			if err := tx.Create(&round).Error; err != nil {
				return err
			}

		case err != nil:
			return err

		default:
			// Fill the caller's side of the open round.
			column := "player1_card_id"
			filled := round.Player1CardID != nil
			if !isPlayer1 {
				column = "player2_card_id"
				filled = round.Player2CardID != nil
			}
			if filled {
				return ErrAlreadyPlayed
			}
			if err := tx.Model(&round).Update(column, cmd.CardID).Error; err != nil {
				return err
			}
			if isPlayer1 {
				round.Player1CardID = &cmd.CardID
			} else {
				round.Player2CardID = &cmd.CardID
			}
		}

		if round.Player1CardID != nil && round.Player2CardID != nil && !round.Resolved {
			if err := s.resolveRound(tx, &room, &round); err != nil {
				return err
			}
		}

		result = &RoundResult{
			RoundNumber:  round.RoundNumber,
			Resolved:     round.Resolved,
			WinnerUserID: round.WinnerUserID,
			RoomStatus:   room.Status,
			Player1Score: room.Player1Score,
			Player2Score: room.Player2Score,
			RoomWinnerID: room.WinnerID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveRound flips a filled round to resolved, applies scoring, and ends
// the room if either player's won cards now contain a winning trio. The
// conditional update on resolved = false makes resolution exactly-once: a
// competing resolver finds zero affected rows, reloads the stored outcome,
// and returns it unchanged.
func (s *MatchService) resolveRound(tx *gorm.DB, room *models.Room, round *models.Round) error {
	card1, err := lookupCard(tx, *round.Player1CardID)
	if err != nil {
		return err
	}
	card2, err := lookupCard(tx, *round.Player2CardID)
	if err != nil {
		return err
	}

	var winnerID *string
	switch game.Compare(card1, card2) {
	case game.FirstWins:
		winnerID = &room.Player1ID
	case game.SecondWins:
		winnerID = room.Player2ID
	}

	claim := tx.Model(&models.Round{}).
		Where("id = ? AND resolved = ?", round.ID, false).
		Updates(map[string]interface{}{
			"resolved":       true,
			"winner_user_id": winnerID,
		})
	if claim.Error != nil {
		return claim.Error
	}
	if claim.RowsAffected == 0 {
		// Lost the race: keep the stored outcome.
		if err := tx.First(round, "id = ?", round.ID).Error; err != nil {
			return err
		}
		return tx.First(room, "id = ?", room.ID).Error
	}
	round.Resolved = true
	round.WinnerUserID = winnerID

	if winnerID != nil {
		column := "player1_score"
		if *winnerID != room.Player1ID {
			column = "player2_score"
		}
		if err := tx.Model(room).Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return err
		}
		if err := tx.First(room, "id = ?", room.ID).Error; err != nil {
			return err
		}
	}

	// Player 1 is checked first on purpose: if both sides could complete a
	// trio on the same resolution, player 1 takes the match.
	var finalWinner *string
	p1Cards, err := wonCardsFor(tx, room, room.Player1ID, true)
	if err != nil {
		return err
	}
	if game.HasWinningTrio(p1Cards) {
		finalWinner = &room.Player1ID
	}
	if finalWinner == nil && room.Player2ID != nil {
		p2Cards, err := wonCardsFor(tx, room, *room.Player2ID, false)
		if err != nil {
			return err
		}
		if game.HasWinningTrio(p2Cards) {
			finalWinner = room.Player2ID
		}
	}
	if finalWinner == nil {
		return nil
	}

	now := time.Now().UTC()
	if err := tx.Model(room).Updates(map[string]interface{}{
		"status":    models.RoomFinished,
		"winner_id": *finalWinner,
		"ended_at":  now,
	}).Error; err != nil {
		return err
	}
	room.Status = models.RoomFinished
	room.WinnerID = finalWinner
	room.EndedAt = &now

	return recordMatchResult(tx, *finalWinner, otherPlayer(room, *finalWinner))
}

// recordMatchResult bumps the win/loss and games-played counters once per
// finished match. Increments go through SQL expressions so concurrent
// finishes in other rooms accumulate instead of overwriting each other.
func recordMatchResult(tx *gorm.DB, winnerID, loserID string) error {
	err := tx.Model(&models.User{}).
		Where("id = ?", winnerID).
		Updates(map[string]interface{}{
			"win_count":   gorm.Expr("win_count + 1"),
			"total_games": gorm.Expr("total_games + 1"),
		}).Error
	if err != nil {
		return err
	}
	if loserID == "" {
		return nil
	}
	return tx.Model(&models.User{}).
		Where("id = ?", loserID).
		Update("total_games", gorm.Expr("total_games + 1")).Error
}

// wonCardsFor collects, in round order, the cards a player has played in the
// rounds they won. This is the input to the winning-trio check and to the
// room snapshot.
func wonCardsFor(tx *gorm.DB, room *models.Room, playerID string, isPlayer1 bool) ([]models.Card, error) {
	var rounds []models.Round
	err := tx.Where("room_id = ? AND resolved = ? AND winner_user_id = ?", room.ID, true, playerID).
		Order("round_number ASC").
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}

	cards := make([]models.Card, 0, len(rounds))
	for _, r := range rounds {
		cardID := r.Player1CardID
		if !isPlayer1 {
			cardID = r.Player2CardID
		}
		if cardID == nil {
			continue
		}
		c, err := lookupCard(tx, *cardID)
		if err != nil {
			return nil, err
		}
		cards = append(cards, *c)
	}
	return cards, nil
}

func lookupCard(tx *gorm.DB, cardID uint) (*models.Card, error) {
	var c models.Card
	err := tx.First(&c, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCard
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MatchService) cardInActiveDeck(userID string, cardID uint) (bool, error) {
	deck, err := activeDeckOf(s.DB, userID)
	if err != nil {
		return false, err
	}
	if deck == nil {
		return false, ErrNoActiveDeck
	}

	var count int64
	err = s.DB.Model(&models.DeckCard{}).
		Where("deck_id = ? AND card_id = ?", deck.ID, cardID).
		Count(&count).Error
	return count > 0, err
}

func isParticipant(room *models.Room, userID string) bool {
	if userID == room.Player1ID {
		return true
	}
	return room.Player2ID != nil && *room.Player2ID == userID
}

func otherPlayer(room *models.Room, winnerID string) string {
	if winnerID == room.Player1ID {
		if room.Player2ID != nil {
			return *room.Player2ID
		}
		return ""
	}
	return room.Player1ID
}
