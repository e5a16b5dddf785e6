package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"card-jitsu-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// matchEnv is a ready-to-play active room: two seated players, each with an
// active deck. Deck layout (index -> card):
//
//	p1: 0 fire/red@5, 1 water/red@5, 2 grass/red@5, 3 fire/green@7
//	p2: 0 grass/blue@3, 1 fire/blue@3, 2 water/blue@3, 3 fire/yellow@7
//
// Playing p1[i] against p2[i] for i in 0..2 gives player 1 three element
// wins whose cards form the three-elements-same-colour trio. The two @7 fire
// cards draw against each other.
type matchEnv struct {
	db  *gorm.DB
	svc *MatchService

	p1, p2  models.User
	room    models.Room
	p1Cards []models.Card
	p2Cards []models.Card
}

func newMatchEnv(t *testing.T) *matchEnv {
	t.Helper()
	db := newTestDB(t)

	env := &matchEnv{
		db:  db,
		svc: NewMatchService(db),
		p1:  createUser(t, db, "alice"),
		p2:  createUser(t, db, "bob"),
	}

	env.p1Cards = []models.Card{
		createCard(t, db, models.ElementFire, 5, "red"),
		createCard(t, db, models.ElementWater, 5, "red"),
		createCard(t, db, models.ElementGrass, 5, "red"),
		createCard(t, db, models.ElementFire, 7, "green"),
	}
	env.p2Cards = []models.Card{
		createCard(t, db, models.ElementGrass, 3, "blue"),
		createCard(t, db, models.ElementFire, 3, "blue"),
		createCard(t, db, models.ElementWater, 3, "blue"),
		createCard(t, db, models.ElementFire, 7, "yellow"),
	}

	createActiveDeck(t, db, env.p1.ID, env.p1Cards)
	createActiveDeck(t, db, env.p2.ID, env.p2Cards)

	now := time.Now().UTC()
	env.room = models.Room{
		ID:        uuid.NewString(),
		Code:      "ROOM42",
		Player1ID: env.p1.ID,
		Player2ID: &env.p2.ID,
		Status:    models.RoomActive,
		StartedAt: &now,
	}
	if err := db.Create(&env.room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	return env
}

func (e *matchEnv) play(t *testing.T, userID string, cardID uint) *RoundResult {
	t.Helper()
	res, err := e.svc.PlayCard(PlayCardCommand{RoomCode: e.room.Code, UserID: userID, CardID: cardID})
	if err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	return res
}

func TestPlayCardOpensRound(t *testing.T) {
	env := newMatchEnv(t)

	res := env.play(t, env.p1.ID, env.p1Cards[0].ID)
	if res.RoundNumber != 1 {
		t.Fatalf("round number = %d, want 1", res.RoundNumber)
	}
	if res.Resolved {
		t.Fatal("round resolved with only one card played")
	}
	if res.RoomStatus != models.RoomActive {
		t.Fatalf("room status = %q, want active", res.RoomStatus)
	}
	if res.Player1Score != 0 || res.Player2Score != 0 {
		t.Fatalf("scores moved before resolution: %d-%d", res.Player1Score, res.Player2Score)
	}
}

func TestRoundResolvesOnSecondCard(t *testing.T) {
	env := newMatchEnv(t)

	env.play(t, env.p1.ID, env.p1Cards[0].ID) // fire@5
	res := env.play(t, env.p2.ID, env.p2Cards[0].ID) // grass@3

	if !res.Resolved {
		t.Fatal("round not resolved after both cards played")
	}
	if res.WinnerUserID == nil || *res.WinnerUserID != env.p1.ID {
		t.Fatalf("round winner = %v, want player 1 (fire beats grass)", res.WinnerUserID)
	}
	if res.Player1Score != 1 || res.Player2Score != 0 {
		t.Fatalf("scores = %d-%d, want 1-0", res.Player1Score, res.Player2Score)
	}

	room := reloadRoom(t, env.db, env.room.ID)
	if room.Player1Score != 1 || room.Status != models.RoomActive {
		t.Fatalf("stored room = score %d status %q, want 1 active", room.Player1Score, room.Status)
	}
}

func TestDrawnRoundScoresNobody(t *testing.T) {
	env := newMatchEnv(t)

	env.play(t, env.p1.ID, env.p1Cards[3].ID) // fire@7
	res := env.play(t, env.p2.ID, env.p2Cards[3].ID) // fire@7

	if !res.Resolved {
		t.Fatal("round not resolved")
	}
	if res.WinnerUserID != nil {
		t.Fatalf("round winner = %q, want nil on a draw", *res.WinnerUserID)
	}
	if res.Player1Score != 0 || res.Player2Score != 0 {
		t.Fatalf("scores = %d-%d, want 0-0", res.Player1Score, res.Player2Score)
	}

	// The next play opens round 2; the drawn round is closed for good.
	next := env.play(t, env.p1.ID, env.p1Cards[0].ID)
	if next.RoundNumber != 2 || next.Resolved {
		t.Fatalf("next round = %d resolved=%v, want round 2 open", next.RoundNumber, next.Resolved)
	}
}

func TestSecondCardInSameRoundRejected(t *testing.T) {
	env := newMatchEnv(t)

	env.play(t, env.p1.ID, env.p1Cards[0].ID)

	_, err := env.svc.PlayCard(PlayCardCommand{
		RoomCode: env.room.Code,
		UserID:   env.p1.ID,
		CardID:   env.p1Cards[1].ID,
	})
	if !errors.Is(err, ErrAlreadyPlayed) {
		t.Fatalf("err = %v, want ErrAlreadyPlayed", err)
	}

	// The original card stays put.
	var round models.Round
	if err := env.db.First(&round, "room_id = ?", env.room.ID).Error; err != nil {
		t.Fatalf("failed to load round: %v", err)
	}
	if round.Player1CardID == nil || *round.Player1CardID != env.p1Cards[0].ID {
		t.Fatalf("player 1 card = %v, want the first submission", round.Player1CardID)
	}
	if round.Resolved {
		t.Fatal("round resolved with one slot filled")
	}
}

func TestMatchEndsOnWinningTrio(t *testing.T) {
	env := newMatchEnv(t)

	// Three element wins for player 1 with red fire/water/grass cards.
	for i := 0; i < 3; i++ {
		env.play(t, env.p1.ID, env.p1Cards[i].ID)
		res := env.play(t, env.p2.ID, env.p2Cards[i].ID)
		if res.WinnerUserID == nil || *res.WinnerUserID != env.p1.ID {
			t.Fatalf("round %d winner = %v, want player 1", i+1, res.WinnerUserID)
		}

		if i < 2 {
			if res.RoomStatus != models.RoomActive {
				t.Fatalf("room finished after round %d, want active", i+1)
			}
			continue
		}

		if res.RoomStatus != models.RoomFinished {
			t.Fatalf("room status after trio = %q, want finished", res.RoomStatus)
		}
		if res.RoomWinnerID == nil || *res.RoomWinnerID != env.p1.ID {
			t.Fatalf("room winner = %v, want player 1", res.RoomWinnerID)
		}
	}

	room := reloadRoom(t, env.db, env.room.ID)
	if room.Status != models.RoomFinished || room.EndedAt == nil {
		t.Fatalf("stored room = status %q ended_at %v", room.Status, room.EndedAt)
	}
	if room.Player1Score != 3 || room.Player2Score != 0 {
		t.Fatalf("final scores = %d-%d, want 3-0", room.Player1Score, room.Player2Score)
	}

	// Counters bump exactly once per finished match.
	winner := reloadUser(t, env.db, env.p1.ID)
	loser := reloadUser(t, env.db, env.p2.ID)
	if winner.WinCount != 1 || winner.TotalGames != 1 {
		t.Fatalf("winner counters = %d wins / %d games, want 1/1", winner.WinCount, winner.TotalGames)
	}
	if loser.WinCount != 0 || loser.TotalGames != 1 {
		t.Fatalf("loser counters = %d wins / %d games, want 0/1", loser.WinCount, loser.TotalGames)
	}

	// A finished room rejects further plays with its status attached.
	_, err := env.svc.PlayCard(PlayCardCommand{
		RoomCode: env.room.Code,
		UserID:   env.p2.ID,
		CardID:   env.p2Cards[3].ID,
	})
	var notActive *RoomNotActiveError
	if !errors.As(err, &notActive) {
		t.Fatalf("err = %v, want RoomNotActiveError", err)
	}
	if notActive.Status != models.RoomFinished {
		t.Fatalf("reported status = %q, want finished", notActive.Status)
	}
}

// Both players submit each round at the same time. Resolution must happen
// exactly once per round no matter which submission lands first, and a full
// match played this way must bump the stats counters exactly once.
func TestConcurrentSubmissionsResolveOnce(t *testing.T) {
	env := newMatchEnv(t)

	for i := 0; i < 3; i++ {
		cmds := []PlayCardCommand{
			{RoomCode: env.room.Code, UserID: env.p1.ID, CardID: env.p1Cards[i].ID},
			{RoomCode: env.room.Code, UserID: env.p2.ID, CardID: env.p2Cards[i].ID},
		}
		results := make([]*RoundResult, len(cmds))
		errs := make([]error, len(cmds))

		var wg sync.WaitGroup
		for slot, cmd := range cmds {
			wg.Add(1)
			go func(slot int, cmd PlayCardCommand) {
				defer wg.Done()
				results[slot], errs[slot] = env.svc.PlayCard(cmd)
			}(slot, cmd)
		}
		wg.Wait()

		for slot, err := range errs {
			if err != nil {
				t.Fatalf("round %d: submission %d failed: %v", i+1, slot, err)
			}
		}

		// The first submission to commit leaves the round open; only the
		// second observes the resolution.
		resolved := 0
		for _, res := range results {
			if res.RoundNumber != i+1 {
				t.Fatalf("round %d: result reports round %d", i+1, res.RoundNumber)
			}
			if res.Resolved {
				resolved++
				if res.WinnerUserID == nil || *res.WinnerUserID != env.p1.ID {
					t.Fatalf("round %d winner = %v, want player 1", i+1, res.WinnerUserID)
				}
			}
		}
		if resolved != 1 {
			t.Fatalf("round %d: %d submissions observed a resolution, want exactly 1", i+1, resolved)
		}
	}

	var resolvedRounds int64
	err := env.db.Model(&models.Round{}).
		Where("room_id = ? AND resolved = ?", env.room.ID, true).
		Count(&resolvedRounds).Error
	if err != nil {
		t.Fatalf("failed to count rounds: %v", err)
	}
	if resolvedRounds != 3 {
		t.Fatalf("room holds %d resolved rounds, want 3", resolvedRounds)
	}

	room := reloadRoom(t, env.db, env.room.ID)
	if room.Status != models.RoomFinished {
		t.Fatalf("room status = %q, want finished", room.Status)
	}
	if room.Player1Score != 3 || room.Player2Score != 0 {
		t.Fatalf("final scores = %d-%d, want 3-0", room.Player1Score, room.Player2Score)
	}

	winner := reloadUser(t, env.db, env.p1.ID)
	loser := reloadUser(t, env.db, env.p2.ID)
	if winner.WinCount != 1 || winner.TotalGames != 1 {
		t.Fatalf("winner counters = %d wins / %d games, want 1/1", winner.WinCount, winner.TotalGames)
	}
	if loser.WinCount != 0 || loser.TotalGames != 1 {
		t.Fatalf("loser counters = %d wins / %d games, want 0/1", loser.WinCount, loser.TotalGames)
	}
}

func TestPlayCardValidation(t *testing.T) {
	env := newMatchEnv(t)
	outsider := createUser(t, env.db, "carol")
	createActiveDeck(t, env.db, outsider.ID, env.p1Cards[:1])

	t.Run("unknown room", func(t *testing.T) {
		_, err := env.svc.PlayCard(PlayCardCommand{RoomCode: "NOSUCH", UserID: env.p1.ID, CardID: env.p1Cards[0].ID})
		if !errors.Is(err, ErrRoomNotFound) {
			t.Fatalf("err = %v, want ErrRoomNotFound", err)
		}
	})

	t.Run("room code is case-insensitive", func(t *testing.T) {
		res, err := env.svc.PlayCard(PlayCardCommand{RoomCode: "  room42 ", UserID: env.p1.ID, CardID: env.p1Cards[0].ID})
		if err != nil {
			t.Fatalf("PlayCard with lowercase code failed: %v", err)
		}
		if res.RoundNumber != 1 {
			t.Fatalf("round number = %d, want 1", res.RoundNumber)
		}
	})

	t.Run("non-participant", func(t *testing.T) {
		_, err := env.svc.PlayCard(PlayCardCommand{RoomCode: env.room.Code, UserID: outsider.ID, CardID: env.p1Cards[0].ID})
		if !errors.Is(err, ErrNotAParticipant) {
			t.Fatalf("err = %v, want ErrNotAParticipant", err)
		}
	})

	t.Run("card outside active deck", func(t *testing.T) {
		stray := createCard(t, env.db, models.ElementWater, 8, "purple")
		_, err := env.svc.PlayCard(PlayCardCommand{RoomCode: env.room.Code, UserID: env.p2.ID, CardID: stray.ID})
		if !errors.Is(err, ErrCardNotInDeck) {
			t.Fatalf("err = %v, want ErrCardNotInDeck", err)
		}
	})

	t.Run("no active deck", func(t *testing.T) {
		err := env.db.Model(&models.Deck{}).
			Where("user_id = ?", env.p2.ID).
			Update("is_active", false).Error
		if err != nil {
			t.Fatalf("failed to deactivate deck: %v", err)
		}
		_, err = env.svc.PlayCard(PlayCardCommand{RoomCode: env.room.Code, UserID: env.p2.ID, CardID: env.p2Cards[0].ID})
		if !errors.Is(err, ErrNoActiveDeck) {
			t.Fatalf("err = %v, want ErrNoActiveDeck", err)
		}
	})
}

func TestPlayCardInWaitingRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewMatchService(db)
	p1 := createUser(t, db, "alice")
	card := createCard(t, db, models.ElementFire, 5, "red")
	createActiveDeck(t, db, p1.ID, []models.Card{card})

	room := models.Room{ID: uuid.NewString(), Code: "WAIT01", Player1ID: p1.ID, Status: models.RoomWaiting}
	if err := db.Create(&room).Error; err != nil {
		t.Fatalf("failed to create room: %v", err)
	}

	_, err := svc.PlayCard(PlayCardCommand{RoomCode: room.Code, UserID: p1.ID, CardID: card.ID})
	var notActive *RoomNotActiveError
	if !errors.As(err, &notActive) {
		t.Fatalf("err = %v, want RoomNotActiveError", err)
	}
	if notActive.Status != models.RoomWaiting {
		t.Fatalf("reported status = %q, want waiting", notActive.Status)
	}
}
