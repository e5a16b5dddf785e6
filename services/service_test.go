package services

import (
	"path/filepath"
	"testing"

	"card-jitsu-system/models"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.UserCard{},
		&models.Deck{},
		&models.DeckCard{},
		&models.Room{},
		&models.Round{},
		&models.LeaderboardEntry{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()
	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "x",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func createCard(t *testing.T, db *gorm.DB, element string, power int, colour string) models.Card {
	t.Helper()
	card := models.Card{Element: element, Power: power, Colour: colour, Name: "test card"}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	return card
}

func createActiveDeck(t *testing.T, db *gorm.DB, userID string, cards []models.Card) models.Deck {
	t.Helper()
	deck := models.Deck{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     "Test Deck",
		Slug:     "test-deck",
		IsActive: true,
	}
	if err := db.Create(&deck).Error; err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}
	for _, c := range cards {
		dc := models.DeckCard{ID: uuid.NewString(), DeckID: deck.ID, CardID: c.ID}
		if err := db.Create(&dc).Error; err != nil {
			t.Fatalf("failed to create deck card: %v", err)
		}
	}
	return deck
}

func reloadRoom(t *testing.T, db *gorm.DB, roomID string) models.Room {
	t.Helper()
	var room models.Room
	if err := db.First(&room, "id = ?", roomID).Error; err != nil {
		t.Fatalf("failed to reload room: %v", err)
	}
	return room
}

func reloadUser(t *testing.T, db *gorm.DB, userID string) models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return user
}
