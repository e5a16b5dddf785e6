package services

import (
	"errors"
	"fmt"
	"log"

	"card-jitsu-system/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var cardNameCaser = cases.Title(language.English)

// CatalogService owns the immutable card catalog: seeding it once at boot,
// listing it, and attaching artwork URLs.
type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// SeedCards fills the card table once: every element crossed with every
// power level and colour, 3 x 12 x 6 = 216 cards. A non-empty table is left
// untouched.
func (s *CatalogService) SeedCards() error {
	var count int64
	if err := s.DB.Model(&models.Card{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cards := make([]models.Card, 0, len(models.Elements)*models.MaxPower*len(models.Colours))
	for _, element := range models.Elements {
		for power := 1; power <= models.MaxPower; power++ {
			for _, colour := range models.Colours {
				cards = append(cards, models.Card{
					Element: element,
					Power:   power,
					Colour:  colour,
					Name:    fmt.Sprintf("%s %d %s", cardNameCaser.String(element), power, cardNameCaser.String(colour)),
				})
			}
		}
	}

	if err := s.DB.CreateInBatches(&cards, 100).Error; err != nil {
		return err
	}
	log.Printf("Seeded card catalog with %d cards", len(cards))
	return nil
}

// ListCards returns the full catalog in id order.
func (s *CatalogService) ListCards() ([]models.Card, error) {
	var cards []models.Card
	err := s.DB.Order("id ASC").Find(&cards).Error
	return cards, err
}

// GetCard resolves a single catalog card by id.
func (s *CatalogService) GetCard(cardID uint) (*models.Card, error) {
	return lookupCard(s.DB, cardID)
}

// SetArtwork stores the uploaded artwork URL on a card.
func (s *CatalogService) SetArtwork(cardID uint, url string) error {
	res := s.DB.Model(&models.Card{}).Where("id = ?", cardID).Update("artwork_url", url)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCard
	}
	return nil
}

// EnsureDemoUsers creates the player1/player2 demo accounts with dealt
// collections and 25-card active decks, but only when the user table is
// still empty. Meant for local development so a match can be played right
// away.
func (s *CatalogService) EnsureDemoUsers(users *UserService, decks *DeckService) error {
	var count int64
	if err := s.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for _, name := range []string{"player1", "player2"} {
		user, _, err := users.Register(name, "test123")
		if errors.Is(err, ErrUsernameTaken) {
			continue
		}
		if err != nil {
			return err
		}

		collection, err := decks.Collection(user.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, DeckSize)
		for _, uc := range collection[:DeckSize] {
			ids = append(ids, uc.ID)
		}
		deckName := fmt.Sprintf("%s's Deck", name)
		if _, err := decks.CreateDeck(user.ID, deckName, ids); err != nil {
			return err
		}
		log.Printf("Seeded demo user %q with an active deck", name)
	}
	return nil
}
