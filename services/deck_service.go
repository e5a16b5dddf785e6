package services

import (
	"errors"

	"card-jitsu-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DeckSize is the exact number of cards every deck must hold.
const DeckSize = 25

// DeckService manages user collections and the 25-card decks built from
// them. Deck membership checks during play go against the active deck only.
type DeckService struct {
	DB *gorm.DB
}

func NewDeckService(db *gorm.DB) *DeckService {
	return &DeckService{DB: db}
}

// Collection returns every card the user owns, with card data preloaded.
func (s *DeckService) Collection(userID string) ([]models.UserCard, error) {
	var rows []models.UserCard
	err := s.DB.Preload("Card").Where("user_id = ?", userID).Find(&rows).Error
	return rows, err
}

// CreateDeck builds a new active deck from exactly DeckSize user-card ids
// owned by the caller. Any previously active deck is deactivated in the same
// transaction.
func (s *DeckService) CreateDeck(userID, name string, userCardIDs []string) (*models.Deck, error) {
	if len(userCardIDs) != DeckSize {
		return nil, ErrDeckSize
	}
	if name == "" {
		name = "Main Deck"
	}

	var owned []models.UserCard
	err := s.DB.Where("user_id = ? AND id IN ?", userID, userCardIDs).Find(&owned).Error
	if err != nil {
		return nil, err
	}
	if len(owned) != DeckSize {
		return nil, ErrCardsNotOwned
	}

	deck := models.Deck{
		ID:       uuid.NewString(),
		UserID:   userID,
		Name:     name,
		Slug:     slug.Make(name),
		IsActive: true,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Deck{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}

		if err := tx.Create(&deck).Error; err != nil {
			return err
		}

		cards := make([]models.DeckCard, 0, DeckSize)
		for _, uc := range owned {
			cards = append(cards, models.DeckCard{
				ID:     uuid.NewString(),
				DeckID: deck.ID,
				CardID: uc.CardID,
			})
		}
		return tx.Create(&cards).Error
	})
	if err != nil {
		return nil, err
	}
	return &deck, nil
}

// DeckInfo is the list view of a deck.
type DeckInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	IsActive  bool   `json:"is_active"`
	CardCount int64  `json:"card_count"`
}

// ListDecks returns all of the user's decks, newest first.
func (s *DeckService) ListDecks(userID string) ([]DeckInfo, error) {
	var decks []models.Deck
	err := s.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&decks).Error
	if err != nil {
		return nil, err
	}

	infos := make([]DeckInfo, 0, len(decks))
	for _, d := range decks {
		var count int64
		err := s.DB.Model(&models.DeckCard{}).Where("deck_id = ?", d.ID).Count(&count).Error
		if err != nil {
			return nil, err
		}
		infos = append(infos, DeckInfo{
			ID:        d.ID,
			Name:      d.Name,
			Slug:      d.Slug,
			IsActive:  d.IsActive,
			CardCount: count,
		})
	}
	return infos, nil
}

// ActiveDeck returns the user's active deck and its cards, or a nil deck if
// none is active.
func (s *DeckService) ActiveDeck(userID string) (*models.Deck, []models.Card, error) {
	deck, err := activeDeckOf(s.DB, userID)
	if err != nil || deck == nil {
		return nil, nil, err
	}

	var rows []models.DeckCard
	err = s.DB.Preload("Card").Where("deck_id = ?", deck.ID).Find(&rows).Error
	if err != nil {
		return nil, nil, err
	}

	cards := make([]models.Card, 0, len(rows))
	for _, dc := range rows {
		cards = append(cards, dc.Card)
	}
	return deck, cards, nil
}

// ActivateDeck switches the user's active deck to the given one.
func (s *DeckService) ActivateDeck(userID, deckID string) (*models.Deck, error) {
	var deck models.Deck
	err := s.DB.Where("id = ? AND user_id = ?", deckID, userID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeckNotFound
	}
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Deck{}).
			Where("user_id = ? AND is_active = ?", userID, true).
			Update("is_active", false).Error
		if err != nil {
			return err
		}
		return tx.Model(&deck).Update("is_active", true).Error
	})
	if err != nil {
		return nil, err
	}
	deck.IsActive = true
	return &deck, nil
}

// activeDeckOf fetches a user's active deck, most recently created first.
// Returns nil without error when the user has none.
func activeDeckOf(db *gorm.DB, userID string) (*models.Deck, error) {
	var deck models.Deck
	err := db.Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}
