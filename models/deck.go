package models

// Deck is a 25-card loadout assembled from a user's collection. A user can
// keep several decks but at most one is active; rooms and plays always
// validate against the active one.
type Deck struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"index;type:uuid;not null" json:"user_id"`
	Name     string `gorm:"type:varchar(64);not null;default:'Main Deck'" json:"name"`
	Slug     string `gorm:"index;type:varchar(80);not null" json:"slug"`
	IsActive bool   `gorm:"not null;default:false" json:"is_active"`

	Cards []DeckCard `gorm:"foreignKey:DeckID;constraint:OnDelete:CASCADE" json:"-"`

	Timestamps
}

// DeckCard is the join row between a deck and a catalog card.
type DeckCard struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	DeckID string `gorm:"uniqueIndex:uq_deck_card;type:uuid;not null" json:"deck_id"`
	CardID uint   `gorm:"uniqueIndex:uq_deck_card;not null" json:"card_id"`

	Card Card `gorm:"foreignKey:CardID" json:"card"`

	Timestamps
}
