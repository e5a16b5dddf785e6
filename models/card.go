package models

// Element values carried by every card. The beats relation over these lives
// in the game package.
const (
	ElementFire  = "fire"
	ElementWater = "water"
	ElementGrass = "grass"
)

// Elements and Colours enumerate the full catalog axes. The seeder crosses
// them with the 12 power levels to build the base card pool.
var (
	Elements = []string{ElementFire, ElementWater, ElementGrass}
	Colours  = []string{"red", "blue", "yellow", "green", "purple", "orange"}
)

// MaxPower is the highest power level a catalog card can have.
const MaxPower = 12

// Card is an immutable catalog entry. Rows are created once at seed time and
// referenced by id from rounds, collections, and decks; only the artwork URL
// is ever updated afterwards.
type Card struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Element string `gorm:"type:varchar(16);not null" json:"element"`
	Power   int    `gorm:"not null" json:"power"` // 1..12
	Colour  string `gorm:"type:varchar(16);not null" json:"colour"`
	Name    string `gorm:"type:varchar(64);not null" json:"name"`

	ArtworkURL *string `json:"artwork_url,omitempty"`
}

// UserCard links one catalog card to a user's collection.
type UserCard struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex:uq_user_card;type:uuid;not null" json:"user_id"`
	CardID uint   `gorm:"uniqueIndex:uq_user_card;not null" json:"card_id"`

	Card Card `gorm:"foreignKey:CardID" json:"card"`

	Timestamps
}
