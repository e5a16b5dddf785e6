package services

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"card-jitsu-system/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CollectionSize is how many catalog cards a fresh account is dealt.
const CollectionSize = 40

const tokenTTL = 24 * time.Hour

// UserService handles registration, login, and token issuance.
type UserService struct {
	DB        *gorm.DB
	jwtSecret []byte
}

func NewUserService(db *gorm.DB, jwtSecret []byte) *UserService {
	return &UserService{DB: db, jwtSecret: jwtSecret}
}

// Register creates the account and deals its starting collection of
// CollectionSize distinct cards from the catalog, then returns the user with
// a signed token.
func (s *UserService) Register(username, password string) (*models.User, string, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		return nil, "", ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return dealCollection(tx, user.ID)
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.CreateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login verifies the credentials and returns the user with a fresh token.
func (s *UserService) Login(username, password string) (*models.User, string, error) {
	var user models.User
	err := s.DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.CreateToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Profile returns the user's basic profile and match stats.
func (s *UserService) Profile(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateToken signs an HS256 token carrying the user id, valid for 24h.
func (s *UserService) CreateToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// dealCollection hands a new account CollectionSize distinct random cards
// from the catalog.
func dealCollection(tx *gorm.DB, userID string) error {
	var cards []models.Card
	if err := tx.Find(&cards).Error; err != nil {
		return err
	}
	if len(cards) < CollectionSize {
		return fmt.Errorf("card pool not seeded correctly (need at least %d cards, have %d)", CollectionSize, len(cards))
	}

	rand.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	rows := make([]models.UserCard, 0, CollectionSize)
	for _, c := range cards[:CollectionSize] {
		rows = append(rows, models.UserCard{
			ID:     uuid.NewString(),
			UserID: userID,
			CardID: c.ID,
		})
	}
	return tx.Create(&rows).Error
}
