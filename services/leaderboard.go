package services

import (
	"card-jitsu-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const leaderboardLimit = 100

// LeaderboardService rebuilds and serves the win-rate ranking derived from
// user match counters.
type LeaderboardService struct {
	DB *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{DB: db}
}

// Refresh rebuilds the leaderboard table from user counters. The rebuild
// runs inside one transaction so readers never see a half-built table.
func (s *LeaderboardService) Refresh() error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var users []models.User
		err := tx.Where("total_games > 0").
			Order("win_count DESC, total_games ASC, username ASC").
			Limit(leaderboardLimit).
			Find(&users).Error
		if err != nil {
			return err
		}

		// Hard delete: the table is a rebuild target, not history.
		if err := tx.Unscoped().Where("1 = 1").Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}

		if len(users) == 0 {
			return nil
		}

		entries := make([]models.LeaderboardEntry, 0, len(users))
		for i, u := range users {
			rate := 0.0
			if u.TotalGames > 0 {
				rate = float64(u.WinCount) / float64(u.TotalGames)
			}
			entries = append(entries, models.LeaderboardEntry{
				ID:         uuid.NewString(),
				Rank:       i + 1,
				UserID:     u.ID,
				Username:   u.Username,
				WinCount:   u.WinCount,
				TotalGames: u.TotalGames,
				WinRate:    rate,
			})
		}
		return tx.Create(&entries).Error
	})
}

// Top returns the first n leaderboard rows in rank order.
func (s *LeaderboardService) Top(n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 || n > leaderboardLimit {
		n = leaderboardLimit
	}
	var entries []models.LeaderboardEntry
	err := s.DB.Order("rank ASC").Limit(n).Find(&entries).Error
	return entries, err
}
