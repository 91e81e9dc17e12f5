package repository

import (
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type ChallengeTestHistoryRepository interface {
	Ranking(limit int) ([]RankingRow, error)
}

// RankingRow is one aggregated leaderboard entry: the sum of a student's
// ranking points across all finished challenges.
type RankingRow struct {
	StudentID uint   `json:"user_id"`
	FullName  string `json:"full_name"`
	Country   string `json:"country"`
	Score     int    `json:"score"`
}

type challengeTestHistoryRepository struct {
	db *gorm.DB
}

func NewChallengeTestHistoryRepository(db *gorm.DB) ChallengeTestHistoryRepository {
	return &challengeTestHistoryRepository{db: db}
}

func (r *challengeTestHistoryRepository) Ranking(limit int) ([]RankingRow, error) {
	var rows []RankingRow
	err := r.db.Model(&model.ChallengeTestHistory{}).
		Select("student_id, full_name, country, SUM(score) AS score").
		Group("student_id, full_name, country").
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

