package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type AnswerRepository interface {
	IsCorrect(questionID, answerID uint) (bool, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

// IsCorrect reports whether the given answer belongs to the question and
// is the right one. An unknown answer id counts as incorrect.
func (r *answerRepository) IsCorrect(questionID, answerID uint) (bool, error) {
	var answer model.Answer
	err := r.db.Where("question_id = ? AND id = ?", questionID, answerID).First(&answer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return answer.Correct, nil
}
