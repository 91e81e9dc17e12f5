package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type PassedQuestionRepository interface {
	FindByAssignAndQuestion(assignTestID, questionID uint) (*model.PassedQuestion, error)
	AnsweredQuestionIDs(assignTestID uint) ([]uint, error)
}

type passedQuestionRepository struct {
	db *gorm.DB
}

func NewPassedQuestionRepository(db *gorm.DB) PassedQuestionRepository {
	return &passedQuestionRepository{db: db}
}

func (r *passedQuestionRepository) FindByAssignAndQuestion(assignTestID, questionID uint) (*model.PassedQuestion, error) {
	var passed model.PassedQuestion
	err := r.db.Where("assign_test_id = ? AND question_id = ?", assignTestID, questionID).First(&passed).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &passed, nil
}

// AnsweredQuestionIDs returns the ids of questions the student actually
// answered; marked-only rows are excluded.
func (r *passedQuestionRepository) AnsweredQuestionIDs(assignTestID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&model.PassedQuestion{}).
		Where("assign_test_id = ? AND answer_id IS NOT NULL", assignTestID).
		Pluck("question_id", &ids).Error
	return ids, err
}
