package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type ChallengeTestRepository interface {
	FindByID(id uint) (*model.ChallengeTest, error)
	FindByIDWithParticipants(id uint) (*model.ChallengeTest, error)
	FindLatestByStudent(studentID uint) (*model.ChallengeTest, error)
	FindByConfirmToken(token string) (*model.ChallengeTest, error)
	FindNotFinished(studentID *uint) ([]model.ChallengeTest, error)
	Save(challenge *model.ChallengeTest) error
	// ClaimFinished flips the challenge to Finished only if it is not
	// finished yet. The boolean result reports whether this caller won the
	// claim; a false result means another caller already reconciled it.
	ClaimFinished(tx *gorm.DB, id uint) (bool, error)
}

type challengeTestRepository struct {
	db *gorm.DB
}

func NewChallengeTestRepository(db *gorm.DB) ChallengeTestRepository {
	return &challengeTestRepository{db: db}
}

func (r *challengeTestRepository) FindByID(id uint) (*model.ChallengeTest, error) {
	var challenge model.ChallengeTest
	if err := r.db.First(&challenge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeTestRepository) FindByIDWithParticipants(id uint) (*model.ChallengeTest, error) {
	var challenge model.ChallengeTest
	err := r.db.
		Preload("Student").
		Preload("Competitor").
		Preload("AssignTests").
		First(&challenge, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

// FindLatestByStudent returns the most recent challenge the student has
// initiated, or (nil, nil) when there is none. Drives the 24h cooldown.
func (r *challengeTestRepository) FindLatestByStudent(studentID uint) (*model.ChallengeTest, error) {
	var challenge model.ChallengeTest
	err := r.db.Where("student_id = ?", studentID).Order("id DESC").First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

// FindByConfirmToken matches an unconsumed confirmation token. Consumed
// tokens are blanked, so the empty string never matches anything.
func (r *challengeTestRepository) FindByConfirmToken(token string) (*model.ChallengeTest, error) {
	if token == "" {
		return nil, nil
	}
	var challenge model.ChallengeTest
	err := r.db.Where("confirm_token = ?", token).First(&challenge).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeTestRepository) FindNotFinished(studentID *uint) ([]model.ChallengeTest, error) {
	query := r.db.
		Preload("Student").
		Preload("Competitor").
		Preload("AssignTests").
		Where("type <> ?", model.ChallengeFinished)
	if studentID != nil {
		query = query.Where("student_id = ? OR competitor_id = ?", *studentID, *studentID)
	}

	var challenges []model.ChallengeTest
	err := query.Order("id ASC").Find(&challenges).Error
	return challenges, err
}

func (r *challengeTestRepository) Save(challenge *model.ChallengeTest) error {
	return r.db.Save(challenge).Error
}

func (r *challengeTestRepository) ClaimFinished(tx *gorm.DB, id uint) (bool, error) {
	res := tx.Model(&model.ChallengeTest{}).
		Where("id = ? AND type <> ?", id, model.ChallengeFinished).
		Update("type", model.ChallengeFinished)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
