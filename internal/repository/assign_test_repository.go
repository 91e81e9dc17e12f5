package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type AssignTestRepository interface {
	Create(assign *model.AssignTest) error
	FindByID(id uint) (*model.AssignTest, error)
	Save(assign *model.AssignTest) error
}

type assignTestRepository struct {
	db *gorm.DB
}

func NewAssignTestRepository(db *gorm.DB) AssignTestRepository {
	return &assignTestRepository{db: db}
}

func (r *assignTestRepository) Create(assign *model.AssignTest) error {
	return r.db.Create(assign).Error
}

// FindByID returns (nil, nil) when the attempt does not exist.
func (r *assignTestRepository) FindByID(id uint) (*model.AssignTest, error) {
	var assign model.AssignTest
	if err := r.db.First(&assign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assign, nil
}

func (r *assignTestRepository) Save(assign *model.AssignTest) error {
	return r.db.Save(assign).Error
}
