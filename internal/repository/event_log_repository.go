package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type EventLogRepository interface {
	FindByEventID(externalEventID string) (*model.EventLog, error)
	Create(entry *model.EventLog) error
}

type eventLogRepository struct {
	db *gorm.DB
}

func NewEventLogRepository(db *gorm.DB) EventLogRepository {
	return &eventLogRepository{db: db}
}

func (r *eventLogRepository) FindByEventID(externalEventID string) (*model.EventLog, error) {
	var entry model.EventLog
	err := r.db.Where("external_event_id = ?", externalEventID).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *eventLogRepository) Create(entry *model.EventLog) error {
	return r.db.Create(entry).Error
}
