package repository

import (
	"errors"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	FindByProviderSubscriptionID(providerSubscriptionID string) (*model.Subscription, error)
	Save(subscription *model.Subscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) FindByProviderSubscriptionID(providerSubscriptionID string) (*model.Subscription, error) {
	var subscription model.Subscription
	err := r.db.Preload("User").
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &subscription, nil
}

func (r *subscriptionRepository) Save(subscription *model.Subscription) error {
	return r.db.Save(subscription).Error
}
