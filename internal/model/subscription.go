package model

import (
	"time"

	"gorm.io/gorm"
)

type SubscriptionStatus int

const (
	SubscriptionInactive SubscriptionStatus = iota
	SubscriptionActive
	SubscriptionCanceled
)

// Subscription mirrors the billing provider's subscription for one user.
type Subscription struct {
	ID                     uint               `gorm:"primarykey" json:"id"`
	UserID                 uint               `json:"user_id" gorm:"not null;index"`
	User                   User               `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProviderSubscriptionID string             `json:"provider_subscription_id" gorm:"not null;uniqueIndex"`
	ProviderCustomerID     string             `json:"provider_customer_id"`
	Status                 SubscriptionStatus `json:"status" gorm:"not null;default:0"`
	CurrentPeriodEnd       time.Time          `json:"current_period_end"`
	LastInvoiceID          string             `json:"last_invoice_id"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
	DeletedAt              gorm.DeletedAt     `gorm:"index" json:"-"`
}
