package service

import (
	"fmt"
	"time"

	"github.com/ArturTovmasyan/ministry-backend/internal/dto"
	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// Billing provider event types, matching the provider's wire values.
const (
	eventSubscriptionDeleted = "customer.subscription.deleted"
	eventInvoicePaySucceeded = "invoice.payment_succeeded"
	eventInvoicePayFailed    = "invoice.payment_failed"
)

// BillingService applies billing provider webhook events to local
// subscription state. Every event goes through the idempotent processor,
// so redeliveries are acknowledged without reapplying their effects.
type BillingService interface {
	HandleProviderEvent(event dto.ProviderEventDTO) (string, error)
}

type billingService struct {
	subscriptionRepo repository.SubscriptionRepository
	processor        EventProcessor
	notifier         Notifier
}

func NewBillingService(
	subscriptionRepo repository.SubscriptionRepository,
	processor EventProcessor,
	notifier Notifier,
) BillingService {
	return &billingService{
		subscriptionRepo: subscriptionRepo,
		processor:        processor,
		notifier:         notifier,
	}
}

func (s *billingService) HandleProviderEvent(event dto.ProviderEventDTO) (string, error) {
	handled, err := s.processor.Process(event.ID, func() error {
		return s.dispatch(event)
	})
	if err != nil {
		return "", err
	}
	if !handled {
		return "Event previously handled.", nil
	}
	return "Event handled.", nil
}

func (s *billingService) dispatch(event dto.ProviderEventDTO) error {
	switch event.Type {
	case eventSubscriptionDeleted:
		return s.cancelSubscription(event)
	case eventInvoicePaySucceeded:
		return s.activateSubscription(event)
	case eventInvoicePayFailed:
		return s.handlePaymentFailure(event)
	default:
		// Unknown event types are acknowledged so the provider stops
		// redelivering them.
		log.Info().Str("eventID", event.ID).Str("type", event.Type).Msg("dispatch: ignoring unhandled event type")
		return nil
	}
}

func (s *billingService) cancelSubscription(event dto.ProviderEventDTO) error {
	subscription, err := s.findSubscription(event)
	if err != nil || subscription == nil {
		return err
	}
	subscription.Status = model.SubscriptionCanceled
	if err := s.subscriptionRepo.Save(subscription); err != nil {
		return fmt.Errorf("canceling subscription %s: %w", event.Data.SubscriptionID, err)
	}
	log.Info().Str("subscriptionID", event.Data.SubscriptionID).Msg("Subscription canceled")
	return nil
}

func (s *billingService) activateSubscription(event dto.ProviderEventDTO) error {
	subscription, err := s.findSubscription(event)
	if err != nil || subscription == nil {
		return err
	}
	subscription.Status = model.SubscriptionActive
	if event.Data.PeriodEnd > 0 {
		subscription.CurrentPeriodEnd = time.Unix(event.Data.PeriodEnd, 0)
	}
	subscription.LastInvoiceID = event.Data.InvoiceID
	if err := s.subscriptionRepo.Save(subscription); err != nil {
		return fmt.Errorf("activating subscription %s: %w", event.Data.SubscriptionID, err)
	}
	log.Info().Str("subscriptionID", event.Data.SubscriptionID).Str("invoiceID", event.Data.InvoiceID).Msg("Subscription activated")
	return nil
}

// handlePaymentFailure notifies the user on the first failed attempt only;
// the provider keeps retrying on its own schedule.
func (s *billingService) handlePaymentFailure(event dto.ProviderEventDTO) error {
	if event.Data.AttemptCount != 1 {
		return nil
	}
	subscription, err := s.findSubscription(event)
	if err != nil || subscription == nil {
		return err
	}

	job := NotificationJob{
		Template: TemplatePaymentFailure,
		ToEmail:  subscription.User.Email,
		Subject:  "Your payment failed",
		Variables: map[string]string{
			"student":     subscription.User.FullName(),
			"invoice_sum": fmt.Sprintf("%.2f", float64(event.Data.TotalCents)/100),
			"card_brand":  subscription.User.CardBrand,
			"card_last4":  subscription.User.CardLast4,
		},
	}
	if err := s.notifier.Send(job); err != nil {
		log.Error().Err(err).Str("eventID", event.ID).Msg("handlePaymentFailure: failed to queue notification")
	}
	return nil
}

func (s *billingService) findSubscription(event dto.ProviderEventDTO) (*model.Subscription, error) {
	subscription, err := s.subscriptionRepo.FindByProviderSubscriptionID(event.Data.SubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("loading subscription %s: %w", event.Data.SubscriptionID, err)
	}
	if subscription == nil {
		// The provider can emit events for subscriptions never synced
		// locally; those are acknowledged and dropped.
		log.Warn().Str("eventID", event.ID).Str("subscriptionID", event.Data.SubscriptionID).Msg("findSubscription: unknown subscription")
	}
	return subscription, nil
}
