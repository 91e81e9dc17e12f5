package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Notification templates rendered by the external mailer.
const (
	TemplateChallengeInvite = "challenge-test"
	TemplateChallengeWon    = "won-challenge-test"
	TemplateChallengeLost   = "lost-challenge-test"
	TemplateChallengeEqual  = "equal-challenge-test"
	TemplatePaymentFailure  = "payment-failure"
)

const notificationQueueKey = "ministry:notifications"

// NotificationJob is a fully-formed, fire-and-forget delivery request.
// Delivery is at-least-once; consumers dedupe on ID.
type NotificationJob struct {
	ID        string            `json:"id"`
	Template  string            `json:"template"`
	ToEmail   string            `json:"to_email"`
	Subject   string            `json:"subject"`
	Variables map[string]string `json:"variables,omitempty"`
}

// Notifier hands a notification job to the delivery side. Failures must be
// logged by callers but never roll back the domain write that triggered
// the notification.
type Notifier interface {
	Send(job NotificationJob) error
}

type redisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier queues jobs on a redis list consumed by the external
// mailer worker.
func NewRedisNotifier(client *redis.Client) Notifier {
	return &redisNotifier{client: client}
}

func (n *redisNotifier) Send(job NotificationJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encoding notification job: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := n.client.LPush(ctx, notificationQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("queueing notification job %s: %w", job.ID, err)
	}

	log.Info().Str("jobID", job.ID).Str("template", job.Template).Str("to", job.ToEmail).Msg("Notification job queued")
	return nil
}

type logNotifier struct{}

// NewLogNotifier is the fallback sink used when no queue is configured;
// it only records the job.
func NewLogNotifier() Notifier {
	return logNotifier{}
}

func (logNotifier) Send(job NotificationJob) error {
	log.Info().Str("template", job.Template).Str("to", job.ToEmail).Str("subject", job.Subject).Msg("Notification (log sink)")
	return nil
}
