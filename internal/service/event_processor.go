package service

import (
	"fmt"

	"github.com/ArturTovmasyan/ministry-backend/internal/model"
	"github.com/ArturTovmasyan/ministry-backend/internal/repository"
	"github.com/rs/zerolog/log"
)

// EventProcessor deduplicates externally delivered events by their
// provider-assigned id. Process returns true when the handler ran and
// false when the event was seen before.
type EventProcessor interface {
	Process(externalEventID string, handler func() error) (bool, error)
}

type eventProcessor struct {
	eventLogRepo repository.EventLogRepository
	clock        Clock
}

func NewEventProcessor(eventLogRepo repository.EventLogRepository, clock Clock) EventProcessor {
	return &eventProcessor{eventLogRepo: eventLogRepo, clock: clock}
}

// Process records the event id before invoking the handler, so a redelivery
// racing the first attempt loses on the unique index and is acknowledged as
// a duplicate. A handler failure keeps the log row; providers retry with
// the same id and those retries are then no-ops, which matches treating
// receipt, not successful handling, as the idempotency boundary.
func (p *eventProcessor) Process(externalEventID string, handler func() error) (bool, error) {
	seen, err := p.eventLogRepo.FindByEventID(externalEventID)
	if err != nil {
		return false, fmt.Errorf("looking up event %s: %w", externalEventID, err)
	}
	if seen != nil {
		log.Info().Str("eventID", externalEventID).Msg("Process: duplicate event, skipping")
		return false, nil
	}

	entry := model.EventLog{
		ExternalEventID: externalEventID,
		HandledAt:       p.clock.Now(),
	}
	if err := p.eventLogRepo.Create(&entry); err != nil {
		// A concurrent delivery may have inserted the row first.
		seen, findErr := p.eventLogRepo.FindByEventID(externalEventID)
		if findErr == nil && seen != nil {
			log.Info().Str("eventID", externalEventID).Msg("Process: lost insert race, event already handled")
			return false, nil
		}
		return false, fmt.Errorf("recording event %s: %w", externalEventID, err)
	}

	if err := handler(); err != nil {
		return true, fmt.Errorf("handling event %s: %w", externalEventID, err)
	}
	return true, nil
}
