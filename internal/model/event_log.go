package model

import "time"

// EventLog is the idempotency ledger for externally delivered events.
// The presence of a row means the event's side effects already ran.
type EventLog struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	ExternalEventID string    `json:"external_event_id" gorm:"not null;uniqueIndex"`
	HandledAt       time.Time `json:"handled_at"`
}
