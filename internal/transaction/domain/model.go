package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusFailed         Status = "failed"
	StatusCanceled       Status = "canceled"
	StatusRequiresAction Status = "requires_action"
)

// Terminal reports whether the engine treats the status as final. The
// processor may still emit later events for the same intent (disputes are a
// separate concern).
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// Transaction is the system of record for one payment intent, keyed by the
// processor-assigned identifier. The stored row reflects the most recent
// status transition observed, not the most recent wall-clock write.
type Transaction struct {
	ID            string            `json:"id" gorm:"primaryKey;type:text"`
	Amount        int64             `json:"amount" gorm:"not null"`
	Currency      string            `json:"currency" gorm:"type:text;not null"`
	Status        Status            `json:"status" gorm:"type:text;not null"`
	Created       time.Time         `json:"created" gorm:"not null"`
	PaymentMethod string            `json:"payment_method"`
	Metadata      datatypes.JSONMap `json:"metadata"`
	FailureReason string            `json:"failure_reason"`
	ReceivedAt    time.Time         `json:"received_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

// WebhookEvent is the delivery audit log. The unique provider_event_id makes
// redeliveries of the same processor event a no-op.
type WebhookEvent struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	PaymentIntentID string         `json:"payment_intent_id" gorm:"type:text;index"`
	Payload         datatypes.JSON `json:"payload" gorm:"not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at"`
}

func (WebhookEvent) TableName() string { return "webhook_events" }
