package domain

import (
	"time"
)

// EntityWebhook is the ledger entity type for inbound external events.
const EntityWebhook = "Webhook"

// WebhookEvent is a signed audit event pushed by an external system.
type WebhookEvent struct {
	EventType string    `json:"event_type"`
	LogID     string    `json:"log_id"`
	Timestamp time.Time `json:"timestamp"`
	Data      Fields    `json:"data"`
	Signature string    `json:"signature"`
}

// Alert is raised to the notification collaborator for alert-class events.
type Alert struct {
	EventType string    `json:"event_type"`
	LogID     string    `json:"log_id"`
	EntryID   int64     `json:"entry_id"`
	Data      Fields    `json:"data"`
	RaisedAt  time.Time `json:"raised_at"`
}
