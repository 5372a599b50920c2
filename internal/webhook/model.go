package webhook

import (
	"encoding/json"
	"time"
)

// Event is one entry of a GoCardless webhook delivery. Deliveries batch
// several events; each is persisted and dispatched on its own.
type Event struct {
	ID           string     `json:"id"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	ResourceType string     `json:"resource_type"`
	Action       string     `json:"action"`
	Links        EventLinks `json:"links"`
}

type EventLinks struct {
	Payment string `json:"payment,omitempty"`
	Mandate string `json:"mandate,omitempty"`
	Refund  string `json:"refund,omitempty"`
}

// payload is the wire shape GoCardless posts.
type payload struct {
	Events []Event `json:"events"`
}

// StoredEvent is the durable record of a received event.
type StoredEvent struct {
	ID           int64
	EventID      string
	ResourceType string
	Action       string
	Payload      json.RawMessage
	ReceivedAt   time.Time
}
