package notifications

import "time"

// WebSocket message types
const (
	WSMessageTypeEvent  = "event"
	WSMessageTypeStatus = "status"
)

// WebSocketMessage is the envelope written to live listeners
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Topic     string      `json:"topic"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// EmailMessage is one outbound email
type EmailMessage struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Delivery records the provider's answer for a sent email
type Delivery struct {
	ProviderID string
	SentAt     time.Time
}
