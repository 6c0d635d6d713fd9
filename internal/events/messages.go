// Package events pushes change notifications to connected admin clients over
// WebSocket, so an open month view refetches when its data changes.
package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypePrayerTimesInvalidated MessageType = "prayer_times.invalidated"
	TypeDayChanged             MessageType = "calendar.day_changed"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the envelope of every WebSocket message.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// InvalidatedPayload is the payload for prayer_times.invalidated events.
// Start and End are the inclusive ISO dates whose records changed; a client
// showing a month that overlaps them should refetch.
type InvalidatedPayload struct {
	MasjidID uuid.UUID `json:"masjid_id"`
	Start    string    `json:"start"`
	End      string    `json:"end"`
}

// DayChangedPayload is the payload for calendar.day_changed events.
type DayChangedPayload struct {
	Date     string `json:"date"`
	Timezone string `json:"timezone"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
