package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidMessage = errors.New("invalid refresh message")

// RefreshMessage asks the worker to rebuild the insights snapshot for a user.
// It carries no financial data; the worker fetches fresh data itself.
type RefreshMessage struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Reason      string    `json:"reason,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewRefreshMessage creates a refresh request with a fresh message ID.
func NewRefreshMessage(userID, reason string) *RefreshMessage {
	return &RefreshMessage{
		ID:          uuid.NewString(),
		UserID:      userID,
		Reason:      reason,
		RequestedAt: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes a message, rejecting one without an ID.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, ErrInvalidMessage
	}
	return &msg, nil
}
