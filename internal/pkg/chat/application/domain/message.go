package chat

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// MessageStatus mirrors the WhatsApp delivery lifecycle.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
	StatusFailed    MessageStatus = "failed"
	StatusPending   MessageStatus = "pending"
	StatusDeleted   MessageStatus = "deleted"
)

// ValidStatus reports whether s is one of the known delivery statuses.
func ValidStatus(s string) bool {
	switch MessageStatus(strings.ToLower(s)) {
	case StatusSent, StatusDelivered, StatusRead, StatusFailed, StatusPending, StatusDeleted:
		return true
	}
	return false
}

// SessionMessage is a log entry inside a session. Messages are never deleted;
// status updates, bot-reply marks and flow-state writes mutate them in place.
type SessionMessage struct {
	ID            int64           `db:"id"`
	SessionID     string          `db:"session_id"`
	WaID          string          `db:"wa_id"`
	WaIDReceived  string          `db:"wa_id_received"`
	PhoneNumberID string          `db:"phone_number_id"`
	WamID         *string         `db:"wam_id"` // platform message id, used to correlate statuses
	Content       string          `db:"content"`
	Payload       json.RawMessage `db:"payload"` // original payload retained verbatim
	IsUserMessage bool            `db:"is_user_message"`
	Status        MessageStatus   `db:"message_status"`
	BotReplied    bool            `db:"bot_replied"`
	FlowState     json.RawMessage `db:"flow_state"`
	Active        bool            `db:"is_active"`
	CreatedAt     time.Time       `db:"create_in"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// NewSessionMessage validates and normalizes a message before persistence.
func NewSessionMessage(m SessionMessage) (*SessionMessage, error) {
	if m.SessionID == "" {
		return nil, errors.New("chat: session_id is required")
	}
	if m.WaID == "" || m.PhoneNumberID == "" {
		return nil, ErrMissingIdentity
	}
	if m.Status == "" {
		m.Status = StatusSent
	}
	if !ValidStatus(string(m.Status)) {
		return nil, errors.New("chat: invalid message status: " + string(m.Status))
	}
	if m.Payload == nil {
		m.Payload = json.RawMessage(`{}`)
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	m.Active = true
	return &m, nil
}
