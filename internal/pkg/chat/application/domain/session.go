package chat

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SessionWindow is how long a conversation session stays active after creation.
const SessionWindow = 24 * time.Hour

// Domain-level errors for session behaviors
var (
	ErrSessionExpired  = errors.New("chat: session is expired")
	ErrMissingIdentity = errors.New("chat: wa_id, wa_id_received and phone_number_id are required")
)

// ConversationKey identifies a distinct conversation thread: the WhatsApp user,
// the display number they messaged, and the phone-number line that received it.
type ConversationKey struct {
	WaID          string
	WaIDReceived  string
	PhoneNumberID string
}

func (k ConversationKey) Valid() bool {
	return k.WaID != "" && k.WaIDReceived != "" && k.PhoneNumberID != ""
}

// String renders the key in a stable form usable as a lock/cache key.
func (k ConversationKey) String() string {
	return k.WaID + "|" + k.WaIDReceived + "|" + k.PhoneNumberID
}

// Session is a 24h grouping of messages for one conversation key.
//
// Invariant: at most one active session exists per conversation key. An
// expired or deactivated session is never resurrected; a later event opens a
// new session with a new ID.
type Session struct {
	ID            string    `db:"session_id"`
	WaID          string    `db:"wa_id"`
	WaIDReceived  string    `db:"wa_id_received"`
	PhoneNumberID string    `db:"phone_number_id"`
	CreatedAt     time.Time `db:"created_at"`
	ExpiresAt     time.Time `db:"expires_at"`
	Active        bool      `db:"is_active"`
}

// NewSession opens a fresh session for the key, expiring one window from now.
func NewSession(key ConversationKey, now time.Time) (*Session, error) {
	if !key.Valid() {
		return nil, ErrMissingIdentity
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	now = now.UTC()
	return &Session{
		ID:            uuid.NewString(),
		WaID:          key.WaID,
		WaIDReceived:  key.WaIDReceived,
		PhoneNumberID: key.PhoneNumberID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(SessionWindow),
		Active:        true,
	}, nil
}

// Key returns the conversation key this session belongs to.
func (s *Session) Key() ConversationKey {
	return ConversationKey{WaID: s.WaID, WaIDReceived: s.WaIDReceived, PhoneNumberID: s.PhoneNumberID}
}

// ExpiredAt reports whether the session window has closed at the given instant.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
