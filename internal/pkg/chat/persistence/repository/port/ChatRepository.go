package repository

import (
	"context"
	"encoding/json"
	"errors"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
)

// ErrNotFound is returned for direct lookups that matched nothing. Adapters
// translate their driver's no-rows error into it.
var ErrNotFound = errors.New("repository: not found")

// ChatRepository defines persistence operations for webhook ingestion,
// sessions, messages and contacts. All calls may fail with a transient
// storage error; callers decide whether that aborts or skips the item.
type ChatRepository interface {
	// SaveWebhook stores the raw inbound payload verbatim and returns its id.
	SaveWebhook(ctx context.Context, payload json.RawMessage) (int64, error)

	// FindActiveSession returns the active session for the conversation key,
	// or (nil, nil) when none exists. It does not apply expiry.
	FindActiveSession(ctx context.Context, key chat.ConversationKey) (*chat.Session, error)
	CreateSession(ctx context.Context, s chat.Session) error
	// DeactivateSession clears the active flag on the session and all of its
	// messages in one transaction.
	DeactivateSession(ctx context.Context, sessionID string) error

	// AppendMessage persists m, letting the database assign the id.
	AppendMessage(ctx context.Context, m chat.SessionMessage) (*chat.SessionMessage, error)
	// UpdateMessageStatusByWamID correlates a platform status update with a
	// stored message. It reports whether any message matched.
	UpdateMessageStatusByWamID(ctx context.Context, wamID string, status chat.MessageStatus) (bool, error)
	UpdateMessageStatus(ctx context.Context, messageID int64, status chat.MessageStatus) error
	MarkBotReplied(ctx context.Context, messageID int64) error
	UpdateFlowState(ctx context.Context, messageID int64, state json.RawMessage) error

	// UpsertContact creates the (wa_id, phone_number_id) contact on first
	// sight and refreshes name/last-activity afterwards.
	UpsertContact(ctx context.Context, c chat.Contact) (*chat.Contact, error)
	GetContact(ctx context.Context, contactID int64) (*chat.Contact, error)
	GetContactsByPhoneNumber(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.Contact, error)
	UpdateContactName(ctx context.Context, contactID int64, name string) error
	SetContactBot(ctx context.Context, contactID int64, enabled bool) error
	SetContactAutomaticMessage(ctx context.Context, contactID int64, enabled bool) error

	// GetLineSettings returns per-line configuration, or (nil, nil) when the
	// line has no settings row.
	GetLineSettings(ctx context.Context, phoneNumberID string) (*chat.LineSettings, error)

	GetUserSessions(ctx context.Context, waID, phoneNumberID string, limit int) ([]chat.Session, error)
	GetSessionMessages(ctx context.Context, sessionID string) ([]chat.SessionMessage, error)
	GetActiveChats(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.ChatSummary, int, error)
}
