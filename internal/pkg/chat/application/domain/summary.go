package chat

import "time"

// ChatSummary is the per-conversation aggregate backing chat-list views.
type ChatSummary struct {
	WaID             string     `db:"wa_id"`
	ContactName      string     `db:"contact_name"`
	PhoneNumberID    string     `db:"phone_number_id"`
	TotalSessions    int        `db:"total_sessions"`
	TotalMessages    int        `db:"total_messages"`
	UserMessages     int        `db:"user_messages"`
	BotMessages      int        `db:"bot_messages"`
	BotReplies       int        `db:"bot_replies"`
	HasActiveSession bool       `db:"has_active_session"`
	LastMessageAt    *time.Time `db:"last_message_at"`
	SessionExpiresAt *time.Time `db:"session_expires_at"`
}

// User is the operator account shape consumed by the thin CRUD surface.
// Credential mechanics live outside the core; only the fields the
// reset-password flow touches are modeled.
type User struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"create_in"`
	Activate  bool      `db:"activate"`
}
