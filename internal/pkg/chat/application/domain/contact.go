package chat

import "time"

// Contact is scoped to the line it talks to: the same wa_id messaging two
// different phone_number_ids yields two contacts.
type Contact struct {
	ID               int64      `db:"id"`
	WaID             string     `db:"wa_id"`
	PhoneNumberID    string     `db:"create_for_phone_number"`
	Name             string     `db:"name"`
	Profile          string     `db:"profile"` // e.g. "human", "bot"
	ActivateBot      bool       `db:"activate_bot"`
	ActivateAutoMsg  bool       `db:"activate_automatic_message"`
	CreatedAt        time.Time  `db:"create_in"`
	LastMessageAt    *time.Time `db:"last_message"`
	LastMessageEpoch int64      `db:"last_message_timestamp"`
}

// LineSettings is per phone-number-id configuration, consumed read-only.
// DefaultBot / DefaultProfile seed newly created contacts.
type LineSettings struct {
	ID             int64  `db:"id"`
	OrganizationID int64  `db:"organization_id"`
	PhoneNumberID  string `db:"phone_number_id"`
	WaID           string `db:"wa_id"`
	DefaultProfile string `db:"default_profile"`
	DefaultBot     bool   `db:"default_bot"`
	VerifyToken    string `db:"webhook_verify_token"`
}
