package usecase

import (
	"github.com/imogoapp/whatsapp-webhook/internal/infrastructure/realtime"
)

// Publisher is the fanout seam consumed by use cases. The realtime Hub
// implements it; publishing is best-effort and must never block or fail the
// durable write that preceded it.
type Publisher interface {
	Publish(topic realtime.Topic, event any)
}

// NewMessageEvent is pushed to line and global subscribers when a message
// lands in a session.
type NewMessageEvent struct {
	Type          string           `json:"type"`
	PhoneNumberID string           `json:"phone_number_id"`
	WaID          string           `json:"wa_id"`
	ContactName   string           `json:"contact_name,omitempty"`
	Message       NewMessageDetail `json:"message"`
}

type NewMessageDetail struct {
	ID            int64  `json:"id"`
	SessionID     string `json:"session_id"`
	Content       string `json:"content"`
	MessageType   string `json:"message_type"`
	Timestamp     int64  `json:"timestamp"`
	IsUserMessage bool   `json:"is_user_message"`
}

// ChatUpdatedEvent is the chat-list summary pushed to chatlist subscribers.
type ChatUpdatedEvent struct {
	Type          string `json:"type"`
	PhoneNumberID string `json:"phone_number_id"`
	WaID          string `json:"wa_id"`
	ContactName   string `json:"contact_name,omitempty"`
	LastMessage   string `json:"last_message"`
	Timestamp     int64  `json:"timestamp"`
}

// MessageStatusEvent mirrors platform delivery-status updates to line
// subscribers.
type MessageStatusEvent struct {
	Type          string `json:"type"`
	PhoneNumberID string `json:"phone_number_id"`
	WamID         string `json:"wam_id"`
	RecipientID   string `json:"recipient_id"`
	Status        string `json:"status"`
}

const (
	eventNewMessage    = "new_message"
	eventChatUpdated   = "chat_updated"
	eventMessageStatus = "message_status"
)
