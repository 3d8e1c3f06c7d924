package chat

import "encoding/json"

// Webhook payload shapes for the WhatsApp Cloud API. Only the fields needed to
// derive conversation keys, render content and correlate statuses are decoded;
// the raw item is persisted verbatim alongside the rendered form.

type WebhookPayload struct {
	Object  string  `json:"object"`
	Entries []Entry `json:"entry"`
}

type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

type ChangeValue struct {
	MessagingProduct string          `json:"messaging_product"`
	Metadata         Metadata        `json:"metadata"`
	Messages         []InboundMessage `json:"messages"`
	Statuses         []StatusUpdate  `json:"statuses"`
	Contacts         []ContactItem   `json:"contacts"`
}

type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Receiver resolves the receiving identity, preferring the display number.
func (m Metadata) Receiver() string {
	if m.DisplayPhoneNumber != "" {
		return m.DisplayPhoneNumber
	}
	return m.PhoneNumberID
}

type ContactItem struct {
	WaID    string `json:"wa_id"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
}

type StatusUpdate struct {
	ID          string `json:"id"` // platform message id (wamid)
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	RecipientID string `json:"recipient_id"`
}

// InboundMessage carries one message item. Raw keeps the full original bytes.
type InboundMessage struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`

	Text     *TextBody     `json:"text,omitempty"`
	Image    *MediaBody    `json:"image,omitempty"`
	Video    *MediaBody    `json:"video,omitempty"`
	Document *DocumentBody `json:"document,omitempty"`
	Location *LocationBody `json:"location,omitempty"`
	Button   *ButtonBody   `json:"button,omitempty"`

	Interactive *InteractiveBody `json:"interactive,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps a verbatim copy of the item bytes in Raw.
func (m *InboundMessage) UnmarshalJSON(data []byte) error {
	type alias InboundMessage
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*m = InboundMessage(a)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type TextBody struct {
	Body string `json:"body"`
}

type MediaBody struct {
	ID      string `json:"id"`
	Caption string `json:"caption"`
}

type DocumentBody struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Caption  string `json:"caption"`
}

type LocationBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ButtonBody struct {
	Text    string `json:"text"`
	Payload string `json:"payload"`
}

type InteractiveBody struct {
	Type        string `json:"type"`
	ButtonReply *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"button_reply,omitempty"`
	ListReply *struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"list_reply,omitempty"`
}
