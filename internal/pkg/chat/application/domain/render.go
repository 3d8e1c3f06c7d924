package chat

import "fmt"

// Placeholders shown when a message type carries no renderable text. Rendering
// is lossy on purpose: the original payload is stored verbatim next to it.
const (
	PlaceholderImage       = "(image)"
	PlaceholderVideo       = "(video)"
	PlaceholderAudio       = "(audio)"
	PlaceholderSticker     = "(sticker)"
	PlaceholderDocument    = "(document)"
	PlaceholderContacts    = "(contact)"
	PlaceholderButton      = "(button)"
	PlaceholderList        = "(list)"
	PlaceholderInteractive = "(interactive)"
	PlaceholderUnknown     = "(message)"
)

// RenderContent produces the display text for a message item. It never
// returns an empty string, whatever the item looks like.
func (m *InboundMessage) RenderContent() string {
	switch m.Type {
	case "text":
		if m.Text != nil && m.Text.Body != "" {
			return m.Text.Body
		}
		return PlaceholderUnknown
	case "image":
		if m.Image != nil && m.Image.Caption != "" {
			return m.Image.Caption
		}
		return PlaceholderImage
	case "video":
		if m.Video != nil && m.Video.Caption != "" {
			return m.Video.Caption
		}
		return PlaceholderVideo
	case "audio":
		return PlaceholderAudio
	case "sticker":
		return PlaceholderSticker
	case "document":
		if m.Document != nil && m.Document.Filename != "" {
			return m.Document.Filename
		}
		return PlaceholderDocument
	case "location":
		if m.Location != nil {
			return fmt.Sprintf("lat:%v,lon:%v", m.Location.Latitude, m.Location.Longitude)
		}
		return PlaceholderUnknown
	case "contacts":
		return PlaceholderContacts
	case "button":
		if m.Button != nil && m.Button.Text != "" {
			return m.Button.Text
		}
		return PlaceholderButton
	case "interactive":
		if m.Interactive != nil {
			switch m.Interactive.Type {
			case "button_reply":
				if m.Interactive.ButtonReply != nil && m.Interactive.ButtonReply.Title != "" {
					return m.Interactive.ButtonReply.Title
				}
				return PlaceholderButton
			case "list_reply":
				if m.Interactive.ListReply != nil && m.Interactive.ListReply.Title != "" {
					return m.Interactive.ListReply.Title
				}
				return PlaceholderList
			}
		}
		return PlaceholderInteractive
	}
	return PlaceholderUnknown
}
