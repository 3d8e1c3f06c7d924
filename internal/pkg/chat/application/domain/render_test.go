package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeMessage(t *testing.T, raw string) InboundMessage {
	t.Helper()
	var m InboundMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return m
}

func TestRenderContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "text body",
			raw:  `{"type":"text","text":{"body":"hello there"}}`,
			want: "hello there",
		},
		{
			name: "image with caption",
			raw:  `{"type":"image","image":{"id":"m1","caption":"look at this"}}`,
			want: "look at this",
		},
		{
			name: "image without caption",
			raw:  `{"type":"image","image":{"id":"m1"}}`,
			want: PlaceholderImage,
		},
		{
			name: "audio",
			raw:  `{"type":"audio","audio":{"id":"m2"}}`,
			want: PlaceholderAudio,
		},
		{
			name: "document with filename",
			raw:  `{"type":"document","document":{"id":"m3","filename":"contract.pdf"}}`,
			want: "contract.pdf",
		},
		{
			name: "location",
			raw:  `{"type":"location","location":{"latitude":-23.55,"longitude":-46.63}}`,
			want: "lat:-23.55,lon:-46.63",
		},
		{
			name: "button reply",
			raw:  `{"type":"interactive","interactive":{"type":"button_reply","button_reply":{"id":"b1","title":"Yes"}}}`,
			want: "Yes",
		},
		{
			name: "list reply",
			raw:  `{"type":"interactive","interactive":{"type":"list_reply","list_reply":{"id":"l1","title":"Option 2"}}}`,
			want: "Option 2",
		},
		{
			name: "unknown type",
			raw:  `{"type":"reaction"}`,
			want: PlaceholderUnknown,
		},
		{
			name: "text with empty body",
			raw:  `{"type":"text","text":{"body":""}}`,
			want: PlaceholderUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeMessage(t, tt.raw)
			got := m.RenderContent()
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got, "rendered content must never be empty")
		})
	}
}

func TestInboundMessage_KeepsRawBytes(t *testing.T) {
	raw := `{"type":"text","from":"5511999990000","text":{"body":"hi"},"unmodeled_field":42}`
	m := decodeMessage(t, raw)
	assert.JSONEq(t, raw, string(m.Raw), "undeclared fields must survive in Raw")
}

func TestMetadata_Receiver(t *testing.T) {
	assert.Equal(t, "551133334444", Metadata{DisplayPhoneNumber: "551133334444", PhoneNumberID: "111"}.Receiver())
	assert.Equal(t, "111", Metadata{PhoneNumberID: "111"}.Receiver())
}
