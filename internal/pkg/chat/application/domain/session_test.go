package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	key := ConversationKey{WaID: "u", WaIDReceived: "d", PhoneNumberID: "p"}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s, err := NewSession(key, now)
	require.NoError(t, err)

	assert.NotEmpty(t, s.ID)
	assert.True(t, s.Active)
	assert.Equal(t, now, s.CreatedAt)
	assert.Equal(t, now.Add(SessionWindow), s.ExpiresAt)
	assert.Equal(t, key, s.Key())

	other, err := NewSession(key, now)
	require.NoError(t, err)
	assert.NotEqual(t, s.ID, other.ID, "session ids must be unique")
}

func TestNewSession_InvalidKey(t *testing.T) {
	_, err := NewSession(ConversationKey{WaID: "u"}, time.Now())
	assert.ErrorIs(t, err, ErrMissingIdentity)
}

func TestSession_ExpiredAt(t *testing.T) {
	key := ConversationKey{WaID: "u", WaIDReceived: "d", PhoneNumberID: "p"}
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewSession(key, now)
	require.NoError(t, err)

	assert.False(t, s.ExpiredAt(now))
	assert.False(t, s.ExpiredAt(now.Add(SessionWindow)), "the boundary instant is still inside the window")
	assert.True(t, s.ExpiredAt(now.Add(SessionWindow+time.Second)))
}

func TestNewSessionMessage_Defaults(t *testing.T) {
	m, err := NewSessionMessage(SessionMessage{
		SessionID:     "s1",
		WaID:          "u",
		WaIDReceived:  "d",
		PhoneNumberID: "p",
		Content:       "hi",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusSent, m.Status)
	assert.True(t, m.Active)
	assert.JSONEq(t, `{}`, string(m.Payload))
	assert.False(t, m.CreatedAt.IsZero())
}

func TestNewSessionMessage_Validation(t *testing.T) {
	_, err := NewSessionMessage(SessionMessage{WaID: "u", PhoneNumberID: "p"})
	assert.Error(t, err, "missing session id")

	_, err = NewSessionMessage(SessionMessage{SessionID: "s1"})
	assert.ErrorIs(t, err, ErrMissingIdentity)

	_, err = NewSessionMessage(SessionMessage{
		SessionID: "s1", WaID: "u", PhoneNumberID: "p", Status: "bogus",
	})
	assert.Error(t, err, "unknown status")
}
