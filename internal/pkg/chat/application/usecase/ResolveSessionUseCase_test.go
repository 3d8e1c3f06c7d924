package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
)

var testKey = chat.ConversationKey{
	WaID:          "5511999990000",
	WaIDReceived:  "551133334444",
	PhoneNumberID: "111222333",
}

func TestResolveSession_CreatesWhenNoneExists(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSessionUseCase(repo)

	now := time.Now().UTC()
	s, err := uc.Execute(context.Background(), testKey, now)
	require.NoError(t, err)
	require.NotNil(t, s)

	assert.NotEmpty(t, s.ID)
	assert.True(t, s.Active)
	assert.Equal(t, now.Add(chat.SessionWindow), s.ExpiresAt)
	assert.Equal(t, 1, repo.activeSessionCount())
}

func TestResolveSession_ReusesActiveSession(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSessionUseCase(repo)

	now := time.Now().UTC()
	first, err := uc.Execute(context.Background(), testKey, now)
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), testKey, now.Add(23*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.createSessionCt)
}

func TestResolveSession_ExpiredSessionIsReplaced(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSessionUseCase(repo)

	now := time.Now().UTC()
	first, err := uc.Execute(context.Background(), testKey, now)
	require.NoError(t, err)

	second, err := uc.Execute(context.Background(), testKey, now.Add(chat.SessionWindow+time.Minute))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, second.Active)
	assert.False(t, repo.sessions[first.ID].Active, "expired session must be deactivated")
	assert.Equal(t, 1, repo.activeSessionCount())
}

func TestResolveSession_ConcurrentResolvesCreateOneSession(t *testing.T) {
	repo := newFakeRepo()
	uc := NewResolveSessionUseCase(repo)

	now := time.Now().UTC()
	const n = 16

	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := uc.Execute(context.Background(), testKey, now)
			if err == nil && s != nil {
				ids[i] = s.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, repo.createSessionCt, "only one create must reach the repository")
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestResolveSession_InvalidKey(t *testing.T) {
	uc := NewResolveSessionUseCase(newFakeRepo())

	_, err := uc.Execute(context.Background(), chat.ConversationKey{WaID: "x"}, time.Now())
	assert.ErrorIs(t, err, chat.ErrMissingIdentity)
}
