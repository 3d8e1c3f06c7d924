package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// ResolveSessionUseCase maps a conversation key to its single active session,
// opening a new one when none exists or the current one has expired.
//
// The lookup-then-create sequence runs inside a per-key critical section so
// two near-simultaneous first events for the same conversation cannot both
// create an "active" session.
type ResolveSessionUseCase struct {
	Repo  repository.ChatRepository
	locks *keyedMutex
}

func NewResolveSessionUseCase(repo repository.ChatRepository) *ResolveSessionUseCase {
	return &ResolveSessionUseCase{Repo: repo, locks: newKeyedMutex()}
}

// Execute returns the active session for key at instant now.
//
// An existing session past its expiry is deactivated (together with its
// messages) and replaced by a brand-new session with a fresh id; the old one
// is never resurrected.
func (uc *ResolveSessionUseCase) Execute(ctx context.Context, key chat.ConversationKey, now time.Time) (*chat.Session, error) {
	if !key.Valid() {
		return nil, chat.ErrMissingIdentity
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	unlock := uc.locks.Lock(key.String())
	defer unlock()

	current, err := uc.Repo.FindActiveSession(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if current != nil {
		if !current.ExpiredAt(now) {
			return current, nil
		}
		if err := uc.Repo.DeactivateSession(ctx, current.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
	}

	fresh, err := chat.NewSession(key, now)
	if err != nil {
		return nil, err
	}
	if err := uc.Repo.CreateSession(ctx, *fresh); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return fresh, nil
}
