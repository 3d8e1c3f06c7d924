package usecase

import (
	"context"
	"fmt"
	"time"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// GetActiveSessionUseCase looks up the live session for a conversation key
// without opening a new one. Expiry is applied lazily here: a session found
// past its window is deactivated and reported as absent.
type GetActiveSessionUseCase struct {
	Repo repository.ChatRepository
}

func NewGetActiveSessionUseCase(repo repository.ChatRepository) *GetActiveSessionUseCase {
	return &GetActiveSessionUseCase{Repo: repo}
}

func (uc *GetActiveSessionUseCase) Execute(ctx context.Context, key chat.ConversationKey) (*chat.Session, error) {
	if !key.Valid() {
		return nil, chat.ErrMissingIdentity
	}
	session, err := uc.Repo.FindActiveSession(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if session == nil {
		return nil, nil
	}
	if session.ExpiredAt(time.Now().UTC()) {
		if err := uc.Repo.DeactivateSession(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return nil, nil
	}
	return session, nil
}
