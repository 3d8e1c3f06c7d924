package usecase

import (
	"context"
	"fmt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type GetSessionMessagesUseCase struct {
	Repo repository.ChatRepository
}

func NewGetSessionMessagesUseCase(repo repository.ChatRepository) *GetSessionMessagesUseCase {
	return &GetSessionMessagesUseCase{Repo: repo}
}

// Execute lists a session's messages in creation order. An unknown session id
// surfaces as ErrNotFound.
func (uc *GetSessionMessagesUseCase) Execute(ctx context.Context, sessionID string) ([]chat.SessionMessage, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	msgs, err := uc.Repo.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if len(msgs) == 0 {
		return nil, repository.ErrNotFound
	}
	return msgs, nil
}
