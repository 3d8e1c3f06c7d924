package usecase

import (
	"context"
	"fmt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// GetUserSessionsInput selects the latest sessions for a user on a line.
type GetUserSessionsInput struct {
	WaID          string
	PhoneNumberID string
	Limit         int
}

type GetUserSessionsUseCase struct {
	Repo repository.ChatRepository
}

func NewGetUserSessionsUseCase(repo repository.ChatRepository) *GetUserSessionsUseCase {
	return &GetUserSessionsUseCase{Repo: repo}
}

func (uc *GetUserSessionsUseCase) Execute(ctx context.Context, in GetUserSessionsInput) ([]chat.Session, error) {
	if in.WaID == "" || in.PhoneNumberID == "" {
		return nil, fmt.Errorf("wa_id and phone_number_id are required")
	}
	sessions, err := uc.Repo.GetUserSessions(ctx, in.WaID, in.PhoneNumberID, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return sessions, nil
}
