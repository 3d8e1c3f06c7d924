package usecase

import (
	"context"
	"errors"
	"fmt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type UpdateMessageStatusUseCase struct {
	Repo repository.ChatRepository
}

func NewUpdateMessageStatusUseCase(repo repository.ChatRepository) *UpdateMessageStatusUseCase {
	return &UpdateMessageStatusUseCase{Repo: repo}
}

func (uc *UpdateMessageStatusUseCase) Execute(ctx context.Context, messageID int64, status string) error {
	if !chat.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	err := uc.Repo.UpdateMessageStatus(ctx, messageID, chat.MessageStatus(status))
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
