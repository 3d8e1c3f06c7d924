package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type MarkBotRepliedUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkBotRepliedUseCase(repo repository.ChatRepository) *MarkBotRepliedUseCase {
	return &MarkBotRepliedUseCase{Repo: repo}
}

func (uc *MarkBotRepliedUseCase) Execute(ctx context.Context, messageID int64) error {
	err := uc.Repo.MarkBotReplied(ctx, messageID)
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
