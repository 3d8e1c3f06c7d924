package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type UpdateFlowStateUseCase struct {
	Repo repository.ChatRepository
}

func NewUpdateFlowStateUseCase(repo repository.ChatRepository) *UpdateFlowStateUseCase {
	return &UpdateFlowStateUseCase{Repo: repo}
}

func (uc *UpdateFlowStateUseCase) Execute(ctx context.Context, messageID int64, state json.RawMessage) error {
	if len(state) == 0 || !json.Valid(state) {
		return fmt.Errorf("flow_state must be a valid JSON object")
	}
	err := uc.Repo.UpdateFlowState(ctx, messageID, state)
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
