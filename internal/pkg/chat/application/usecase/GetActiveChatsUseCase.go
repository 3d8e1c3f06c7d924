package usecase

import (
	"context"
	"fmt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type GetActiveChatsInput struct {
	PhoneNumberID string
	Skip          int
	Limit         int
}

type ActiveChats struct {
	Total int
	Chats []chat.ChatSummary
}

// GetActiveChatsUseCase lists the active conversations for a line, backing
// the chat-list view.
type GetActiveChatsUseCase struct {
	Repo repository.ChatRepository
}

func NewGetActiveChatsUseCase(repo repository.ChatRepository) *GetActiveChatsUseCase {
	return &GetActiveChatsUseCase{Repo: repo}
}

func (uc *GetActiveChatsUseCase) Execute(ctx context.Context, in GetActiveChatsInput) (*ActiveChats, error) {
	if in.PhoneNumberID == "" {
		return nil, fmt.Errorf("phone_number_id is required")
	}
	chats, total, err := uc.Repo.GetActiveChats(ctx, in.PhoneNumberID, in.Skip, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return &ActiveChats{Total: total, Chats: chats}, nil
}
