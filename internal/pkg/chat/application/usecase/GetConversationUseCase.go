package usecase

import (
	"context"
	"fmt"
	"sort"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type GetConversationInput struct {
	WaID          string
	PhoneNumberID string
	Limit         int
}

// Conversation is the full history for one conversation key: its sessions
// plus their messages merged into a single timeline.
type Conversation struct {
	Sessions []chat.Session
	Messages []chat.SessionMessage
}

type GetConversationUseCase struct {
	Repo repository.ChatRepository
}

func NewGetConversationUseCase(repo repository.ChatRepository) *GetConversationUseCase {
	return &GetConversationUseCase{Repo: repo}
}

func (uc *GetConversationUseCase) Execute(ctx context.Context, in GetConversationInput) (*Conversation, error) {
	if in.WaID == "" || in.PhoneNumberID == "" {
		return nil, fmt.Errorf("wa_id and phone_number_id are required")
	}
	sessions, err := uc.Repo.GetUserSessions(ctx, in.WaID, in.PhoneNumberID, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	conv := &Conversation{Sessions: sessions}
	for _, s := range sessions {
		msgs, err := uc.Repo.GetSessionMessages(ctx, s.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		conv.Messages = append(conv.Messages, msgs...)
	}
	sort.Slice(conv.Messages, func(i, j int) bool {
		return conv.Messages[i].CreatedAt.Before(conv.Messages[j].CreatedAt)
	})
	return conv, nil
}
