package usecase

import (
	"context"
	"fmt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

type GetContactsUseCase struct {
	Repo repository.ChatRepository
}

func NewGetContactsUseCase(repo repository.ChatRepository) *GetContactsUseCase {
	return &GetContactsUseCase{Repo: repo}
}

// ByPhoneNumber lists contacts attached to a line, newest activity first.
func (uc *GetContactsUseCase) ByPhoneNumber(ctx context.Context, phoneNumberID string, skip, limit int) ([]chat.Contact, error) {
	if phoneNumberID == "" {
		return nil, fmt.Errorf("phone_number_id is required")
	}
	contacts, err := uc.Repo.GetContactsByPhoneNumber(ctx, phoneNumberID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return contacts, nil
}

// ByID fetches one contact; ErrNotFound passes through for 404 mapping.
func (uc *GetContactsUseCase) ByID(ctx context.Context, contactID int64) (*chat.Contact, error) {
	c, err := uc.Repo.GetContact(ctx, contactID)
	if err != nil {
		return nil, err
	}
	return c, nil
}
