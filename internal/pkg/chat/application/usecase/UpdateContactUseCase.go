package usecase

import (
	"context"
	"errors"
	"fmt"

	repository "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/persistence/repository/port"
)

// UpdateContactInput applies the requested mutation; nil fields are left
// untouched.
type UpdateContactInput struct {
	ContactID       int64
	Name            *string
	ActivateBot     *bool
	ActivateAutoMsg *bool
}

type UpdateContactUseCase struct {
	Repo repository.ChatRepository
}

func NewUpdateContactUseCase(repo repository.ChatRepository) *UpdateContactUseCase {
	return &UpdateContactUseCase{Repo: repo}
}

func (uc *UpdateContactUseCase) Execute(ctx context.Context, in UpdateContactInput) error {
	if in.Name == nil && in.ActivateBot == nil && in.ActivateAutoMsg == nil {
		return fmt.Errorf("nothing to update")
	}
	if in.Name != nil {
		if *in.Name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		if err := uc.wrap(uc.Repo.UpdateContactName(ctx, in.ContactID, *in.Name)); err != nil {
			return err
		}
	}
	if in.ActivateBot != nil {
		if err := uc.wrap(uc.Repo.SetContactBot(ctx, in.ContactID, *in.ActivateBot)); err != nil {
			return err
		}
	}
	if in.ActivateAutoMsg != nil {
		if err := uc.wrap(uc.Repo.SetContactAutomaticMessage(ctx, in.ContactID, *in.ActivateAutoMsg)); err != nil {
			return err
		}
	}
	return nil
}

func (uc *UpdateContactUseCase) wrap(err error) error {
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
