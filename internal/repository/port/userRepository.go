package repository

import (
	"context"
	"errors"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
)

var ErrUserNotFound = errors.New("repository: user not found")

// UserRepository is the thin operator-account contract. Most of it exists for
// the CRUD surface that lives outside the ingestion core; the reset-password
// flow is the only consumer inside this service.
type UserRepository interface {
	Create(ctx context.Context, name, email, password string) (*chat.User, error)
	FindByID(ctx context.Context, id int64) (*chat.User, error)
	FindByEmail(ctx context.Context, email string) (*chat.User, error)
	UpdatePassword(ctx context.Context, id int64, password string) error
	SetActive(ctx context.Context, id int64, active bool) error
}
