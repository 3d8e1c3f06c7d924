package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog/log"

	emailport "github.com/imogoapp/whatsapp-webhook/internal/infrastructure/email/port"
	userport "github.com/imogoapp/whatsapp-webhook/internal/repository/port"
)

// ResetPasswordResult distinguishes full success from the partial case where
// the credential changed but the notification email did not go out.
type ResetPasswordResult struct {
	Email     string
	EmailSent bool
}

// ResetPasswordUseCase rotates a user's password and notifies them by email.
// The email is fire-and-forget: its failure never undoes the committed
// credential change, it only downgrades the outcome to partial success.
type ResetPasswordUseCase struct {
	Users userport.UserRepository
	Email emailport.Sender
}

func NewResetPasswordUseCase(users userport.UserRepository, email emailport.Sender) *ResetPasswordUseCase {
	return &ResetPasswordUseCase{Users: users, Email: email}
}

func (uc *ResetPasswordUseCase) Execute(ctx context.Context, email string) (*ResetPasswordResult, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	user, err := uc.Users.FindByEmail(ctx, email)
	if errors.Is(err, userport.ErrUserNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	password, err := numericPassword(8)
	if err != nil {
		return nil, err
	}
	if err := uc.Users.UpdatePassword(ctx, user.ID, password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	result := &ResetPasswordResult{Email: user.Email, EmailSent: true}
	if err := uc.Email.SendPasswordReset(ctx, user.Name, user.Email, password); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("reset-password: email dispatch failed")
		result.EmailSent = false
	}
	return result, nil
}

func numericPassword(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
