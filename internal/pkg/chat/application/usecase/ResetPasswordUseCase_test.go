package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	userport "github.com/imogoapp/whatsapp-webhook/internal/repository/port"
)

type fakeUserRepo struct {
	user     *chat.User
	password string
}

var _ userport.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) Create(ctx context.Context, name, email, password string) (*chat.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*chat.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, userport.ErrUserNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*chat.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, userport.ErrUserNotFound
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, password string) error {
	f.password = password
	return nil
}

func (f *fakeUserRepo) SetActive(ctx context.Context, id int64, active bool) error { return nil }

type fakeEmailSender struct {
	fail  error
	sent  int
	last  string
	creds string
}

func (f *fakeEmailSender) SendPasswordReset(ctx context.Context, name, email, password string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent++
	f.last = email
	f.creds = password
	return nil
}

func TestResetPassword_Success(t *testing.T) {
	users := &fakeUserRepo{user: &chat.User{ID: 1, Name: "Ana", Email: "ana@example.com"}}
	sender := &fakeEmailSender{}
	uc := NewResetPasswordUseCase(users, sender)

	result, err := uc.Execute(context.Background(), "ana@example.com")
	require.NoError(t, err)

	assert.True(t, result.EmailSent)
	assert.Equal(t, "ana@example.com", result.Email)
	assert.Len(t, users.password, 8)
	assert.Equal(t, users.password, sender.creds, "the emailed password must be the stored one")
}

func TestResetPassword_EmailFailureIsPartialSuccess(t *testing.T) {
	users := &fakeUserRepo{user: &chat.User{ID: 1, Name: "Ana", Email: "ana@example.com"}}
	sender := &fakeEmailSender{fail: errors.New("relay down")}
	uc := NewResetPasswordUseCase(users, sender)

	result, err := uc.Execute(context.Background(), "ana@example.com")
	require.NoError(t, err, "email failure must not surface as an error")

	assert.False(t, result.EmailSent)
	assert.NotEmpty(t, users.password, "the credential change is never rolled back")
}

func TestResetPassword_UnknownEmail(t *testing.T) {
	uc := NewResetPasswordUseCase(&fakeUserRepo{}, &fakeEmailSender{})

	_, err := uc.Execute(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, userport.ErrUserNotFound)
}
