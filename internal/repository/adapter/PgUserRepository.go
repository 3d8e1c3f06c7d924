package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	chat "github.com/imogoapp/whatsapp-webhook/internal/pkg/chat/application/domain"
	port "github.com/imogoapp/whatsapp-webhook/internal/repository/port"
)

type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ port.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) Create(ctx context.Context, name, email, password string) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	var u chat.User
	err = r.pool.QueryRow(ctx, `
		INSERT INTO chat.app_user (name, email, password_hash, activate)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, name, email, create_in, activate
	`, name, email, string(hash)).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.Activate)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) FindByID(ctx context.Context, id int64) (*chat.User, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*chat.User, error) {
	return r.findOne(ctx, "email = $1", email)
}

func (r *PgUserRepository) findOne(ctx context.Context, where string, arg any) (*chat.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var u chat.User
	err := r.pool.QueryRow(ctx,
		"SELECT id, name, email, create_in, activate FROM chat.app_user WHERE "+where, arg,
	).Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.Activate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) UpdatePassword(ctx context.Context, id int64, password string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE chat.app_user SET password_hash = $2 WHERE id = $1",
		id, string(hash),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrUserNotFound
	}
	return nil
}

func (r *PgUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx,
		"UPDATE chat.app_user SET activate = $2 WHERE id = $1",
		id, active,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrUserNotFound
	}
	return nil
}
