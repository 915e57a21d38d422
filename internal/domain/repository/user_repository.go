package repository

import (
	"context"

	"royalchat/internal/domain/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByReferralCode(ctx context.Context, code string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error

	// ListUsers returns every non-admin user record.
	ListUsers(ctx context.Context) ([]*entity.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
