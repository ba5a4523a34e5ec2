package repository

import (
	"context"
	"errors"

	"github.com/iconforge/iconforge-backend/internal/domain/entity"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SearchByName(ctx context.Context, keyword string, limit int) ([]entity.UserSummary, error)
}
