package user

import (
	"context"

	"github.com/google/uuid"
)

// Repository định nghĩa contract đọc user
type Repository interface {
	// FindByID returns ErrUserNotFound nếu không tồn tại
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
