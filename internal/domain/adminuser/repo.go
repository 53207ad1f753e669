package adminuser

import (
	"context"

	"github.com/google/uuid"
)

type AdminRepository interface {
	Create(ctx context.Context, a *Admin) error
	GetByID(ctx context.Context, id uuid.UUID) (*Admin, error)
	// GetByIdentifier looks an admin up by username or email.
	GetByIdentifier(ctx context.Context, identifier string) (*Admin, error)
	Update(ctx context.Context, a *Admin) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Admin, int, error)
}
