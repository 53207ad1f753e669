package donor

import (
	"context"

	"github.com/google/uuid"
)

// AdminFilter narrows the admin donor listing.
type AdminFilter struct {
	Search     string // matches full name, email, or phone
	BloodGroup string
	Status     string
}

type DonorRepository interface {
	Create(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)
	GetByEmail(ctx context.Context, email string) (*Donor, error)
	Update(ctx context.Context, d *Donor) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	Search(ctx context.Context, bloodGroup, address string, exclude *uuid.UUID, limit, offset int) ([]*Donor, int, error)
	AdminList(ctx context.Context, f AdminFilter, limit, offset int) ([]*Donor, int, error)
	ListForExport(ctx context.Context, f AdminFilter) ([]*Donor, error)
	CountAll(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*Donor, error)
}
