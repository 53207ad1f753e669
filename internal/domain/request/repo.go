package request

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows the admin request listing. Status accepts the three stored
// values plus the derived "Expired"; an "Accepted" filter excludes expired
// rows so the two derived views partition accepted requests.
type Filter struct {
	Search    string // matches requester name or message
	Status    string
	DateStart *time.Time // inclusive, on request_date
	DateEnd   *time.Time // inclusive, on request_date
}

type RequestRepository interface {
	Create(ctx context.Context, r *DonationRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*DonationRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, expiryDate *time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*DonationRequest, int, error)
	ListByRequester(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*DonationRequest, int, error)
	AdminList(ctx context.Context, f Filter, limit, offset int) ([]*DonationRequest, int, error)
	ListForExport(ctx context.Context, f Filter) ([]*DonationRequest, error)
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*DonationRequest, error)
}
