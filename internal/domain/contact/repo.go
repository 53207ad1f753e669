package contact

import (
	"context"

	"github.com/google/uuid"
)

type QueryRepository interface {
	Create(ctx context.Context, q *Query) error
	// List returns queries newest first.
	List(ctx context.Context, limit, offset int) ([]*Query, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMany(ctx context.Context, ids []uuid.UUID) (int64, error)
	CountAll(ctx context.Context) (int, error)
}
