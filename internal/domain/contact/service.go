package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	queries QueryRepository
}

func NewService(queries QueryRepository) *Service {
	return &Service{queries: queries}
}

type SubmitInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit records a message from the public contact form.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Query, error) {
	name := strings.TrimSpace(in.Name)
	message := strings.TrimSpace(in.Message)
	if name == "" || in.Email == "" || message == "" {
		return nil, fmt.Errorf("%w: name, email and message are required", ErrInvalid)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalid)
	}

	q := &Query{Name: name, Email: in.Email, Message: message}
	if err := s.queries.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) AdminList(ctx context.Context, limit, offset int) ([]*Query, int, error) {
	return s.queries.List(ctx, limit, offset)
}

func (s *Service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	return s.queries.Delete(ctx, id)
}

func (s *Service) AdminBulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no ids given", ErrInvalid)
	}
	return s.queries.DeleteMany(ctx, ids)
}
