package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bloodlink/bloodlink/internal/domain/donor"
)

// DonorDirectory is the slice of the donor repository the request service
// needs: resolving accounts for ownership checks and display fields.
type DonorDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*donor.Donor, error)
}

type Service struct {
	requests RequestRepository
	donors   DonorDirectory
	now      func() time.Time
}

func NewService(requests RequestRepository, donors DonorDirectory) *Service {
	return &Service{requests: requests, donors: donors, now: time.Now}
}

// Create records a new pending donation request from the authenticated
// requester to the given donor. The requester's display name and contact are
// copied onto the request at creation time.
func (s *Service) Create(ctx context.Context, requesterID, donorID uuid.UUID, message string) (*DonationRequest, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalid)
	}
	if requesterID == donorID {
		return nil, fmt.Errorf("%w: cannot send a request to yourself", ErrInvalid)
	}

	target, err := s.donors.GetByID(ctx, donorID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown donor", ErrInvalid)
	}
	if target.Status != donor.StatusActive {
		return nil, fmt.Errorf("%w: donor is not accepting requests", ErrInvalid)
	}
	requester, err := s.donors.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	dr := &DonationRequest{
		DonorID:          donorID,
		RequesterID:      requesterID,
		RequesterName:    requester.FullName,
		RequesterContact: requester.PhoneNumber,
		Message:          message,
		Status:           StatusPending,
	}
	if err := s.requests.Create(ctx, dr); err != nil {
		return nil, err
	}
	return dr, nil
}

// UpdateStatus dispatches a donor's decision on a request addressed to them.
// Anything other than Accepted or Denied is a validation error.
func (s *Service) UpdateStatus(ctx context.Context, id, donorActorID uuid.UUID, newStatus string, donationDate *time.Time) (*DonationRequest, error) {
	switch newStatus {
	case StatusAccepted:
		return s.Accept(ctx, id, donorActorID, donationDate)
	case StatusDenied:
		return s.Deny(ctx, id, donorActorID)
	default:
		return nil, fmt.Errorf("%w: new_status must be Accepted or Denied", ErrInvalid)
	}
}

// Accept marks the request accepted with the given donation date as its
// expiry. The date must not be in the past; today is allowed. Re-accepting a
// denied or lapsed request with a fresh date is permitted.
func (s *Service) Accept(ctx context.Context, id, donorActorID uuid.UUID, donationDate *time.Time) (*DonationRequest, error) {
	if donationDate == nil {
		return nil, fmt.Errorf("%w: expiry_date is required when accepting", ErrInvalid)
	}
	today := truncateToDay(s.now())
	day := truncateToDay(*donationDate)
	if day.Before(today) {
		return nil, fmt.Errorf("%w: donation date cannot be in the past", ErrInvalid)
	}

	dr, err := s.ownedRequest(ctx, id, donorActorID)
	if err != nil {
		return nil, err
	}

	if err := s.requests.UpdateStatus(ctx, id, StatusAccepted, &day); err != nil {
		return nil, err
	}
	dr.Status = StatusAccepted
	dr.ExpiryDate = &day
	return dr, nil
}

// Deny marks the request denied and clears any expiry date. Denying an
// already denied request is a no-op, not an error.
func (s *Service) Deny(ctx context.Context, id, donorActorID uuid.UUID) (*DonationRequest, error) {
	dr, err := s.ownedRequest(ctx, id, donorActorID)
	if err != nil {
		return nil, err
	}

	if err := s.requests.UpdateStatus(ctx, id, StatusDenied, nil); err != nil {
		return nil, err
	}
	dr.Status = StatusDenied
	dr.ExpiryDate = nil
	return dr, nil
}

// Withdraw deletes a pending request on behalf of the account that created
// it. Requests that have already been decided cannot be withdrawn.
func (s *Service) Withdraw(ctx context.Context, id, requesterActorID uuid.UUID) error {
	dr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if dr.RequesterID != requesterActorID {
		return ErrNotRequester
	}
	if dr.Status != StatusPending {
		return ErrNotPending
	}
	return s.requests.Delete(ctx, id)
}

// ListIncoming returns requests addressed to the donor, annotated with their
// effective status.
func (s *Service) ListIncoming(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*View, int, error) {
	items, total, err := s.requests.ListByDonor(ctx, donorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.views(items), total, nil
}

// ListOutgoing returns requests the account has sent, annotated with their
// effective status.
func (s *Service) ListOutgoing(ctx context.Context, requesterID uuid.UUID, limit, offset int) ([]*View, int, error) {
	items, total, err := s.requests.ListByRequester(ctx, requesterID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.views(items), total, nil
}

// -- admin operations --

func (s *Service) AdminList(ctx context.Context, f Filter, limit, offset int) ([]*View, int, error) {
	items, total, err := s.requests.AdminList(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.views(items), total, nil
}

// AdminDelete removes a request regardless of owner or state.
func (s *Service) AdminDelete(ctx context.Context, id uuid.UUID) error {
	return s.requests.Delete(ctx, id)
}

func (s *Service) AdminBulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no ids given", ErrInvalid)
	}
	return s.requests.DeleteMany(ctx, ids)
}

var exportHeader = []string{"Requester", "Contact", "Message", "Status", "Expiry Date", "Request Date"}

// ExportRows returns the filtered request listing as header and rows, with
// the derived status in the status column.
func (s *Service) ExportRows(ctx context.Context, f Filter) ([]string, [][]string, error) {
	items, err := s.requests.ListForExport(ctx, f)
	if err != nil {
		return nil, nil, err
	}

	today := s.now()
	rows := make([][]string, len(items))
	for i, dr := range items {
		expiry := ""
		if dr.ExpiryDate != nil {
			expiry = dr.ExpiryDate.Format("2006-01-02")
		}
		rows[i] = []string{
			dr.RequesterName, dr.RequesterContact, dr.Message,
			dr.EffectiveStatusAt(today), expiry,
			dr.RequestDate.Format("2006-01-02 15:04"),
		}
	}
	return exportHeader, rows, nil
}

// -- helpers --

func (s *Service) ownedRequest(ctx context.Context, id, donorActorID uuid.UUID) (*DonationRequest, error) {
	dr, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if dr.DonorID != donorActorID {
		return nil, ErrNotOwner
	}
	return dr, nil
}

func (s *Service) views(items []*DonationRequest) []*View {
	today := s.now()
	views := make([]*View, len(items))
	for i, dr := range items {
		views[i] = NewView(dr, today)
	}
	return views
}
