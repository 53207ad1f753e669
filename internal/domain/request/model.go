package request

import (
	"time"

	"github.com/google/uuid"
)

// Stored request statuses. Expired is never stored: it is derived at read
// time from an Accepted status whose expiry date has passed.
const (
	StatusPending  = "Pending"
	StatusAccepted = "Accepted"
	StatusDenied   = "Denied"
	StatusExpired  = "Expired"
)

// DonationRequest maps to the donor_requests table.
type DonationRequest struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	DonorID          uuid.UUID  `db:"donor_id" json:"donor_id"`
	RequesterID      uuid.UUID  `db:"requester_id" json:"requester_id"`
	RequesterName    string     `db:"requester_name" json:"requester_name"`
	RequesterContact string     `db:"requester_contact" json:"requester_contact"`
	Message          string     `db:"message" json:"message"`
	Status           string     `db:"status" json:"status"`
	ExpiryDate       *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	RequestDate      time.Time  `db:"request_date" json:"request_date"`
}

// EffectiveStatus derives the status shown to users from the stored status
// and expiry date. An Accepted request whose expiry date is strictly before
// today (date-only comparison) reads as Expired; an expiry date equal to
// today is still Accepted. All other statuses pass through unchanged.
func EffectiveStatus(status string, expiryDate *time.Time, today time.Time) string {
	if status != StatusAccepted || expiryDate == nil {
		return status
	}
	if truncateToDay(*expiryDate).Before(truncateToDay(today)) {
		return StatusExpired
	}
	return status
}

// EffectiveStatusAt returns the request's derived status as of the given day.
func (r *DonationRequest) EffectiveStatusAt(today time.Time) string {
	return EffectiveStatus(r.Status, r.ExpiryDate, today)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// View is a request annotated with its derived status for API responses.
type View struct {
	*DonationRequest
	EffectiveStatus string `json:"effective_status"`
}

// NewView annotates a request with its effective status as of today.
func NewView(r *DonationRequest, today time.Time) *View {
	return &View{DonationRequest: r, EffectiveStatus: r.EffectiveStatusAt(today)}
}
