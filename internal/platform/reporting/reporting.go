package reporting

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodlink/bloodlink/internal/domain/donor"
	"github.com/bloodlink/bloodlink/internal/domain/request"
	"github.com/bloodlink/bloodlink/internal/platform/auth"
)

// recentLimit caps the recent-activity lists on the dashboard.
const recentLimit = 5

// DonorStats is the slice of the donor repository the dashboard reads.
type DonorStats interface {
	CountAll(ctx context.Context) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*donor.Donor, error)
}

// RequestStats is the slice of the request repository the dashboard reads.
type RequestStats interface {
	CountAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
	ListRecent(ctx context.Context, limit int) ([]*request.DonationRequest, error)
}

// ContactStats is the slice of the contact repository the dashboard reads.
type ContactStats interface {
	CountAll(ctx context.Context) (int, error)
}

// Dashboard holds the admin overview figures.
type Dashboard struct {
	TotalDonors         int             `json:"total_donors"`
	TotalRequests       int             `json:"total_requests"`
	PendingRequests     int             `json:"pending_requests"`
	TotalContactQueries int             `json:"total_contact_queries"`
	RecentDonors        []*donor.Donor  `json:"recent_donors"`
	RecentRequests      []*request.View `json:"recent_requests"`
	GeneratedAt         time.Time       `json:"generated_at"`
}

type Service struct {
	donors   DonorStats
	requests RequestStats
	contacts ContactStats
	now      func() time.Time
}

func NewService(donors DonorStats, requests RequestStats, contacts ContactStats) *Service {
	return &Service{donors: donors, requests: requests, contacts: contacts, now: time.Now}
}

// Dashboard aggregates counts and recent activity for the admin overview.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: s.now()}

	var err error
	if d.TotalDonors, err = s.donors.CountAll(ctx); err != nil {
		return nil, err
	}
	if d.TotalRequests, err = s.requests.CountAll(ctx); err != nil {
		return nil, err
	}
	if d.PendingRequests, err = s.requests.CountByStatus(ctx, request.StatusPending); err != nil {
		return nil, err
	}
	if d.TotalContactQueries, err = s.contacts.CountAll(ctx); err != nil {
		return nil, err
	}

	if d.RecentDonors, err = s.donors.ListRecent(ctx, recentLimit); err != nil {
		return nil, err
	}
	recent, err := s.requests.ListRecent(ctx, recentLimit)
	if err != nil {
		return nil, err
	}
	today := s.now()
	d.RecentRequests = make([]*request.View, len(recent))
	for i, r := range recent {
		d.RecentRequests[i] = request.NewView(r, today)
	}
	return d, nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/admin/dashboard", h.Dashboard, auth.RequireRole(auth.RoleAdmin))
}

func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.svc.Dashboard(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, d)
}
