package reporting

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bloodlink/bloodlink/internal/domain/donor"
	"github.com/bloodlink/bloodlink/internal/domain/request"
)

type stubDonorStats struct {
	total  int
	recent []*donor.Donor
}

func (s stubDonorStats) CountAll(context.Context) (int, error) { return s.total, nil }
func (s stubDonorStats) ListRecent(_ context.Context, limit int) ([]*donor.Donor, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubRequestStats struct {
	total   int
	pending int
	recent  []*request.DonationRequest
}

func (s stubRequestStats) CountAll(context.Context) (int, error) { return s.total, nil }
func (s stubRequestStats) CountByStatus(_ context.Context, status string) (int, error) {
	if status == request.StatusPending {
		return s.pending, nil
	}
	return 0, nil
}
func (s stubRequestStats) ListRecent(_ context.Context, limit int) ([]*request.DonationRequest, error) {
	if limit < len(s.recent) {
		return s.recent[:limit], nil
	}
	return s.recent, nil
}

type stubContactStats struct{ total int }

func (s stubContactStats) CountAll(context.Context) (int, error) { return s.total, nil }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDashboard(t *testing.T) {
	lapsed := date(2026, 6, 1)
	svc := NewService(
		stubDonorStats{total: 42, recent: []*donor.Donor{{ID: uuid.New(), FullName: "Recent Donor"}}},
		stubRequestStats{total: 10, pending: 3, recent: []*request.DonationRequest{
			{ID: uuid.New(), Status: request.StatusAccepted, ExpiryDate: &lapsed},
			{ID: uuid.New(), Status: request.StatusPending},
		}},
		stubContactStats{total: 7},
	)
	svc.now = func() time.Time { return date(2026, 6, 15) }

	d, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.TotalDonors != 42 || d.TotalRequests != 10 || d.PendingRequests != 3 || d.TotalContactQueries != 7 {
		t.Errorf("unexpected totals: %+v", d)
	}
	if len(d.RecentDonors) != 1 || len(d.RecentRequests) != 2 {
		t.Fatalf("unexpected recent lists: %d donors, %d requests", len(d.RecentDonors), len(d.RecentRequests))
	}
	if d.RecentRequests[0].EffectiveStatus != request.StatusExpired {
		t.Errorf("expected lapsed accepted request to read Expired, got %q", d.RecentRequests[0].EffectiveStatus)
	}
	if d.RecentRequests[1].EffectiveStatus != request.StatusPending {
		t.Errorf("expected pending request to pass through, got %q", d.RecentRequests[1].EffectiveStatus)
	}
}

func TestDashboardHandler(t *testing.T) {
	svc := NewService(stubDonorStats{total: 1}, stubRequestStats{}, stubContactStats{})
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Dashboard(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"total_donors":1`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
