package request

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bloodlink/bloodlink/internal/platform/auth"
)

func withActor(c echo.Context, id uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), auth.ActorIDKey, id.String())
	c.SetRequest(c.Request().WithContext(ctx))
}

func TestHandlerCreate(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := fmt.Sprintf(`{"donor_id":%q,"message":"urgent O+ needed"}`, f.donorID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withActor(c, f.requester)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Pending") {
		t.Errorf("expected Pending status in response: %s", rec.Body.String())
	}
}

func TestHandlerUpdateStatus_Accept(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()
	dr := f.pendingRequest(t)

	body := `{"new_status":"Accepted","expiry_date":"2026-06-20"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/v1/requests/:id/status")
	c.SetParamNames("id")
	c.SetParamValues(dr.ID.String())
	withActor(c, f.donorID)

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Accepted") {
		t.Errorf("expected Accepted in response: %s", rec.Body.String())
	}
}

func TestHandlerUpdateStatus_UnknownStatusIs400(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()
	dr := f.pendingRequest(t)

	body := `{"new_status":"Maybe"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(dr.ID.String())
	withActor(c, f.donorID)

	err := h.UpdateStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}

func TestHandlerUpdateStatus_WrongDonorIs403(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()
	dr := f.pendingRequest(t)

	body := `{"new_status":"Denied"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(dr.ID.String())
	withActor(c, uuid.New())

	err := h.UpdateStatus(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", httpErr.Code)
	}
}

func TestHandlerWithdraw_DecidedRequestIs409(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()
	dr := f.pendingRequest(t)
	day := date(2026, 6, 20)
	if _, err := f.svc.Accept(context.Background(), dr.ID, f.donorID, &day); err != nil {
		t.Fatalf("accepting: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(dr.ID.String())
	withActor(c, f.requester)

	err := h.Withdraw(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestHandlerWithdraw_NotFoundIs404(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())
	withActor(c, f.requester)

	err := h.Withdraw(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", httpErr.Code)
	}
}

func TestHandlerAdminExport_Excel(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()
	f.pendingRequest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/requests/export?format=excel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.AdminExport(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/vnd.ms-excel" {
		t.Errorf("content type: got %q", got)
	}
	if !strings.HasPrefix(rec.Body.String(), "Requester\tContact\tMessage") {
		t.Errorf("unexpected export header: %q", rec.Body.String())
	}
}

func TestHandlerAdminList_BadDateFilter(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/requests?date_start=junk", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.AdminList(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", httpErr.Code)
	}
}
