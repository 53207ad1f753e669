package adminuser

import (
	"context"
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

func TestHandlerLogin(t *testing.T) {
	svc, _ := newTestService()
	seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"identifier":"root","phone_number":"5550001111","password":"secret1!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token"`) {
		t.Errorf("expected a token in response: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password_hash") {
		t.Error("response leaks password hash")
	}
}

func TestHandlerForgotPassword_GenericResponse(t *testing.T) {
	svc, _ := newTestService()
	seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	bodies := []string{
		`{"username":"root","email":"root@example.com","phone_number":"5550001111","new_password":"fresh1!!"}`,
		`{"username":"nobody","email":"nobody@example.com","phone_number":"5550009999","new_password":"fresh1!!"}`,
	}

	var responses []string
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/forgot-password", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.ForgotPassword(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		responses = append(responses, rec.Body.String())
	}

	// Matched and unmatched details must be indistinguishable.
	if responses[0] != responses[1] {
		t.Errorf("responses differ: %q vs %q", responses[0], responses[1])
	}

	// But the matching reset must actually take effect.
	if _, _, err := svc.Login(context.Background(), "root", "5550001111", "fresh1!!"); err != nil {
		t.Errorf("login with reset password failed: %v", err)
	}
}

func TestHandlerLogin_BadCredentialsIs401(t *testing.T) {
	svc, _ := newTestService()
	seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"identifier":"root","phone_number":"5550001111","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}

func TestHandlerDelete_SelfIs409(t *testing.T) {
	svc, _ := newTestService()
	a := seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())
	withActor(c, a.ID)

	err := h.Delete(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestHandlerCreate_DuplicateIs409(t *testing.T) {
	svc, _ := newTestService()
	a := seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	body := `{"full_name":"Other","username":"root","email":"other@example.com","phone_number":"5554445555","password":"secret1!"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/admins", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withActor(c, a.ID)

	err := h.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", httpErr.Code)
	}
}

func TestHandlerGetSettings(t *testing.T) {
	svc, _ := newTestService()
	a := seedAdmin(t, svc)
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	withActor(c, a.ID)

	if err := h.GetSettings(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"root"`) {
		t.Errorf("expected own profile in response: %s", rec.Body.String())
	}
}

func TestHandlerGetSettings_NoActorIs401(t *testing.T) {
	svc, _ := newTestService()
	h := NewHandler(svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/settings", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.GetSettings(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", httpErr.Code)
	}
}
