package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

const searchPage = `{"data":[{"full_name":"Jane Doe","blood_group":"O+","address":"Springfield","age":29}],"total":1}`

func newCacheEcho(cfg CacheConfig) *echo.Echo {
	e := echo.New()
	e.Use(ETagMiddleware(cfg))
	e.GET("/api/v1/donors/search", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(searchPage))
	})
	e.GET("/api/v1/admin/donors", func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(searchPage))
	})
	e.GET("/api/v1/admin/donors/export", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/csv", []byte("Name,Blood Group\nJane Doe,O+\n"))
	})
	e.GET("/api/v1/donors/missing", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "donor not found"})
	})
	e.POST("/api/v1/requests", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]string{"status": "Pending"})
	})
	return e
}

func TestETag_TagsDonorSearch(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/search?blood_group=O%2B", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("expected an ETag on the search response")
	}
	if got := rec.Header().Get("Cache-Control"); got != "public, max-age=60" {
		t.Errorf("expected public max-age policy, got %q", got)
	}
	if got := rec.Header().Get("Vary"); !strings.Contains(got, "Authorization") {
		t.Errorf("expected Vary to cover Authorization, got %q", got)
	}
	if rec.Body.String() == "" {
		t.Error("expected the body to be replayed")
	}
}

func TestETag_NotModifiedRoundTrip(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/v1/donors/search", nil))
	etag := first.Header().Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag on the first response")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/search", nil)
	req.Header.Set("If-None-Match", etag)
	second := httptest.NewRecorder()
	e.ServeHTTP(second, req)

	if second.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", second.Code)
	}
	if second.Body.Len() != 0 {
		t.Errorf("304 must not carry a body, got %q", second.Body.String())
	}
}

func TestETag_AdminListingsArePrivate(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/donors", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Errorf("expected private no-cache policy for admin reads, got %q", got)
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("admin reads still revalidate via ETag")
	}
}

func TestETag_AuthorizedSearchIsPrivate(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/search", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("Cache-Control"); got != "private, no-cache" {
		t.Errorf("expected private policy once credentials are presented, got %q", got)
	}
}

func TestETag_ExportsNotBuffered(t *testing.T) {
	cfg := DefaultCacheConfig()
	cfg.ExcludePaths = []string{"/api/v1/admin/donors/export"}
	e := newCacheEcho(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/donors/export", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("excluded export path must not be tagged")
	}
	if !strings.Contains(rec.Body.String(), "Jane Doe") {
		t.Errorf("export body lost: %q", rec.Body.String())
	}
}

func TestETag_SkipsWrites(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/requests", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("write responses must not be tagged")
	}
}

func TestETag_ErrorResponsesUntagged(t *testing.T) {
	e := newCacheEcho(DefaultCacheConfig())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/donors/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Header().Get("ETag") != "" {
		t.Error("error responses must not be tagged")
	}
	if !strings.Contains(rec.Body.String(), "donor not found") {
		t.Errorf("error body lost: %q", rec.Body.String())
	}
}

func TestWeakETag_TracksBody(t *testing.T) {
	a := weakETag([]byte(`{"total":1}`))
	b := weakETag([]byte(`{"total":2}`))

	if a == b {
		t.Error("different bodies must produce different tags")
	}
	if a != weakETag([]byte(`{"total":1}`)) {
		t.Error("the same body must produce a stable tag")
	}
	if !strings.HasPrefix(a, `W/"`) {
		t.Errorf("expected a weak validator, got %q", a)
	}
}

func TestETagMatch(t *testing.T) {
	tag := weakETag([]byte("body"))
	bare := strings.TrimPrefix(tag, "W/")

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"exact weak", tag, true},
		{"strong form", bare, true},
		{"wildcard", "*", true},
		{"in a list", `W/"other", ` + tag, true},
		{"no match", `W/"other"`, false},
		{"empty quotes", `""`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := etagMatch(tt.header, tag); got != tt.want {
				t.Errorf("etagMatch(%q, %q) = %v, want %v", tt.header, tag, got, tt.want)
			}
		})
	}
}
