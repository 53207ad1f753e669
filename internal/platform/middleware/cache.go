package middleware

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CacheConfig controls revalidation headers on API reads. Donor records and
// request listings are personal data, so authenticated responses are only
// ever revalidated; unauthenticated reads (the public donor search) get a
// short freshness window.
type CacheConfig struct {
	PublicMaxAge int      // freshness window in seconds for unauthenticated reads
	ExcludePaths []string // exact paths that stream and must not be buffered
}

// DefaultCacheConfig returns the settings the API server runs with.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{PublicMaxAge: 60}
}

// ETagMiddleware buffers GET and HEAD responses, tags them with a weak ETag,
// and answers If-None-Match revalidations with 304 Not Modified. Donor search
// results and admin listings are the heaviest reads in the API; clients that
// poll them revalidate instead of re-downloading full pages.
func ETagMiddleware(cfg CacheConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return next(c)
			}
			for _, ex := range cfg.ExcludePaths {
				if req.URL.Path == ex {
					return next(c)
				}
			}

			res := c.Response()
			orig := res.Writer
			rec := &etagRecorder{ResponseWriter: orig, status: http.StatusOK}
			res.Writer = rec

			err := next(c)
			res.Writer = orig
			if err != nil {
				return err
			}

			// Error responses are replayed untouched.
			if rec.status >= 400 {
				return rec.replay(orig)
			}

			res.Header().Set("Cache-Control", cacheControlFor(req, cfg))
			res.Header().Set("Vary", "Accept, Authorization")

			etag := weakETag(rec.body.Bytes())
			res.Header().Set("ETag", etag)

			if match := req.Header.Get("If-None-Match"); match != "" && etagMatch(match, etag) {
				orig.WriteHeader(http.StatusNotModified)
				return nil
			}
			return rec.replay(orig)
		}
	}
}

// cacheControlFor picks the cache policy for a request. Anything under the
// admin prefix or carrying credentials holds personal data and must be
// revalidated on every use; public reads get the configured window.
func cacheControlFor(req *http.Request, cfg CacheConfig) string {
	if strings.HasPrefix(req.URL.Path, "/api/v1/admin/") || req.Header.Get("Authorization") != "" {
		return "private, no-cache"
	}
	return fmt.Sprintf("public, max-age=%d", cfg.PublicMaxAge)
}

// etagRecorder buffers the response body so the tag can be computed before
// anything reaches the client.
type etagRecorder struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *etagRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *etagRecorder) WriteHeader(code int) { r.status = code }

func (r *etagRecorder) Flush() {}

func (r *etagRecorder) replay(w http.ResponseWriter) error {
	w.WriteHeader(r.status)
	if r.body.Len() == 0 {
		return nil
	}
	_, err := w.Write(r.body.Bytes())
	return err
}

// weakETag derives a weak validator from the body length and FNV-1a hash.
func weakETag(body []byte) string {
	h := fnv.New64a()
	h.Write(body)
	return fmt.Sprintf(`W/"%x-%x"`, len(body), h.Sum64())
}

// etagMatch reports whether an If-None-Match value matches the tag. Handles
// comma-separated candidates, the * wildcard, and weak-to-strong comparison.
func etagMatch(header, etag string) bool {
	header = strings.TrimSpace(header)
	if header == "*" {
		return true
	}
	bare := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == bare {
			return true
		}
	}
	return false
}
