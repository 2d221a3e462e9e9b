package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimit_RefusesAfterBurst(t *testing.T) {
	e := echo.New()
	mw := RateLimit(RateLimitConfig{Requests: 1, Window: time.Hour, Burst: 2})
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	call := func(ip string) (*httptest.ResponseRecorder, error) {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		return rec, handler(e.NewContext(req, rec))
	}

	for i := 0; i < 2; i++ {
		if _, err := call("10.0.0.1"); err != nil {
			t.Fatalf("request %d should pass: %v", i, err)
		}
	}

	rec, err := call("10.0.0.1")
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	if _, err := call("10.0.0.2"); err != nil {
		t.Fatalf("other clients must have their own bucket: %v", err)
	}
}
