package middleware

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func TestKeyByCallerOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = net.JoinHostPort("203.0.113.9", "12345")
	c.Request = req

	if key := KeyByCallerOrIP()(c); !strings.HasPrefix(key, "ip:") || !strings.Contains(key, "203.0.113.9") {
		t.Fatalf("expected ip key, got %q", key)
	}
	c.Set(ctxKeyUserID, "p1")
	if key := KeyByCallerOrIP()(c); key != "user:p1" {
		t.Fatalf("expected user key, got %q", key)
	}
}

func TestNewRateLimiter_Defaults(t *testing.T) {
	rl := NewRateLimiter(2, 0, nil)
	if rl.burst != 1 || rl.keyFn == nil {
		t.Fatalf("defaults not applied: burst=%d keyFn nil=%v", rl.burst, rl.keyFn == nil)
	}
	now := time.Now()
	if rl.limiter("k", now) != rl.limiter("k", now) {
		t.Fatalf("limiter must be reused per key")
	}
}

func TestRateLimiter_EvictsIdleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)
	rl.ttl = time.Minute
	old := time.Now().Add(-time.Hour)
	rl.visitors["stale"] = &visitor{limiter: rate.NewLimiter(1, 1), lastSeen: old}
	rl.calls = evictEvery - 1

	rl.limiter("fresh", time.Now())

	if _, ok := rl.visitors["stale"]; ok {
		t.Fatalf("stale visitor not evicted")
	}
	if _, ok := rl.visitors["fresh"]; !ok {
		t.Fatalf("fresh visitor missing")
	}
}

func TestRateLimiter_Handler(t *testing.T) {
	rl := NewRateLimiter(0.5, 1, nil)
	r := newEngine(CallerID(), rl.Handler())
	r.POST("/turns", func(c *gin.Context) { c.Status(http.StatusOK) })

	p1 := map[string]string{HeaderUserID: "p1"}
	if w := do(r, http.MethodPost, "/turns", p1); w.Code != http.StatusOK {
		t.Fatalf("first request: %d", w.Code)
	}
	w := do(r, http.MethodPost, "/turns", p1)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: %d, want 429", w.Code)
	}
	if ra := w.Header().Get("Retry-After"); ra != "2" {
		t.Fatalf("Retry-After = %q, want 2", ra)
	}
	if decodeBody(t, w)["code"] != "rate_limited" {
		t.Fatalf("wrong error code")
	}

	// Buckets are per caller.
	if w := do(r, http.MethodPost, "/turns", map[string]string{HeaderUserID: "p2"}); w.Code != http.StatusOK {
		t.Fatalf("other caller: %d", w.Code)
	}
}

func TestRateLimiter_ReplaysBypass(t *testing.T) {
	rl := NewRateLimiter(0, 1, nil)
	lookup := func(context.Context, string, string, time.Time) (bool, error) { return true, nil }
	r := newEngine(CallerID(), IdempotencyValidator(IdempotencyOptions{}, lookup), rl.Handler())
	r.POST("/turns", func(c *gin.Context) { c.Status(http.StatusOK) })

	hdr := map[string]string{HeaderUserID: "p1", HeaderIdempotencyKey: "k1"}
	for i := 0; i < 3; i++ {
		if w := do(r, http.MethodPost, "/turns", hdr); w.Code != http.StatusOK {
			t.Fatalf("replay %d limited: %d", i, w.Code)
		}
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Now()
	if got := retryAfter(rate.NewLimiter(0, 1), now); got != 1 {
		t.Fatalf("zero rate: got %d", got)
	}
	lim := rate.NewLimiter(0.25, 1)
	lim.AllowN(now, 1)
	if got := retryAfter(lim, now); got != 4 {
		t.Fatalf("got %d, want 4", got)
	}
}
