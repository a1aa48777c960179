package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogs redirects the global logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestRequestID_PropagatesOrGenerates(t *testing.T) {
	r := newEngine(RequestID())
	r.GET("/", func(c *gin.Context) {
		rid, _ := c.Get(requestIDKey)
		c.String(http.StatusOK, asString(rid))
	})

	w := do(r, http.MethodGet, "/", map[string]string{requestIDHeader: "abc"})
	if w.Body.String() != "abc" || w.Header().Get(requestIDHeader) != "abc" {
		t.Fatalf("expected propagated id, body=%q header=%q", w.Body.String(), w.Header().Get(requestIDHeader))
	}

	w = do(r, http.MethodGet, "/", nil)
	if len(w.Body.String()) != 36 || w.Header().Get(requestIDHeader) != w.Body.String() {
		t.Fatalf("expected generated uuid, got %q", w.Body.String())
	}
}

func TestRecovery_ReturnsJSON500(t *testing.T) {
	_ = captureLogs(t)
	r := newEngine(RequestID(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late")
	})

	w := do(r, http.MethodGet, "/boom", map[string]string{requestIDHeader: "rid-1"})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["code"] != "internal_error" || body["request_id"] != "rid-1" {
		t.Fatalf("unexpected body %v", body)
	}

	w = do(r, http.MethodGet, "/late", nil)
	if w.Body.String() != "partial" {
		t.Fatalf("written responses must not be rewritten, got %q", w.Body.String())
	}
}

func TestLoggerFrom_FallbackWithoutMiddleware(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) {
		if LoggerFrom(c) == nil {
			t.Errorf("LoggerFrom returned nil")
		}
		c.Status(http.StatusNoContent)
	})
	do(r, http.MethodGet, "/", nil)
}

func TestRedactingLogger_AttachesScopedLogger(t *testing.T) {
	buf := captureLogs(t)
	r := newEngine(RequestID(), CallerID(), RedactingLogger(RedactOptions{}))
	r.GET("/chat/days/:date/messages", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		LoggerFrom(c).Info().Msg("from handler")
		c.Status(http.StatusOK)
	})

	do(r, http.MethodGet, "/chat/days/2026-03-02/messages", map[string]string{
		requestIDHeader: "rid-7",
		HeaderUserID:    "p1",
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 log lines, got %d: %s", len(lines), buf.String())
	}
	for _, ln := range lines {
		var m map[string]any
		if err := json.Unmarshal([]byte(ln), &m); err != nil {
			t.Fatalf("bad json %q: %v", ln, err)
		}
		if m["request_id"] != "rid-7" || m["user_id"] != "p1" || m["route"] != "/chat/days/:date/messages" {
			t.Fatalf("missing scoped fields: %v", m)
		}
	}
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	buf := captureLogs(t)
	r := newEngine(RedactingLogger(RedactOptions{MaskHeaders: []string{" X-CloudScheduler "}}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	target := "/x?email=coach@club.be&id=3f1c2a7e-8b4d-4c1a-9e2f-0a1b2c3d4e5f"
	do(r, http.MethodGet, target, map[string]string{
		"Authorization":    "Bearer secret",
		"X-CloudScheduler": "true",
		"X-Note":           "mail me at kid@example.com",
	})

	out := buf.String()
	for _, leak := range []string{"coach@club.be", "3f1c2a7e", "Bearer secret", "kid@example.com"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"status":400`) {
		t.Fatalf("expected warn line for 400: %s", out)
	}
	if !strings.Contains(out, `"route":"/x"`) {
		t.Fatalf("expected route field: %s", out)
	}
}

func TestRedact(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", ""},
		{"date=2026-03-02", "date=2026-03-02"},
		{"a@b.io", "[REDACTED:email]"},
		{"call 0470 123 4567", "call [REDACTED:phone]"},
		{"id 3f1c2a7e-8b4d-4c1a-9e2f-0a1b2c3d4e5f", "id [REDACTED:id]"},
	}
	for _, tc := range cases {
		if got := redact(tc.in); got != tc.want {
			t.Fatalf("redact(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if truncate("abc", 0) != "abc" || truncate("abc", 3) != "abc" {
		t.Fatalf("short strings must pass through")
	}
	if got := truncate("abcdef", 3); got != "abc…" {
		t.Fatalf("got %q", got)
	}
}
