package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_UsesRouteTemplates(t *testing.T) {
	r := newEngine(Metrics())
	r.GET("/chat/days/:date/messages", func(c *gin.Context) { c.String(http.StatusOK, "[]") })
	r.GET("/empty", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	const route = "/chat/days/:date/messages"
	base := testutil.ToFloat64(httpReqs.WithLabelValues("GET", route, "200"))
	baseMiss := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404"))

	for _, d := range []string{"2026-03-01", "2026-03-02"} {
		if w := do(r, http.MethodGet, "/chat/days/"+d+"/messages", nil); w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
	do(r, http.MethodGet, "/nope/abc", nil)
	do(r, http.MethodGet, "/empty", nil)

	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", route, "200")); got != base+2 {
		t.Fatalf("route counter = %v, want %v", got, base+2)
	}
	if got := testutil.ToFloat64(httpReqs.WithLabelValues("GET", "unmatched", "404")); got != baseMiss+1 {
		t.Fatalf("unmatched counter = %v, want %v", got, baseMiss+1)
	}
	if got := testutil.ToFloat64(httpInflight); got != 0 {
		t.Fatalf("inflight = %v, want 0", got)
	}
}
