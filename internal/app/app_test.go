package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jochenheirman09/broos-app-sub001/internal/config"
	"github.com/jochenheirman09/broos-app-sub001/internal/lock"
	"github.com/jochenheirman09/broos-app-sub001/internal/notify"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:               "development",
		Port:              "0",
		ReadTimeout:       time.Second,
		ReadHeaderTimeout: time.Second,
		WriteTimeout:      time.Second,
		IdleTimeout:       time.Second,
		MaxHeaderBytes:    1 << 20,
		GinMode:           "test",
		LogLevel:          "info",
		APIBasePath:       "/api/v1",
		DBPath:            filepath.Join(t.TempDir(), "app.db"),
		Timezone:          "UTC",
		MaxMessageRunes:   2000,
		RateRPS:           100,
		RateBurst:         10,
		IdempotencyTTL:    time.Hour,
		LLM:               config.LLMConfig{Timeout: time.Second, Locale: "nl-BE"},
		TurnLockTTL:       time.Second,
		WorkerConcurrency: 1,
		WorkerQueueSize:   4,
		RollupConcurrency: 1,
		CronHeader:        "X-CloudScheduler",
		OTEL:              config.OTELConfig{ServiceName: "test"},
	}
}

func TestNew_DefaultsWithoutIntegrations(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	ctx := context.Background()

	a, err := New(ctx, testConfig(t), "test")
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.False(t, a.Turns.Extractor.Configured())
	assert.IsType(t, &lock.MemoryLocker{}, a.Turns.Locker)
	assert.IsType(t, notify.LogDispatcher{}, a.Turns.Notifier.Dispatcher)
	assert.Equal(t, time.UTC, a.Turns.Location)
	assert.Same(t, a.Pool, a.Turns.Onboarding.Pool)

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	report, err := a.Rollup.Run(ctx, "2026-03-02")
	require.NoError(t, err)
	assert.Zero(t, report.Teams)
}

func TestNew_Failures(t *testing.T) {
	ctx := context.Background()

	cfg := testConfig(t)
	cfg.Timezone = "Mars/Olympus"
	_, err := New(ctx, cfg, "test")
	assert.ErrorContains(t, err, "timezone")

	cfg = testConfig(t)
	cfg.DBPath = filepath.Join(t.TempDir(), "missing", "app.db")
	_, err = New(ctx, cfg, "test")
	assert.ErrorContains(t, err, "open database")
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), "test")
	require.NoError(t, err)
	defer a.Close(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
