package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:notify_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.DeviceToken{}))
	return db
}

type fakeSender struct {
	mu      sync.Mutex
	got     []string
	failFor map[string]error
}

func (f *fakeSender) send(_ context.Context, token string, _ Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, token)
	return f.failFor[token]
}

func TestPushDispatcher_NothingToSend(t *testing.T) {
	db := newTestDB(t)
	d := &PushDispatcher{db: db, sender: &fakeSender{}}

	res, err := d.Send(context.Background(), []string{"coach"}, Message{Title: "x"})
	require.NoError(t, err)
	assert.True(t, res.NothingToSend)
	assert.Zero(t, res.Sent)
}

func TestPushDispatcher_MulticastAndPrunesInvalid(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	require.NoError(t, repo.RegisterDeviceToken(ctx, db, "coach1", "tok-a"))
	require.NoError(t, repo.RegisterDeviceToken(ctx, db, "coach1", "tok-b"))
	require.NoError(t, repo.RegisterDeviceToken(ctx, db, "coach2", "tok-c"))
	require.NoError(t, repo.RegisterDeviceToken(ctx, db, "player", "tok-p"))

	fs := &fakeSender{failFor: map[string]error{
		"tok-b": fmt.Errorf("%w: gone", ErrInvalidToken),
		"tok-c": errors.New("transient"),
	}}
	d := &PushDispatcher{db: db, sender: fs}

	res, err := d.Send(ctx, []string{"coach1", "coach2"}, Message{Title: "New alert", Body: "check the app"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, []string{"tok-b"}, res.InvalidTokens)
	assert.ElementsMatch(t, []string{"tok-a", "tok-b", "tok-c"}, fs.got)

	left, err := repo.ListDeviceTokens(ctx, db, []string{"coach1", "coach2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tok-a", "tok-c"}, left)
}

func TestLogDispatcher(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	d := LogDispatcher{DB: db}

	res, err := d.Send(ctx, []string{"u"}, Message{})
	require.NoError(t, err)
	assert.True(t, res.NothingToSend)

	require.NoError(t, repo.RegisterDeviceToken(ctx, db, "u", "t"))
	res, err = d.Send(ctx, []string{"u"}, Message{})
	require.NoError(t, err)
	assert.False(t, res.NothingToSend)
	assert.Zero(t, res.Sent)
}

func TestIsUnregistered(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", &googleapi.Error{Code: http.StatusNotFound}, true},
		{"detail code", &googleapi.Error{Code: http.StatusBadRequest, Details: []interface{}{
			map[string]any{"errorCode": "UNREGISTERED"},
		}}, true},
		{"wrapped", fmt.Errorf("send: %w", &googleapi.Error{Code: http.StatusNotFound}), true},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, false},
		{"plain", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUnregistered(tc.err))
		})
	}
}

func TestCredentialOptions(t *testing.T) {
	assert.Len(t, credentialOptions(""), 1)
	assert.Len(t, credentialOptions(`{"type":"service_account"}`), 2)
	assert.Len(t, credentialOptions("/etc/sa.json"), 2)
}
