// Package notify delivers push notifications to the devices registered for a
// set of users.
package notify

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// Message is a single notification payload.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// SendResult summarizes a multicast.
type SendResult struct {
	NothingToSend bool
	Sent          int
	Failed        int
	InvalidTokens []string
}

// Dispatcher sends msg to every device of userIDs.
type Dispatcher interface {
	Send(ctx context.Context, userIDs []string, msg Message) (SendResult, error)
}

// ErrInvalidToken marks a token the provider no longer accepts.
var ErrInvalidToken = errors.New("notify: device token no longer registered")

// sender delivers to one device token.
type sender interface {
	send(ctx context.Context, token string, msg Message) error
}

// maxParallelSends bounds concurrent provider calls per multicast.
const maxParallelSends = 8

// PushDispatcher resolves tokens from the store and multicasts through a
// sender. Tokens the provider rejects as unregistered are deleted.
type PushDispatcher struct {
	db     *gorm.DB
	sender sender
}

// Send implements Dispatcher.
func (d *PushDispatcher) Send(ctx context.Context, userIDs []string, msg Message) (SendResult, error) {
	tokens, err := repo.ListDeviceTokens(ctx, d.db, userIDs)
	if err != nil {
		return SendResult{}, err
	}
	if len(tokens) == 0 {
		observability.PushSends.WithLabelValues("nothing_to_send").Inc()
		return SendResult{NothingToSend: true}, nil
	}

	var (
		mu  sync.Mutex
		res SendResult
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelSends)
	for _, tok := range tokens {
		tok := tok
		g.Go(func() error {
			err := d.sender.send(gctx, tok, msg)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				res.Sent++
			case errors.Is(err, ErrInvalidToken):
				res.Failed++
				res.InvalidTokens = append(res.InvalidTokens, tok)
			default:
				res.Failed++
				log.Warn().Err(err).Msg("push send failed")
			}
			// per-token failures never cancel the rest of the multicast
			return nil
		})
	}
	_ = g.Wait()

	observability.PushSends.WithLabelValues("sent").Add(float64(res.Sent))
	observability.PushSends.WithLabelValues("failed").Add(float64(res.Failed))

	if len(res.InvalidTokens) > 0 {
		if err := repo.DeleteDeviceTokens(ctx, d.db, res.InvalidTokens); err != nil {
			log.Warn().Err(err).Int("tokens", len(res.InvalidTokens)).Msg("pruning invalid device tokens failed")
		}
	}
	return res, nil
}

// LogDispatcher is used when push delivery is not configured. It resolves
// tokens like the real dispatcher but only logs.
type LogDispatcher struct {
	DB *gorm.DB
}

// Send implements Dispatcher.
func (d LogDispatcher) Send(ctx context.Context, userIDs []string, msg Message) (SendResult, error) {
	tokens, err := repo.ListDeviceTokens(ctx, d.DB, userIDs)
	if err != nil {
		return SendResult{}, err
	}
	if len(tokens) == 0 {
		return SendResult{NothingToSend: true}, nil
	}
	log.Info().
		Int("recipients", len(userIDs)).
		Int("devices", len(tokens)).
		Str("title", msg.Title).
		Msg("push disabled; notification not sent")
	return SendResult{}, nil
}

// isUnregistered reports whether a provider error means the token is dead.
func isUnregistered(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == http.StatusNotFound {
		return true
	}
	for _, d := range gerr.Details {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		if code, _ := m["errorCode"].(string); code == "UNREGISTERED" {
			return true
		}
	}
	return false
}
