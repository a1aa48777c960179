package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/lock"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// TurnRequest is one inbound chat message.
type TurnRequest struct {
	UserID   string
	Text     string
	Metadata map[string]string
}

// TurnRouter is the entry point for a chat turn. It checks configuration,
// serializes the user's turns, loads the profile, resolves today's activity
// and dispatches to onboarding or the daily wellness analysis.
type TurnRouter struct {
	DB          *gorm.DB
	Extractor   *extractor.Extractor
	Onboarding  *OnboardingService
	Persistence *PersistenceCoordinator
	Notifier    *AlertNotifier
	Locker      lock.Locker

	// Location defines the calendar day of a turn.
	Location *time.Location
	// MaxMessageRunes bounds the turn text; zero disables the check.
	MaxMessageRunes int
	// LLMTimeout bounds each extractor call.
	LLMTimeout time.Duration
	// LockTTL bounds both the wait for and the lease of the user lock.
	LockTTL time.Duration

	Now func() time.Time
}

// Process runs one turn. Configuration problems and upstream overload are
// reported as a FallbackResult with nothing persisted; a missing profile is
// ErrProfileNotFound; a failed commit wraps ErrPersistence.
func (r *TurnRouter) Process(ctx context.Context, req TurnRequest) (TurnResult, error) {
	ctx, span := otel.Tracer("services/TurnRouter").Start(ctx, "Process",
		trace.WithAttributes(attribute.String("user.id", req.UserID)),
	)
	defer span.End()

	if !r.Extractor.Configured() {
		return r.fallback(ReasonConfiguration), nil
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if r.MaxMessageRunes > 0 && utf8.RuneCountInString(text) > r.MaxMessageRunes {
		return nil, ErrMessageTooLong
	}

	unlock, err := r.lock(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			log.Warn().Str("user_id", req.UserID).Msg("turn lock busy")
			return r.fallback(ReasonServiceUnavailable), nil
		}
		observability.SpanError(span, err)
		return nil, err
	}
	defer unlock()

	profile, err := repo.GetProfile(ctx, r.DB, req.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		observability.SpanError(span, err)
		return nil, err
	}

	now := r.now().In(r.location())
	key := domain.DayKeyAt(profile.ID, now, r.location())
	activity, err := ResolveActivity(ctx, r.DB, profile, key, now)
	if err != nil {
		observability.SpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("activity", string(activity)),
		attribute.Bool("onboarding", !profile.OnboardingCompleted),
	)

	var res TurnResult
	if !profile.OnboardingCompleted {
		res, err = r.onboarding(ctx, profile, key, text)
	} else {
		res, err = r.wellness(ctx, profile, key, text, activity)
	}
	if err != nil {
		switch {
		case errors.Is(err, extractor.ErrServiceUnavailable),
			errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			log.Warn().Err(err).Str("user_id", profile.ID).Msg("extractor unavailable")
			return r.fallback(ReasonServiceUnavailable), nil
		case errors.Is(err, extractor.ErrNotConfigured):
			log.Error().Err(err).Msg("extractor rejected credentials")
			return r.fallback(ReasonConfiguration), nil
		}
		observability.SpanError(span, err)
		return nil, err
	}
	observability.TurnsTotal.WithLabelValues(string(res.Kind()), "").Inc()
	return res, nil
}

func (r *TurnRouter) onboarding(ctx context.Context, p *domain.UserProfile, key domain.DayKey, text string) (TurnResult, error) {
	llmCtx, cancel := r.llmContext(ctx)
	out, err := r.Onboarding.Handle(llmCtx, p, text)
	cancel()
	if err != nil {
		return nil, err
	}
	committed, err := r.Persistence.Commit(ctx, key, TurnCommit{
		UserText: text,
		Reply:    out.Response,
		Topic:    out.Topic,
	})
	if err != nil {
		return nil, err
	}
	// The profile only changes once the turn itself is stored.
	r.Onboarding.SaveFinishedTopic(p.ID, out)
	out.MessageID = committed.AssistantMessage.ID
	return *out, nil
}

func (r *TurnRouter) wellness(ctx context.Context, p *domain.UserProfile, key domain.DayKey, text string, activity domain.Activity) (TurnResult, error) {
	history, err := repo.ListDayMessages(ctx, r.DB, key)
	if err != nil {
		return nil, err
	}

	llmCtx, cancel := r.llmContext(ctx)
	out, err := r.Extractor.Wellness(llmCtx, extractor.WellnessInput{
		UserName:  p.DisplayName,
		BuddyName: p.BuddyName,
		Message:   text,
		History:   history,
		Activity:  activity,
	})
	cancel()
	if err != nil {
		return nil, err
	}

	committed, err := r.Persistence.Commit(ctx, key, TurnCommit{
		UserText: text,
		Reply:    out.Response,
		Wellness: out.Update(),
		Alert:    out.Alert,
		ClubID:   p.ClubID,
		TeamID:   p.TeamID,
	})
	if err != nil {
		return nil, err
	}

	res := WellnessResult{
		Response:  out.Response,
		Activity:  activity,
		Scores:    out.Scores,
		Injury:    out.Injury,
		MessageID: committed.AssistantMessage.ID,
	}
	if committed.Alert != nil {
		res.AlertID = committed.Alert.ID
		log.Info().
			Str("user_id", p.ID).
			Str("club_id", p.ClubID).
			Str("team_id", p.TeamID).
			Str("alert_type", string(committed.Alert.Type)).
			Msg("alert created")
		r.Notifier.AlertCreated(*committed.Alert)
	}
	return res, nil
}

// DayMessages returns the user's chat container for date (YYYY-MM-DD).
func (r *TurnRouter) DayMessages(ctx context.Context, userID, date string) ([]domain.ChatMessage, error) {
	key, err := domain.ParseDayKey(userID, date)
	if err != nil {
		return nil, err
	}
	return repo.ListDayMessages(ctx, r.DB, key)
}

// Today returns the day key of the current turn day for userID.
func (r *TurnRouter) Today(userID string) domain.DayKey {
	return domain.DayKeyAt(userID, r.now(), r.location())
}

func (r *TurnRouter) fallback(reason FallbackReason) FallbackResult {
	observability.TurnsTotal.WithLabelValues(string(KindFallback), string(reason)).Inc()
	return fallback(reason)
}

func (r *TurnRouter) lock(ctx context.Context, userID string) (lock.Unlock, error) {
	if r.Locker == nil {
		return func() {}, nil
	}
	ttl := r.LockTTL
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	waitCtx, cancel := context.WithTimeout(ctx, ttl)
	defer cancel()
	return r.Locker.Lock(waitCtx, lock.TurnKey(userID), ttl)
}

func (r *TurnRouter) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.LLMTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.LLMTimeout)
}

func (r *TurnRouter) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

func (r *TurnRouter) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}
