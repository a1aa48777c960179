package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/worker"
)

// OnboardingService walks a new player through the six onboarding topics.
// The current topic is never stored; it is always the first topic without a
// summary.
type OnboardingService struct {
	DB        *gorm.DB
	Extractor *extractor.Extractor
	// Pool runs summary saves off the turn's path. Nil saves inline.
	Pool *worker.Pool
	// HistoryLimit caps the topic-scoped history sent to the extractor.
	HistoryLimit int
}

// NextTopic returns the first topic in canonical order that has no summary.
// ok is false once all six are summarized.
func NextTopic(p *domain.UserProfile) (topic domain.Topic, ok bool) {
	for _, t := range domain.Topics {
		if p.TopicSummary(t) == "" {
			return t, true
		}
	}
	return "", false
}

// Handle answers one onboarding turn. The extractor's reply is always
// returned. A finished topic's summary is held on the result and only saved
// once the caller passes it to SaveFinishedTopic.
func (s *OnboardingService) Handle(ctx context.Context, p *domain.UserProfile, text string) (*OnboardingResult, error) {
	topic, ok := NextTopic(p)
	if !ok {
		return &OnboardingResult{Response: msgAlreadyKnown}, nil
	}

	ctx, span := otel.Tracer("services/OnboardingService").Start(ctx, "Handle",
		trace.WithAttributes(
			attribute.String("user.id", p.ID),
			attribute.String("topic", string(topic)),
		),
	)
	defer span.End()

	history, err := repo.ListTopicMessages(ctx, s.DB, p.ID, topic, s.historyLimit())
	if err != nil {
		observability.SpanError(span, err)
		return nil, err
	}

	out, err := s.Extractor.Onboarding(ctx, extractor.OnboardingInput{
		UserName: p.DisplayName,
		Topic:    topic,
		Message:  text,
		History:  history,
	})
	if err != nil {
		observability.SpanError(span, err)
		return nil, err
	}

	res := &OnboardingResult{
		Response:      out.Response,
		Topic:         topic,
		TopicComplete: out.IsTopicComplete,
	}
	if out.IsTopicComplete && out.Summary != "" {
		res.summary = out.Summary
	}
	return res, nil
}

// SaveFinishedTopic hands the summary held by res to the background saver and
// records the outcome in res.SavePending. It does nothing when the turn did
// not finish a topic.
func (s *OnboardingService) SaveFinishedTopic(userID string, res *OnboardingResult) {
	if res.summary == "" {
		return
	}
	res.SavePending = s.scheduleSave(userID, res.Topic, res.summary)
}

func (s *OnboardingService) scheduleSave(userID string, topic domain.Topic, summary string) bool {
	save := func(ctx context.Context) error {
		return s.SaveTopicSummary(ctx, userID, topic, summary)
	}
	if s.Pool == nil {
		if err := save(context.Background()); err != nil {
			log.Error().Err(err).Str("user_id", userID).Str("topic", string(topic)).Msg("onboarding summary save failed")
			return false
		}
		return true
	}
	if err := s.Pool.Submit("onboarding-summary", save); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("topic", string(topic)).Msg("onboarding summary save not scheduled")
		return false
	}
	return true
}

// SaveTopicSummary stores summary for topic and, in the same transaction,
// sets onboarding_completed from the resulting set of summaries. The flag is
// never written by anything else.
func (s *OnboardingService) SaveTopicSummary(ctx context.Context, userID string, topic domain.Topic, summary string) error {
	if !topic.Valid() {
		return fmt.Errorf("unknown onboarding topic %q", topic)
	}
	if summary == "" {
		return errors.New("empty topic summary")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := repo.GetProfile(ctx, tx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		p.SetTopicSummary(topic, summary)
		completed := p.AllTopicsSummarized()
		if err := repo.SetTopicSummary(ctx, tx, userID, topic, summary, completed); err != nil {
			return err
		}
		if completed && !p.OnboardingCompleted {
			log.Info().Str("user_id", userID).Msg("onboarding completed")
		}
		return nil
	})
}

func (s *OnboardingService) historyLimit() int {
	if s.HistoryLimit > 0 {
		return s.HistoryLimit
	}
	return 20
}
