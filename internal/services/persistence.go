package services

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
)

// TurnCommit is everything one turn writes.
type TurnCommit struct {
	UserText string
	Reply    string
	// Topic tags both messages for onboarding turns.
	Topic    domain.Topic
	Wellness domain.WellnessUpdate
	Alert    *domain.AlertSignal
	ClubID   string
	TeamID   string
}

// CommitResult holds the rows a successful commit created.
type CommitResult struct {
	UserMessage      domain.ChatMessage
	AssistantMessage domain.ChatMessage
	Alert            *domain.Alert
}

// PersistenceCoordinator writes a turn as a single all-or-nothing batch.
type PersistenceCoordinator struct {
	DB *gorm.DB
}

// Commit appends the user and assistant messages to the day container,
// merges the day summary and score fields, and creates at most one alert,
// all in one transaction. On failure nothing is visible and the error wraps
// ErrPersistence. There is no retry.
func (p *PersistenceCoordinator) Commit(ctx context.Context, key domain.DayKey, c TurnCommit) (*CommitResult, error) {
	ctx, span := otel.Tracer("services/PersistenceCoordinator").Start(ctx, "Commit",
		trace.WithAttributes(
			attribute.String("user.id", key.UserID),
			attribute.String("date", key.Date),
			attribute.Int("scores", len(c.Wellness.Scores)),
			attribute.Bool("alert", c.Alert != nil),
		),
	)
	defer span.End()

	var out CommitResult
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		msgs, err := repo.AppendMessages(ctx, tx, key,
			repo.NewMessage{Role: roleUser, Content: c.UserText, Topic: c.Topic},
			repo.NewMessage{Role: roleAssistant, Content: c.Reply, Topic: c.Topic},
		)
		if err != nil {
			return fmt.Errorf("append messages: %w", err)
		}
		out.UserMessage, out.AssistantMessage = msgs[0], msgs[1]

		if c.Wellness.Summary != "" {
			if err := repo.UpsertChatSummary(ctx, tx, key, c.Wellness.Summary); err != nil {
				return fmt.Errorf("merge summary: %w", err)
			}
		}
		if err := repo.MergeWellness(ctx, tx, key, c.Wellness); err != nil {
			return fmt.Errorf("merge scores: %w", err)
		}
		if c.Alert != nil {
			a, err := repo.CreateAlert(ctx, tx, key.UserID, c.ClubID, c.TeamID, *c.Alert)
			if err != nil {
				return fmt.Errorf("create alert: %w", err)
			}
			out.Alert = a
		}
		return nil
	})
	if err != nil {
		observability.SpanError(span, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if out.Alert != nil {
		observability.AlertsCreated.WithLabelValues(string(out.Alert.Type)).Inc()
	}
	return &out, nil
}
