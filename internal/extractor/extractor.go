package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
)

// maxHistory caps the transcript replayed to the model.
const maxHistory = 30

// Extractor builds prompts for the four call shapes and validates what comes
// back. A nil client means the service is not configured.
type Extractor struct {
	client Client
	locale language.Tag
	caser  cases.Caser
}

// New returns an Extractor answering in locale (a BCP 47 tag such as
// "nl-BE"). Unparseable tags fall back to English.
func New(client Client, locale string) *Extractor {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Extractor{client: client, locale: tag, caser: cases.Title(tag)}
}

// Configured reports whether a language-model client is available.
func (e *Extractor) Configured() bool { return e != nil && e.client != nil }

// Locale returns the target output locale.
func (e *Extractor) Locale() language.Tag { return e.locale }

func (e *Extractor) localeClause() string {
	name := display.English.Tags().Name(e.locale)
	if name == "" {
		name = e.locale.String()
	}
	return fmt.Sprintf("Write every natural-language field in %s (%s).", name, e.locale)
}

// Onboarding asks the model to continue the conversation about one topic.
func (e *Extractor) Onboarding(ctx context.Context, in OnboardingInput) (*OnboardingOutput, error) {
	ctx, span := otel.Tracer("extractor/Extractor").Start(ctx, "Onboarding",
		trace.WithAttributes(attribute.String("topic", string(in.Topic))))
	defer span.End()

	system := strings.Join([]string{
		"You are a warm check-in buddy getting to know a young athlete.",
		fmt.Sprintf("Only talk about the topic %q. Ask one question at a time.", in.Topic),
		"Set isTopicComplete to true once you have enough to write a short factual summary of this topic, and put that summary in summary.",
		"Do not invent facts the athlete did not say.",
		e.localeClause(),
	}, "\n")
	prompt := fmt.Sprintf("Athlete: %s\nTopic: %s\n\nConversation so far:\n%s\nNew message: %s",
		e.name(in.UserName), in.Topic, transcript(in.History), in.Message)

	raw, err := e.generate(ctx, SchemaOnboarding, system, prompt)
	if err != nil {
		return nil, err
	}
	var out OnboardingOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	out.Response = strings.TrimSpace(out.Response)
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Response == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return &out, nil
}

// Wellness runs the daily check-in analysis for a completed profile.
func (e *Extractor) Wellness(ctx context.Context, in WellnessInput) (*WellnessOutput, error) {
	ctx, span := otel.Tracer("extractor/Extractor").Start(ctx, "Wellness",
		trace.WithAttributes(attribute.String("activity", string(in.Activity))))
	defer span.End()

	buddy := in.BuddyName
	if buddy == "" {
		buddy = "Buddy"
	}
	dims := make([]string, 0, len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		dims = append(dims, string(d))
	}
	system := strings.Join([]string{
		fmt.Sprintf("You are %s, the daily check-in buddy of a young athlete.", buddy),
		"Reply briefly and kindly. Then extract signals from the athlete's words only.",
		"wellnessScores may contain any of: " + strings.Join(dims, ", ") + ". Score 1 (very bad) to 5 (very good); stress 5 means very relaxed. Only score what the athlete talked about.",
		"Set injury only when the athlete mentions pain or an injury.",
		"Add at most one alert, only for clear evidence of mental-health risk, aggression, substance abuse, extremely low mood or injury; quote the triggering sentence.",
		e.localeClause(),
	}, "\n")
	prompt := fmt.Sprintf("Athlete: %s\nToday's activity: %s\n\nToday's conversation:\n%s\nNew message: %s",
		e.name(in.UserName), in.Activity, transcript(in.History), in.Message)

	raw, err := e.generate(ctx, SchemaWellness, system, prompt)
	if err != nil {
		return nil, err
	}
	var w wireWellness
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	out := validateWellness(w)
	if out.Response == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidOutput)
	}
	return out, nil
}

// TeamInsight turns a team digest into a staff update.
func (e *Extractor) TeamInsight(ctx context.Context, d domain.TeamDigest) (*InsightOutput, error) {
	ctx, span := otel.Tracer("extractor/Extractor").Start(ctx, "TeamInsight",
		trace.WithAttributes(attribute.String("team.id", d.TeamID)))
	defer span.End()
	return e.insight(ctx, SchemaTeamInsight, domain.ScopeTeam,
		"You write a short weekly update for the staff of a youth sports team based on aggregated, anonymous wellbeing statistics. Never name individual players.",
		d)
}

// ClubInsight synthesises a run's team insights into one club update.
func (e *Extractor) ClubInsight(ctx context.Context, d domain.ClubDigest) (*InsightOutput, error) {
	ctx, span := otel.Tracer("extractor/Extractor").Start(ctx, "ClubInsight",
		trace.WithAttributes(attribute.String("club.id", d.ClubID)))
	defer span.End()
	return e.insight(ctx, SchemaClubInsight, domain.ScopeClub,
		"You write a short update for the club's wellbeing responsible, comparing the teams' latest staff updates and suggesting resources where useful.",
		d)
}

func (e *Extractor) insight(ctx context.Context, schema Schema, scope domain.InsightScope, role string, digest any) (*InsightOutput, error) {
	payload, err := json.MarshalIndent(digest, "", "  ")
	if err != nil {
		return nil, err
	}
	system := strings.Join([]string{
		role,
		"Pick category from: " + strings.Join(scope.Categories(), ", ") + ".",
		e.localeClause(),
	}, "\n")
	raw, err := e.generate(ctx, schema, system, "Digest:\n"+string(payload))
	if err != nil {
		return nil, err
	}
	var out InsightOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	out.Title = strings.TrimSpace(out.Title)
	out.Content = strings.TrimSpace(out.Content)
	if out.Title == "" || out.Content == "" {
		return nil, fmt.Errorf("%w: insight without title or content", ErrInvalidOutput)
	}
	out.Category = NormalizeCategory(scope, out.Category)
	return &out, nil
}

func (e *Extractor) generate(ctx context.Context, schema Schema, system, prompt string) ([]byte, error) {
	if !e.Configured() {
		return nil, ErrNotConfigured
	}
	start := time.Now()
	raw, err := e.client.Generate(ctx, Request{Schema: schema, System: system, Prompt: prompt})
	outcome := "ok"
	if err != nil {
		outcome = "error"
		observability.SpanError(trace.SpanFromContext(ctx), err)
	}
	observability.ExtractorDuration.WithLabelValues(string(schema), outcome).Observe(time.Since(start).Seconds())
	return raw, err
}

func (e *Extractor) name(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "the athlete"
	}
	return e.caser.String(s)
}

// NormalizeCategory maps c onto the scope's category set, case-insensitively,
// falling back to the scope's first category.
func NormalizeCategory(scope domain.InsightScope, c string) string {
	c = strings.TrimSpace(c)
	for _, allowed := range scope.Categories() {
		if strings.EqualFold(allowed, c) {
			return allowed
		}
	}
	return scope.Categories()[0]
}

// validateWellness drops everything the model was not allowed to emit.
func validateWellness(w wireWellness) *WellnessOutput {
	out := &WellnessOutput{
		Response: strings.TrimSpace(w.Response),
		Summary:  strings.TrimSpace(w.Summary),
	}

	for name, s := range w.WellnessScores {
		d := domain.Dimension(strings.ToLower(strings.TrimSpace(name)))
		if !d.Valid() {
			continue
		}
		score := int(math.Round(s.Score))
		reason := strings.TrimSpace(s.Reason)
		if score < domain.MinScore || score > domain.MaxScore || reason == "" {
			continue
		}
		if out.Scores == nil {
			out.Scores = make(map[domain.Dimension]domain.ScoreSignal)
		}
		out.Scores[d] = domain.ScoreSignal{Score: score, Reason: reason}
	}

	// injured=false is not stored so it cannot clear an earlier report that day.
	if w.Injury != nil && w.Injury.Injured {
		out.Injury = &domain.InjurySignal{Injured: true, Reason: strings.TrimSpace(w.Injury.Reason)}
	}

	// At most one alert per turn. When the model flags several, none is kept
	// rather than guessing which one matters.
	var alerts []domain.AlertSignal
	for _, a := range w.Alerts {
		t := domain.AlertType(strings.ToLower(strings.TrimSpace(a.Type)))
		msg := strings.TrimSpace(a.TriggeringMessage)
		if !t.Valid() || msg == "" {
			continue
		}
		alerts = append(alerts, domain.AlertSignal{Type: t, TriggeringMessage: msg})
	}
	switch {
	case len(alerts) == 1:
		out.Alert = &alerts[0]
	case len(alerts) > 1:
		log.Warn().Int("alerts", len(alerts)).Msg("model emitted more than one alert; dropping all")
	}
	return out
}

func transcript(msgs []domain.ChatMessage) string {
	if len(msgs) > maxHistory {
		msgs = msgs[len(msgs)-maxHistory:]
	}
	if len(msgs) == 0 {
		return "(none)\n"
	}
	var b strings.Builder
	for _, m := range msgs {
		who := "Athlete"
		if m.Role == "assistant" {
			who = "Buddy"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, m.Content)
	}
	return b.String()
}
