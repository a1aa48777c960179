package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// RollupReport counts what one run produced. Failures are per team or club
// and never abort the run.
type RollupReport struct {
	Teams        int `json:"teams"`
	TeamInsights int `json:"team_insights"`
	ClubInsights int `json:"club_insights"`
	SkippedTeams int `json:"skipped_teams"`
	Failures     int `json:"failures"`
}

// Insights is the total number of insights archived.
func (r RollupReport) Insights() int { return r.TeamInsights + r.ClubInsights }

func (r *RollupReport) add(o RollupReport) {
	r.Teams += o.Teams
	r.TeamInsights += o.TeamInsights
	r.ClubInsights += o.ClubInsights
	r.SkippedTeams += o.SkippedTeams
	r.Failures += o.Failures
}

// RollupService turns the latest player scores into team insights and team
// insights into one club insight per club.
type RollupService struct {
	DB        *gorm.DB
	Extractor *extractor.Extractor
	// Concurrency is the number of clubs processed at once; below 2 runs
	// clubs sequentially.
	Concurrency int
	// LLMTimeout bounds each insight call.
	LLMTimeout time.Duration
	// Locale drives lower-casing of digest topics.
	Locale string
}

// Run performs the rollup for runDate (YYYY-MM-DD). It only fails when the
// club list cannot be read or ctx is cancelled.
func (s *RollupService) Run(ctx context.Context, runDate string) (RollupReport, error) {
	ctx, span := otel.Tracer("services/RollupService").Start(ctx, "Run",
		trace.WithAttributes(attribute.String("date", runDate)),
	)
	defer span.End()

	if _, err := domain.ParseDayKey("", runDate); err != nil {
		return RollupReport{}, err
	}
	clubs, err := repo.ListClubs(ctx, s.DB)
	if err != nil {
		observability.SpanError(span, err)
		return RollupReport{}, fmt.Errorf("list clubs: %w", err)
	}

	// one slot per club; merged after the group finishes
	reports := make([]RollupReport, len(clubs))
	g, gctx := errgroup.WithContext(ctx)
	limit := s.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i := range clubs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = s.runClub(gctx, clubs[i], runDate)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.SpanError(span, err)
		return RollupReport{}, err
	}

	var total RollupReport
	for _, r := range reports {
		total.add(r)
	}
	span.SetAttributes(
		attribute.Int("team_insights", total.TeamInsights),
		attribute.Int("club_insights", total.ClubInsights),
		attribute.Int("failures", total.Failures),
	)
	log.Info().
		Str("date", runDate).
		Int("clubs", len(clubs)).
		Int("teams", total.Teams).
		Int("team_insights", total.TeamInsights).
		Int("club_insights", total.ClubInsights).
		Int("skipped_teams", total.SkippedTeams).
		Int("failures", total.Failures).
		Msg("rollup finished")
	return total, nil
}

func (s *RollupService) runClub(ctx context.Context, club domain.Club, runDate string) RollupReport {
	var rep RollupReport
	lg := log.With().Str("club_id", club.ID).Str("date", runDate).Logger()

	teams, err := repo.ListTeams(ctx, s.DB, club.ID)
	if err != nil {
		lg.Error().Err(err).Msg("rollup: list teams")
		observability.RollupFailures.WithLabelValues(string(domain.ScopeClub)).Inc()
		rep.Failures++
		return rep
	}

	names := make(map[string]string, len(teams))
	var produced []domain.Insight
	for _, team := range teams {
		names[team.ID] = team.Name
		rep.Teams++
		in, skipped, err := s.runTeam(ctx, team, runDate)
		switch {
		case err != nil:
			lg.Error().Err(err).Str("team_id", team.ID).Msg("rollup: team insight failed")
			observability.RollupFailures.WithLabelValues(string(domain.ScopeTeam)).Inc()
			rep.Failures++
		case skipped:
			rep.SkippedTeams++
		default:
			produced = append(produced, *in)
			rep.TeamInsights++
			observability.InsightsCreated.WithLabelValues(string(domain.ScopeTeam)).Inc()
		}
	}

	if len(produced) == 0 {
		// a previous run for the same date may have produced team insights
		stored, err := repo.ListInsights(ctx, s.DB, repo.InsightFilter{
			Scope: domain.ScopeTeam, ClubID: club.ID, From: runDate, To: runDate,
		})
		if err != nil {
			lg.Error().Err(err).Msg("rollup: load stored team insights")
			observability.RollupFailures.WithLabelValues(string(domain.ScopeClub)).Inc()
			rep.Failures++
			return rep
		}
		produced = stored
	}
	if len(produced) == 0 {
		return rep
	}

	if err := s.clubInsight(ctx, club, runDate, produced, names); err != nil {
		lg.Error().Err(err).Msg("rollup: club insight failed")
		observability.RollupFailures.WithLabelValues(string(domain.ScopeClub)).Inc()
		rep.Failures++
		return rep
	}
	rep.ClubInsights++
	observability.InsightsCreated.WithLabelValues(string(domain.ScopeClub)).Inc()
	return rep
}

// runTeam returns the archived insight, or skipped when no player of the
// team has any score on or before runDate.
func (s *RollupService) runTeam(ctx context.Context, team domain.Team, runDate string) (*domain.Insight, bool, error) {
	players, err := repo.ListTeamMembers(ctx, s.DB, team.ClubID, team.ID, domain.RolePlayer)
	if err != nil {
		return nil, false, fmt.Errorf("list players: %w", err)
	}
	ids := make([]string, 0, len(players))
	for _, p := range players {
		ids = append(ids, p.ID)
	}
	latest, err := repo.LatestWellness(ctx, s.DB, ids, runDate)
	if err != nil {
		return nil, false, fmt.Errorf("latest scores: %w", err)
	}
	if len(latest) == 0 {
		return nil, true, nil
	}

	scores := make([]domain.WellnessScore, 0, len(latest))
	for _, id := range ids {
		if w, ok := latest[id]; ok {
			scores = append(scores, w)
		}
	}
	digest := BuildTeamDigest(team, runDate, scores, s.Locale)

	llmCtx, cancel := s.llmContext(ctx)
	out, err := s.Extractor.TeamInsight(llmCtx, digest)
	cancel()
	if err != nil {
		return nil, false, err
	}

	in := &domain.Insight{
		Scope:    domain.ScopeTeam,
		ClubID:   team.ClubID,
		TeamID:   team.ID,
		Title:    out.Title,
		Content:  out.Content,
		Category: extractor.NormalizeCategory(domain.ScopeTeam, out.Category),
		Date:     runDate,
	}
	if err := repo.CreateInsight(ctx, s.DB, in); err != nil {
		return nil, false, fmt.Errorf("archive team insight: %w", err)
	}
	return in, false, nil
}

func (s *RollupService) clubInsight(ctx context.Context, club domain.Club, runDate string, teams []domain.Insight, names map[string]string) error {
	sort.SliceStable(teams, func(a, b int) bool { return teams[a].TeamID < teams[b].TeamID })
	digest := BuildClubDigest(club, runDate, teams, names)

	llmCtx, cancel := s.llmContext(ctx)
	out, err := s.Extractor.ClubInsight(llmCtx, digest)
	cancel()
	if err != nil {
		return err
	}
	return repo.CreateInsight(ctx, s.DB, &domain.Insight{
		Scope:    domain.ScopeClub,
		ClubID:   club.ID,
		Title:    out.Title,
		Content:  out.Content,
		Category: extractor.NormalizeCategory(domain.ScopeClub, out.Category),
		Date:     runDate,
	})
}

func (s *RollupService) llmContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.LLMTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.LLMTimeout)
}

// ListInsights reads the insight archive for actorID. Team scope is open to
// the team's staff and the club's responsibles; club scope only to
// responsibles. Players never see insights.
func (s *RollupService) ListInsights(ctx context.Context, actorID string, f repo.InsightFilter) ([]domain.Insight, error) {
	actor, err := repo.GetProfile(ctx, s.DB, actorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	if actor.ClubID == "" || actor.ClubID != f.ClubID {
		return nil, ErrForbidden
	}
	switch actor.Role {
	case domain.RoleResponsible:
	case domain.RoleStaff:
		if f.Scope != domain.ScopeTeam || f.TeamID == "" || f.TeamID != actor.TeamID {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}
	if f.From != "" {
		if _, err := domain.ParseDayKey(actorID, f.From); err != nil {
			return nil, err
		}
	}
	if f.To != "" {
		if _, err := domain.ParseDayKey(actorID, f.To); err != nil {
			return nil, err
		}
	}
	return repo.ListInsights(ctx, s.DB, f)
}
