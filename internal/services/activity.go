package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// ResolveActivity decides what the player is doing on the day of key. An
// individual training logged for that day wins; then the team's weekly
// schedule; then, for players without a team, their own schedule. Anything
// else is a rest day.
func ResolveActivity(ctx context.Context, db *gorm.DB, p *domain.UserProfile, key domain.DayKey, day time.Time) (domain.Activity, error) {
	individual, err := repo.HasIndividualTraining(ctx, db, key)
	if err != nil {
		return "", err
	}
	if individual {
		return domain.ActivityIndividual, nil
	}

	if p.TeamID != "" {
		team, err := repo.GetTeam(ctx, db, p.TeamID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			log.Warn().Str("user_id", p.ID).Str("team_id", p.TeamID).Msg("profile references a missing team")
		case err != nil:
			return "", err
		default:
			if a, ok := team.Schedule.For(day); ok {
				return a, nil
			}
		}
		return domain.ActivityRest, nil
	}

	if a, ok := p.Schedule.For(day); ok {
		return a, nil
	}
	return domain.ActivityRest, nil
}
