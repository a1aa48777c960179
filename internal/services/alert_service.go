package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/observability"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

// Alert update result codes.
const (
	CodeOK               = "ok"
	CodeInvalidStatus    = "invalid_status"
	CodeActorNotFound    = "actor_not_found"
	CodePermissionDenied = "permission_denied"
	CodeAlertNotFound    = "alert_not_found"
	CodeInternal         = "internal_error"
)

// AlertUpdateResult is the outcome of SetStatus. Failures are values, not
// errors, so callers can show Message directly.
type AlertUpdateResult struct {
	Success bool          `json:"success"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Alert   *domain.Alert `json:"alert,omitempty"`
}

// AlertService authorizes and applies alert triage.
type AlertService struct {
	DB *gorm.DB
	// ResponsibleTeamScoped limits responsible actors that belong to a team
	// to that team. When false they may act on every team of their club.
	ResponsibleTeamScoped bool
}

// SetStatus moves alertID to status on behalf of actorID. Only the status
// (and updated_at) is written.
func (s *AlertService) SetStatus(ctx context.Context, actorID, clubID, teamID, alertID string, status domain.AlertStatus) AlertUpdateResult {
	ctx, span := otel.Tracer("services/AlertService").Start(ctx, "SetStatus",
		trace.WithAttributes(
			attribute.String("actor.id", actorID),
			attribute.String("club.id", clubID),
			attribute.String("team.id", teamID),
			attribute.String("alert.id", alertID),
			attribute.String("status", string(status)),
		),
	)
	defer span.End()

	res := s.setStatus(ctx, actorID, clubID, teamID, alertID, status)
	observability.AlertTransitions.WithLabelValues(res.Code).Inc()
	span.SetAttributes(attribute.String("result.code", res.Code))
	return res
}

func (s *AlertService) setStatus(ctx context.Context, actorID, clubID, teamID, alertID string, status domain.AlertStatus) AlertUpdateResult {
	if !status.Valid() {
		return failure(CodeInvalidStatus, "Status must be new, acknowledged or resolved.")
	}
	if code, msg, err := s.authorize(ctx, actorID, clubID, teamID); code != "" {
		if err != nil {
			log.Error().Err(err).Str("actor_id", actorID).Msg("load actor profile")
		}
		return failure(code, msg)
	}

	a, err := repo.GetAlert(ctx, s.DB, alertID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return failure(CodeAlertNotFound, "This alert no longer exists.")
	case err != nil:
		log.Error().Err(err).Str("alert_id", alertID).Msg("load alert")
		return failure(CodeInternal, "The alert could not be updated. Please try again.")
	}
	// the path scope must match the alert itself, otherwise a staff member
	// could reach another team's alert through their own team's path
	if a.ClubID != clubID || a.TeamID != teamID {
		return failure(CodeAlertNotFound, "This alert no longer exists.")
	}

	if err := repo.UpdateAlertStatus(ctx, s.DB, alertID, status); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return failure(CodeAlertNotFound, "This alert no longer exists.")
		}
		log.Error().Err(err).Str("alert_id", alertID).Msg("update alert status")
		return failure(CodeInternal, "The alert could not be updated. Please try again.")
	}
	a.Status = status
	log.Info().
		Str("actor_id", actorID).
		Str("club_id", clubID).
		Str("team_id", teamID).
		Str("alert_id", alertID).
		Str("status", string(status)).
		Msg("alert status updated")
	return AlertUpdateResult{Success: true, Code: CodeOK, Message: "Alert updated.", Alert: a}
}

// ListTeamAlerts returns a team's alerts, newest first, under the same rules
// as SetStatus. Denials return ErrForbidden.
func (s *AlertService) ListTeamAlerts(ctx context.Context, actorID, clubID, teamID string, status domain.AlertStatus, limit int) ([]domain.Alert, error) {
	ctx, span := otel.Tracer("services/AlertService").Start(ctx, "ListTeamAlerts",
		trace.WithAttributes(
			attribute.String("actor.id", actorID),
			attribute.String("club.id", clubID),
			attribute.String("team.id", teamID),
		),
	)
	defer span.End()

	code, _, err := s.authorize(ctx, actorID, clubID, teamID)
	switch {
	case err != nil:
		observability.SpanError(span, err)
		return nil, err
	case code == CodeActorNotFound:
		return nil, ErrProfileNotFound
	case code != "":
		return nil, ErrForbidden
	}
	return repo.ListTeamAlerts(ctx, s.DB, repo.AlertFilter{
		ClubID: clubID,
		TeamID: teamID,
		Status: status,
		Limit:  limit,
	})
}

// authorize returns an empty code when actorID may triage alerts of teamID.
// err is set only for store failures.
func (s *AlertService) authorize(ctx context.Context, actorID, clubID, teamID string) (code, message string, err error) {
	actor, err := repo.GetProfile(ctx, s.DB, actorID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return CodeActorNotFound, "Your profile could not be found.", nil
	case err != nil:
		return CodeInternal, "The alert could not be updated. Please try again.", err
	}
	if actor.ClubID == "" || actor.ClubID != clubID {
		return CodePermissionDenied, "You can only manage alerts of your own club.", nil
	}
	switch actor.Role {
	case domain.RoleStaff:
		if actor.TeamID != teamID {
			return CodePermissionDenied, "You can only manage alerts of your own team.", nil
		}
	case domain.RoleResponsible:
		if s.ResponsibleTeamScoped && actor.TeamID != "" && actor.TeamID != teamID {
			return CodePermissionDenied, "You can only manage alerts of your own team.", nil
		}
	default:
		return CodePermissionDenied, "Only staff can manage alerts.", nil
	}
	return "", "", nil
}

func failure(code, msg string) AlertUpdateResult {
	return AlertUpdateResult{Success: false, Code: code, Message: msg}
}
