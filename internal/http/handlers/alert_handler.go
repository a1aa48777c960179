// Alert HTTP handlers.
//
//   - GET   /clubs/{clubId}/teams/{teamId}/alerts             (team alerts, ETag)
//   - PATCH /clubs/{clubId}/teams/{teamId}/alerts/{alertId}   (triage)
//
// Both are open to the team's staff and to the club's responsibles. Players
// are always denied.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
	"github.com/jochenheirman09/broos-app-sub001/internal/utils"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 200
)

// UpdateAlertRequest is the JSON payload for an alert transition.
type UpdateAlertRequest struct {
	Status domain.AlertStatus `json:"status" example:"acknowledged"`
}

// ListAlertsResponse wraps a team's alerts, newest first.
type ListAlertsResponse struct {
	Alerts []domain.Alert `json:"alerts"`
}

// ListTeamAlerts godoc
// @ID          listTeamAlerts
// @Summary     List a team's alerts
// @Tags        Alerts
// @Produce     json
//
// @Param       X-User-ID  header  string  true   "Caller profile id"
// @Param       clubId     path    string  true   "Club id"
// @Param       teamId     path    string  true   "Team id"
// @Param       status     query   string  false  "Filter by status"  Enums(new, acknowledged, resolved)
// @Param       limit      query   int     false  "Max items"         minimum(1) maximum(200) default(50)
//
// @Success     200  {object}  handlers.ListAlertsResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid status"
// @Failure     403  {object}  handlers.ErrorResponse  "Not allowed for this team"
// @Failure     404  {object}  handlers.ErrorResponse  "Caller has no profile"
// @Router      /clubs/{clubId}/teams/{teamId}/alerts [get]
func (h *Handlers) ListTeamAlerts(c *gin.Context) {
	ctx := c.Request.Context()
	clubID, teamID := c.Param("clubId"), c.Param("teamId")

	status := domain.AlertStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, "status must be new, acknowledged or resolved")
		return
	}
	limit := utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultAlertLimit), 1, maxAlertLimit)

	alerts, err := h.alerts.ListTeamAlerts(ctx, callerID(c), clubID, teamID, status, limit)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeProfileNotFound, "no profile for this user")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed for this team")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}

	// The ETag is computed after authorization so it never leaks whether a
	// team has alerts.
	if h.db != nil {
		if count, maxTS, err := repo.TeamAlertsStats(ctx, h.db, clubID, teamID); err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			etag := fmt.Sprintf(`W/"alerts:%s:%s:%d:%d:%d"`, teamID, status, limit, count, ts)
			if notModified(c, etag) {
				return
			}
		}
	}

	if alerts == nil {
		alerts = []domain.Alert{}
	}
	ok(c, http.StatusOK, ListAlertsResponse{Alerts: alerts})
}

// UpdateAlertStatus godoc
// @ID          updateAlertStatus
// @Summary     Change an alert's status
// @Description Moves an alert to new, acknowledged or resolved. Only the status changes.
// @Tags        Alerts
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller profile id"
// @Param       clubId     path    string  true  "Club id"
// @Param       teamId     path    string  true  "Team id"
// @Param       alertId    path    string  true  "Alert id"
// @Param       body       body    handlers.UpdateAlertRequest  true  "New status"
//
// @Success     200  {object}  services.AlertUpdateResult
// @Failure     400  {object}  services.AlertUpdateResult  "Invalid status"
// @Failure     403  {object}  services.AlertUpdateResult  "Permission denied"
// @Failure     404  {object}  services.AlertUpdateResult  "Alert or caller not found"
// @Failure     500  {object}  services.AlertUpdateResult  "Internal error"
// @Router      /clubs/{clubId}/teams/{teamId}/alerts/{alertId} [patch]
func (h *Handlers) UpdateAlertStatus(c *gin.Context) {
	var req UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res := h.alerts.SetStatus(c.Request.Context(), callerID(c),
		c.Param("clubId"), c.Param("teamId"), c.Param("alertId"), req.Status)

	ok(c, alertStatusCode(res.Code), res)
}

func alertStatusCode(code string) int {
	switch code {
	case services.CodeOK:
		return http.StatusOK
	case services.CodeInvalidStatus:
		return http.StatusBadRequest
	case services.CodePermissionDenied:
		return http.StatusForbidden
	case services.CodeAlertNotFound, services.CodeActorNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
