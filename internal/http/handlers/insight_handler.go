// Insight HTTP handlers.
//
//   - GET /clubs/{clubId}/insights                   (club updates; ?scope=team lists every team update of the club)
//   - GET /clubs/{clubId}/teams/{teamId}/insights    (one team's staff updates)
//
// Both accept ?from=&to= (YYYY-MM-DD, inclusive) and ?limit=.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
	"github.com/jochenheirman09/broos-app-sub001/internal/utils"
)

const (
	defaultInsightLimit = 30
	maxInsightLimit     = 365
)

// ListInsightsResponse wraps archived insights, newest date first.
type ListInsightsResponse struct {
	Insights []domain.Insight `json:"insights"`
}

// ListClubInsights godoc
// @ID          listClubInsights
// @Summary     List a club's insights
// @Description Responsible users only. scope=team returns the team updates of every team in the club.
// @Tags        Insights
// @Produce     json
//
// @Param       X-User-ID  header  string  true   "Caller profile id"
// @Param       clubId     path    string  true   "Club id"
// @Param       scope      query   string  false  "Insight scope"  Enums(club, team) default(club)
// @Param       from       query   string  false  "First day (YYYY-MM-DD)"
// @Param       to         query   string  false  "Last day (YYYY-MM-DD)"
// @Param       limit      query   int     false  "Max items"  minimum(1) maximum(365) default(30)
//
// @Success     200  {object}  handlers.ListInsightsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid query"
// @Failure     403  {object}  handlers.ErrorResponse  "Not allowed for this club"
// @Router      /clubs/{clubId}/insights [get]
func (h *Handlers) ListClubInsights(c *gin.Context) {
	scope := domain.ScopeClub
	switch strings.TrimSpace(c.Query("scope")) {
	case "", string(domain.ScopeClub):
	case string(domain.ScopeTeam):
		scope = domain.ScopeTeam
	default:
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "scope must be club or team")
		return
	}
	h.listInsights(c, scope, "")
}

// ListTeamInsights godoc
// @ID          listTeamInsights
// @Summary     List a team's insights
// @Description Open to the team's staff and the club's responsible users.
// @Tags        Insights
// @Produce     json
//
// @Param       X-User-ID  header  string  true   "Caller profile id"
// @Param       clubId     path    string  true   "Club id"
// @Param       teamId     path    string  true   "Team id"
// @Param       from       query   string  false  "First day (YYYY-MM-DD)"
// @Param       to         query   string  false  "Last day (YYYY-MM-DD)"
// @Param       limit      query   int     false  "Max items"  minimum(1) maximum(365) default(30)
//
// @Success     200  {object}  handlers.ListInsightsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid query"
// @Failure     403  {object}  handlers.ErrorResponse  "Not allowed for this team"
// @Router      /clubs/{clubId}/teams/{teamId}/insights [get]
func (h *Handlers) ListTeamInsights(c *gin.Context) {
	h.listInsights(c, domain.ScopeTeam, c.Param("teamId"))
}

func (h *Handlers) listInsights(c *gin.Context, scope domain.InsightScope, teamID string) {
	f := repo.InsightFilter{
		Scope:  scope,
		ClubID: c.Param("clubId"),
		TeamID: teamID,
		From:   strings.TrimSpace(c.Query("from")),
		To:     strings.TrimSpace(c.Query("to")),
		Limit:  utils.ClampInt(utils.AtoiDefault(c.Query("limit"), defaultInsightLimit), 1, maxInsightLimit),
	}
	if f.From != "" && f.To != "" && f.From > f.To {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, "from must not be after to")
		return
	}

	items, err := h.insights.ListInsights(c.Request.Context(), callerID(c), f)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidDate):
			fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeProfileNotFound, "no profile for this user")
		case errors.Is(err, services.ErrForbidden):
			fail(c, http.StatusForbidden, ErrCodeForbidden, "not allowed for this club or team")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}
	if items == nil {
		items = []domain.Insight{}
	}
	ok(c, http.StatusOK, ListInsightsResponse{Insights: items})
}
