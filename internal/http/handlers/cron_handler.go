package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

// CronResponse is the body returned to the external scheduler.
type CronResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Counts  services.RollupReport `json:"counts"`
}

// RunRollup godoc
// @ID          runRollup
// @Summary     Trigger the insight rollup
// @Description Called by the scheduler. Defaults to today's date in the service timezone.
// @Description Per-team and per-club failures are counted, not returned as errors.
// @Tags        Internal
// @Produce     json
//
// @Param       date  query  string  false  "Run date (YYYY-MM-DD)"
//
// @Success     200  {object}  handlers.CronResponse
// @Failure     400  {object}  handlers.CronResponse  "Invalid date"
// @Failure     403  {object}  handlers.ErrorResponse  "Missing scheduler header"
// @Failure     500  {object}  handlers.CronResponse  "Rollup aborted"
// @Router      /internal/cron/rollup [post]
func (h *Handlers) RunRollup(c *gin.Context) {
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		date = h.now().In(h.loc).Format(domain.DateLayout)
	}
	if _, err := domain.ParseDayKey("", date); err != nil {
		c.JSON(http.StatusBadRequest, CronResponse{Message: err.Error()})
		return
	}

	report, err := h.rollup.Run(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, CronResponse{
			Message: "rollup aborted: " + err.Error(),
			Counts:  report,
		})
		return
	}
	ok(c, http.StatusOK, CronResponse{
		Success: true,
		Message: "rollup completed for " + date,
		Counts:  report,
	})
}
