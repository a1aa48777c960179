package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
)

const maxDeviceTokenLen = 512

// RegisterDeviceRequest registers a push token for the caller.
type RegisterDeviceRequest struct {
	Token string `json:"token" example:"fcm-registration-token"`
}

// RegisterDevice godoc
// @ID          registerDevice
// @Summary     Register a push token
// @Description Stores a Firebase Cloud Messaging token for the caller. Registering the same token twice is a no-op.
// @Tags        Devices
// @Accept      json
//
// @Param       X-User-ID  header  string  true  "Caller profile id"
// @Param       body       body    handlers.RegisterDeviceRequest  true  "Token"
//
// @Success     204  "Registered"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or oversized token"
// @Router      /devices [post]
func (h *Handlers) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" || len(token) > maxDeviceTokenLen {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token required (max 512 bytes)")
		return
	}
	if err := repo.RegisterDeviceToken(c.Request.Context(), h.db, callerID(c), token); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}
