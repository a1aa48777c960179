// Turn HTTP handlers.
//
// This file exposes the chat endpoints of a player:
//   - POST /chat/turns                   (process one check-in message)
//   - GET  /chat/days/{date}/messages    (read a day's conversation)
//
// A turn that was committed stores an idempotency record keyed by the
// caller's Idempotency-Key and the turn day. A retry with the same key
// replays the stored assistant reply with `Idempotency-Replayed: true`
// instead of calling the model and writing again.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jochenheirman09/broos-app-sub001/internal/domain"
	"github.com/jochenheirman09/broos-app-sub001/internal/extractor"
	"github.com/jochenheirman09/broos-app-sub001/internal/http/middleware"
	"github.com/jochenheirman09/broos-app-sub001/internal/repo"
	"github.com/jochenheirman09/broos-app-sub001/internal/services"
)

//
// DTOs
//

// PostTurnRequest is the JSON payload of a chat turn.
type PostTurnRequest struct {
	// Message is the player's text. It must not be blank.
	Message string `json:"message" example:"Slecht geslapen, maar de training was leuk."`
	// Metadata is opaque client context (app version, screen).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// TurnResponse is the outcome of a turn. Exactly one of Onboarding,
// Wellness or Fallback is set, matching Kind. Replays only carry Kind and
// Reply.
type TurnResponse struct {
	Kind       services.TurnKind          `json:"kind" example:"wellness"`
	Reply      string                     `json:"reply"`
	Onboarding *services.OnboardingResult `json:"onboarding,omitempty"`
	Wellness   *services.WellnessResult   `json:"wellness,omitempty"`
	Fallback   *services.FallbackResult   `json:"fallback,omitempty"`
	MessageID  string                     `json:"message_id,omitempty"`
	Replayed   bool                       `json:"replayed,omitempty"`
}

// DayMessagesResponse is one day's chat container, oldest first.
type DayMessagesResponse struct {
	Date     string               `json:"date" example:"2026-03-02"`
	Messages []domain.ChatMessage `json:"messages"`
}

func newTurnResponse(res services.TurnResult) TurnResponse {
	out := TurnResponse{Kind: res.Kind(), Reply: res.Reply()}
	switch r := res.(type) {
	case services.OnboardingResult:
		out.Onboarding = &r
		out.MessageID = r.MessageID
	case services.WellnessResult:
		out.Wellness = &r
		out.MessageID = r.MessageID
	case services.FallbackResult:
		out.Fallback = &r
	}
	return out
}

//
// Handlers
//

// PostTurn godoc
// @ID          postTurn
// @Summary     Send a check-in message
// @Description Runs one chat turn: onboarding while the profile is incomplete, otherwise the daily wellness check-in.
// @Description When the language model is unavailable the reply is a fallback and nothing is stored.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  true   "Caller profile id"
// @Param       Idempotency-Key  header  string  false  "Idempotency key for safe retries"
// @Param       body             body    handlers.PostTurnRequest  true  "Turn payload"
//
// @Success     200  {object}  handlers.TurnResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long message"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing X-User-ID"
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Model answered with invalid output"
// @Failure     500  {object}  handlers.ErrorResponse  "Turn could not be saved"
// @Router      /chat/turns [post]
func (h *Handlers) PostTurn(c *gin.Context) {
	ctx := c.Request.Context()
	uid := callerID(c)

	var req PostTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	idemKey, _ := middleware.GetIdempotencyKey(c)
	if idemKey != "" && middleware.IsReplay(c) {
		if h.replayTurn(c, uid, idemKey) {
			return
		}
	}

	res, err := h.turns.Process(ctx, services.TurnRequest{
		UserID:   uid,
		Text:     req.Message,
		Metadata: req.Metadata,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyMessage):
			fail(c, http.StatusBadRequest, ErrCodeMessageEmpty, "message required")
		case errors.Is(err, services.ErrMessageTooLong):
			fail(c, http.StatusBadRequest, ErrCodeMessageTooLong, "message too long")
		case errors.Is(err, services.ErrProfileNotFound):
			fail(c, http.StatusNotFound, ErrCodeProfileNotFound, "no profile for this user")
		case errors.Is(err, extractor.ErrInvalidOutput):
			fail(c, http.StatusBadGateway, ErrCodeInvalidLLMOutput, "could not understand the model answer")
		case errors.Is(err, services.ErrPersistence):
			fail(c, http.StatusInternalServerError, ErrCodePersistenceFailed, "turn could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	out := newTurnResponse(res)
	if idemKey != "" && out.MessageID != "" && h.db != nil {
		// Best effort; a lost record only costs a duplicate turn on retry.
		key := h.turns.Today(uid)
		if _, err := repo.CreateIdempotency(ctx, h.db, key, idemKey, out.MessageID, string(out.Kind), http.StatusOK, h.idemTTL); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not stored")
		}
	}

	ok(c, http.StatusOK, out)
}

// replayTurn writes the stored reply for idemKey. It returns false when the
// record or its message has disappeared since the middleware lookup, in
// which case the turn runs normally.
func (h *Handlers) replayTurn(c *gin.Context, uid, idemKey string) bool {
	if h.db == nil {
		return false
	}
	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, h.db, h.turns.Today(uid), idemKey, h.now().UTC())
	if err != nil {
		return false
	}
	msg, err := repo.GetMessage(ctx, h.db, uid, rec.MessageID)
	if err != nil {
		return false
	}
	c.Header(middleware.HeaderIdempotencyReplayed, "true")
	ok(c, rec.Status, TurnResponse{
		Kind:      services.TurnKind(rec.Kind),
		Reply:     msg.Content,
		MessageID: msg.ID,
		Replayed:  true,
	})
	return true
}

// GetDayMessages godoc
// @ID          getDayMessages
// @Summary     Read one day of conversation
// @Description Returns the caller's messages for the given day, oldest first. Supports ETag revalidation.
// @Tags        Chat
// @Produce     json
//
// @Param       X-User-ID  header  string  true  "Caller profile id"
// @Param       date       path    string  true  "Day (YYYY-MM-DD)"  example(2026-03-02)
//
// @Success     200  {object}  handlers.DayMessagesResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid date"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /chat/days/{date}/messages [get]
func (h *Handlers) GetDayMessages(c *gin.Context) {
	ctx := c.Request.Context()
	uid := callerID(c)
	date := strings.TrimSpace(c.Param("date"))

	key, err := domain.ParseDayKey(uid, date)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
		return
	}

	// Containers are append-only, so (count, max seq) identifies a version.
	if h.db != nil {
		if count, maxSeq, err := repo.DayMessagesStats(ctx, h.db, key); err == nil {
			if notModified(c, fmt.Sprintf(`W/"day:%s:%d:%d"`, key.Date, count, maxSeq)) {
				return
			}
		}
	}

	msgs, err := h.turns.DayMessages(ctx, uid, key.Date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			fail(c, http.StatusBadRequest, ErrCodeInvalidDate, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}
	ok(c, http.StatusOK, DayMessagesResponse{Date: key.Date, Messages: msgs})
}
