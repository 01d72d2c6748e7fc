package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iitp-cep/portal-service/internal/services"
	"github.com/iitp-cep/portal-service/internal/utils"
)

// AttemptHandler serves the assessment detail page and the paginated
// attempt flow: question pages, answer saving, finish summary, review.
type AttemptHandler struct {
	BaseHandler
	attemptService services.AttemptService
}

func NewAttemptHandler(attemptService services.AttemptService, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptService: attemptService,
	}
}

// Detail handles GET /api/v1/tests/:kind/:id
func (h *AttemptHandler) Detail(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	detail, err := h.attemptService.Detail(c.Request.Context(), kind, id, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// AttemptPage handles GET /api/v1/tests/:kind/:id/attempt?q=N
//
// q is 1-based; out-of-range values are clamped, not rejected.
func (h *AttemptHandler) AttemptPage(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	q, err := strconv.Atoi(c.DefaultQuery("q", "1"))
	if err != nil {
		q = 1
	}

	page, err := h.attemptService.AttemptPage(c.Request.Context(), c.GetString(ctxSessionID), kind, id, q, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type saveAnswerBody struct {
	QuestionID uint `json:"question_id" binding:"required"`
	services.SaveAnswerRequest
}

// SaveAnswer handles POST /api/v1/tests/:kind/:id/attempt?q=N
func (h *AttemptHandler) SaveAnswer(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var body saveAnswerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	q, err := strconv.Atoi(c.DefaultQuery("q", "1"))
	if err != nil {
		q = 1
	}

	result, err := h.attemptService.SaveAnswer(c.Request.Context(), c.GetString(ctxSessionID), kind, id, body.QuestionID, q, &body.SaveAnswerRequest, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Finish handles GET /api/v1/tests/:kind/:id/finish
func (h *AttemptHandler) Finish(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	summary, err := h.attemptService.FinishSummary(c.Request.Context(), c.GetString(ctxSessionID), c.GetString(ctxUsername), kind, id, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Review handles GET /api/v1/tests/:kind/:id/review
func (h *AttemptHandler) Review(c *gin.Context) {
	kind, ok := h.parseKindParam(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	review, err := h.attemptService.Review(c.Request.Context(), c.GetString(ctxSessionID), kind, id, time.Now())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
