package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	service services.SessionService
}

func NewSessionHandler(service services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== ADMIN ENDPOINTS =====

// CreateSession issues a test link binding a test-taker to a snapshot of a bank
// @Summary Create test session
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body services.CreateSessionRequest true "Test taker and question bank"
// @Success 201 {object} services.SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Test taker or question bank not found"
// @Failure 422 {object} ErrorResponse "Question bank has no questions"
// @Router /admin/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating test session",
		"test_taker_id", req.TestTakerID,
		"question_bank_id", req.QuestionBankID)

	session, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the full session including answer keys
// @Summary Get test session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.TestSession
// @Failure 404 {object} ErrorResponse
// @Router /admin/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ===== TAKER ENDPOINTS =====

// GetTestView returns the test as shown to the test-taker and marks it In Progress
// @Summary Open test
// @Tags test
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.TestView
// @Failure 404 {object} ErrorResponse
// @Router /test/{id} [get]
func (h *SessionHandler) GetTestView(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Opening test", "session_id", id)

	view, err := h.service.GetTestView(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitTest scores the answers and completes the session
// @Summary Submit test
// @Tags test
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body services.SubmitSessionRequest true "Answers"
// @Success 200 {object} services.ResultResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already submitted"
// @Router /test/{id}/submit [post]
func (h *SessionHandler) SubmitTest(c *gin.Context) {
	id := c.Param("id")

	var req services.SubmitSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Submitting test", "session_id", id, "answers_count", len(req.Answers))

	result, err := h.service.Submit(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the score and AI feedback of a completed session
// @Summary Get result
// @Tags results
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.ResultResponse
// @Failure 404 {object} ErrorResponse "Result not found"
// @Router /results/{id} [get]
func (h *SessionHandler) GetResult(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
