package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
)

type QuestionHandler struct {
	BaseHandler
	service services.QuestionService
}

func NewQuestionHandler(service services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateQuestion adds a question to a bank
// @Summary Create question
// @Tags questions
// @Accept json
// @Produce json
// @Param question body services.CreateQuestionRequest true "Question data"
// @Success 201 {object} models.Question
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req services.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating question", "question_bank_id", req.QuestionBankID, "type", req.Type)

	question, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

// DeleteQuestion removes a question from its bank
// @Summary Delete question
// @Tags questions
// @Param id path string true "Question ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/questions/{id} [delete]
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message:   "Question deleted successfully",
		Timestamp: time.Now().UTC(),
	})
}

// SuggestQuestion asks the AI advisor for a clearer wording
// @Summary Suggest question improvements
// @Tags questions
// @Accept json
// @Produce json
// @Param request body services.SuggestQuestionRequest true "Question text"
// @Success 200 {object} grader.QuestionSuggestion
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "AI unavailable"
// @Router /admin/questions/suggest [post]
func (h *QuestionHandler) SuggestQuestion(c *gin.Context) {
	var req services.SuggestQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	suggestion, err := h.service.Suggest(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, suggestion)
}
