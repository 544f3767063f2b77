package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
)

type QuestionBankHandler struct {
	BaseHandler
	service         services.QuestionBankService
	questionService services.QuestionService
}

func NewQuestionBankHandler(service services.QuestionBankService, questionService services.QuestionService, logger utils.Logger) *QuestionBankHandler {
	return &QuestionBankHandler{
		BaseHandler:     NewBaseHandler(logger),
		service:         service,
		questionService: questionService,
	}
}

// ===== CORE CRUD ENDPOINTS =====

// CreateQuestionBank creates a new question bank
// @Summary Create a new question bank
// @Tags question-banks
// @Accept json
// @Produce json
// @Param request body services.CreateQuestionBankRequest true "Question Bank creation request"
// @Success 201 {object} services.QuestionBankResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/question-banks [post]
func (h *QuestionBankHandler) CreateQuestionBank(c *gin.Context) {
	var req services.CreateQuestionBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating question bank", "name", req.Name)

	response, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListQuestionBanks lists every question bank with its question count
// @Summary List question banks
// @Tags question-banks
// @Produce json
// @Success 200 {array} services.QuestionBankResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/question-banks [get]
func (h *QuestionBankHandler) ListQuestionBanks(c *gin.Context) {
	banks, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, banks)
}

// GetQuestionBank retrieves a question bank by ID
// @Summary Get a question bank by ID
// @Tags question-banks
// @Produce json
// @Param id path string true "Question Bank ID"
// @Success 200 {object} services.QuestionBankResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/question-banks/{id} [get]
func (h *QuestionBankHandler) GetQuestionBank(c *gin.Context) {
	response, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// DeleteQuestionBank deletes a question bank and its questions.
// Sessions already issued from the bank are unaffected.
// @Summary Delete a question bank
// @Tags question-banks
// @Produce json
// @Param id path string true "Question Bank ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/question-banks/{id} [delete]
func (h *QuestionBankHandler) DeleteQuestionBank(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting question bank", "bank_id", id)

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message:   "Question bank deleted successfully",
		Timestamp: time.Now().UTC(),
	})
}

// ===== QUESTION MANAGEMENT =====

// GetBankQuestions lists the questions of a bank in order
// @Summary List questions in a bank
// @Tags question-banks
// @Produce json
// @Param id path string true "Question Bank ID"
// @Success 200 {array} models.Question
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /admin/question-banks/{id}/questions [get]
func (h *QuestionBankHandler) GetBankQuestions(c *gin.Context) {
	questions, err := h.questionService.ListByBank(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}
