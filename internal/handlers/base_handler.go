package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

type ErrorResponse = models.ErrorResponse
type SuccessResponse = models.SuccessResponse

// BaseHandler carries the logging helpers shared by every handler
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	return utils.FromContext(c.Request.Context(), h.logger)
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.FullPath())
	h.requestLogger(c).Info(msg, args...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	args = append(args, "error", err, "path", c.FullPath())
	h.requestLogger(c).Error(msg, args...)
}

func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
		Path:      c.Request.URL.Path,
	}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(status, resp)
}

// handleServiceError maps service errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:            "validation_failed",
			Message:          "Validation failed",
			Timestamp:        time.Now().UTC(),
			Path:             c.Request.URL.Path,
			ValidationErrors: toValidationErrorResponses(verrs),
		})
	case errors.Is(err, services.ErrTestTakerNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Test taker not found", nil)
	case errors.Is(err, services.ErrSessionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Test session not found", nil)
	case errors.Is(err, services.ErrQuestionBankNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question bank not found", nil)
	case errors.Is(err, services.ErrQuestionNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Question not found", nil)
	case errors.Is(err, services.ErrEmptyBank):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Selected question bank has no questions.", nil)
	case errors.Is(err, services.ErrSessionAlreadyCompleted):
		h.RespondWithError(c, http.StatusConflict, "Test session already completed", nil)
	case errors.Is(err, services.ErrSessionNotCompleted):
		h.RespondWithError(c, http.StatusNotFound, "Result not found", nil)
	case errors.Is(err, grader.ErrGradingUnavailable):
		h.LogError(c, err, "AI assistant unavailable")
		h.RespondWithError(c, http.StatusServiceUnavailable, "AI assistant is unavailable", nil)
	default:
		h.LogError(c, err, "Unexpected service error")
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func toValidationErrorResponses(errs validator.ValidationErrors) []models.ValidationErrorResponse {
	out := make([]models.ValidationErrorResponse, 0, len(errs))
	for _, e := range errs {
		value := ""
		if e.Value != nil {
			value = fmt.Sprint(e.Value)
		}
		out = append(out, models.ValidationErrorResponse{
			Field:   e.Field,
			Message: e.Message,
			Value:   value,
			Code:    e.Rule,
		})
	}
	return out
}
