package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type TestTakerHandler struct {
	BaseHandler
	service services.TestTakerService
}

func NewTestTakerHandler(service services.TestTakerService, logger utils.Logger) *TestTakerHandler {
	return &TestTakerHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateTestTaker registers a test-taker
// @Summary Create test taker
// @Tags test-takers
// @Accept json
// @Produce json
// @Param request body services.CreateTestTakerRequest true "Test taker data"
// @Success 201 {object} services.TestTakerResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/test-takers [post]
func (h *TestTakerHandler) CreateTestTaker(c *gin.Context) {
	var req services.CreateTestTakerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Creating test taker")

	taker, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, taker)
}

// ListTestTakers lists test-takers with the score of their current session
// @Summary List test takers
// @Tags test-takers
// @Produce json
// @Param status query string false "Not Started or Completed"
// @Param q query string false "Search by name or contact"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20)"
// @Param sort_by query string false "name or created_at"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} services.TestTakerListResponse
// @Router /admin/test-takers [get]
func (h *TestTakerHandler) ListTestTakers(c *gin.Context) {
	filters, page, size := h.parseTestTakerFilters(c)

	takers, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPaginatedResponse(takers, total, page, size, len(takers)))
}

// GetTestTaker retrieves a test-taker with its score and test link
// @Summary Get test taker
// @Tags test-takers
// @Produce json
// @Param id path string true "Test taker ID"
// @Success 200 {object} services.TestTakerResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/test-takers/{id} [get]
func (h *TestTakerHandler) GetTestTaker(c *gin.Context) {
	taker, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, taker)
}

// ===== HELPER METHODS =====

func (h *TestTakerHandler) parseTestTakerFilters(c *gin.Context) (repositories.TestTakerFilters, int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filters := repositories.TestTakerFilters{
		Query:     strings.TrimSpace(c.Query("q")),
		Limit:     size,
		Offset:    (page - 1) * size,
		SortBy:    c.DefaultQuery("sort_by", "created_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if status := models.TestStatus(c.Query("status")); status == models.TestNotStarted || status == models.TestCompleted {
		filters.Status = &status
	}

	return filters, page, size
}
