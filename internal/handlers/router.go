package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/test-session-service/internal/config"
	"github.com/SAP-F-2025/test-session-service/internal/services"
	"github.com/SAP-F-2025/test-session-service/internal/utils"
)

type HandlerManager struct {
	questionBankHandler *QuestionBankHandler
	questionHandler     *QuestionHandler
	testTakerHandler    *TestTakerHandler
	sessionHandler      *SessionHandler
	exportHandler       *ExportHandler
	authMiddleware      *AdminAuthMiddleware
	serviceManager      services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	adminPassword string,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	return &HandlerManager{
		questionBankHandler: NewQuestionBankHandler(serviceManager.QuestionBank(), serviceManager.Question(), logger),
		questionHandler:     NewQuestionHandler(serviceManager.Question(), logger),
		testTakerHandler:    NewTestTakerHandler(serviceManager.TestTaker(), logger),
		sessionHandler:      NewSessionHandler(serviceManager.Session(), logger),
		exportHandler:       NewExportHandler(serviceManager.Export(), logger),
		authMiddleware:      NewAdminAuthMiddleware(adminPassword, casdoorConfig, logger),
		serviceManager:      serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(hm.authMiddleware.RequireAdmin())
	{
		questionBanks := admin.Group("/question-banks")
		{
			questionBanks.POST("", hm.questionBankHandler.CreateQuestionBank)
			questionBanks.GET("", hm.questionBankHandler.ListQuestionBanks)
			questionBanks.GET("/:id", hm.questionBankHandler.GetQuestionBank)
			questionBanks.DELETE("/:id", hm.questionBankHandler.DeleteQuestionBank)
			questionBanks.GET("/:id/questions", hm.questionBankHandler.GetBankQuestions)
		}

		questions := admin.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.POST("/suggest", hm.questionHandler.SuggestQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
		}

		testTakers := admin.Group("/test-takers")
		{
			testTakers.POST("", hm.testTakerHandler.CreateTestTaker)
			testTakers.GET("", hm.testTakerHandler.ListTestTakers)
			testTakers.GET("/:id", hm.testTakerHandler.GetTestTaker)
		}

		sessions := admin.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.CreateSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)
		}

		admin.GET("/results/export", hm.exportHandler.ExportResults)
	}

	// Taker routes; the session id in the link is the capability
	test := v1.Group("/test")
	{
		test.GET("/:id", hm.sessionHandler.GetTestView)
		test.POST("/:id/submit", hm.sessionHandler.SubmitTest)
	}
	v1.GET("/results/:id", hm.sessionHandler.GetResult)

	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"service":   "test-session-service",
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "test-session-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
