package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/test-session-service/internal/events"
	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// PublicURL is the base of taker-facing test links
	PublicURL string

	// GradeTimeout bounds each essay grading call
	GradeTimeout time.Duration
	// GradeConcurrency caps concurrent grading calls per submission
	GradeConcurrency int
}

// Collaborators are the external systems the services talk to
type Collaborators struct {
	Grader    grader.EssayGrader
	Advisor   grader.QuestionAdvisor
	Publisher events.EventPublisher
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo          repositories.Repository
	logger        *slog.Logger
	validator     *validator.Validator
	collaborators Collaborators
	config        ServiceManagerConfig

	// Service instances
	questionBankService QuestionBankService
	questionService     QuestionService
	testTakerService    TestTakerService
	sessionService      SessionService
	exportService       ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, collaborators Collaborators, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:          repo,
		logger:        logger,
		validator:     validator,
		collaborators: collaborators,
		config:        config,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.collaborators.Grader == nil || sm.collaborators.Advisor == nil {
		return fmt.Errorf("grader and advisor are required")
	}

	evaluator := NewAnswerEvaluator(sm.collaborators.Grader, sm.config.GradeTimeout, sm.logger)
	scorer := NewSessionScorer(evaluator, sm.config.GradeConcurrency, sm.logger)

	sm.questionBankService = NewQuestionBankService(sm.repo, sm.logger, sm.validator)
	sm.questionService = NewQuestionService(sm.repo, sm.logger, sm.validator, sm.collaborators.Advisor)
	sm.testTakerService = NewTestTakerService(sm.repo, sm.logger, sm.validator, sm.config.PublicURL)
	sm.sessionService = NewSessionService(sm.repo, sm.logger, sm.validator, scorer, sm.collaborators.Publisher, sm.config.PublicURL)
	sm.exportService = NewExportService(sm.testTakerService, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully",
		"grade_timeout", sm.config.GradeTimeout,
		"grade_concurrency", sm.config.GradeConcurrency)

	return nil
}

// Service getters
func (sm *serviceManager) QuestionBank() QuestionBankService {
	sm.mustBeInitialized()
	return sm.questionBankService
}

func (sm *serviceManager) Question() QuestionService {
	sm.mustBeInitialized()
	return sm.questionService
}

func (sm *serviceManager) TestTaker() TestTakerService {
	sm.mustBeInitialized()
	return sm.testTakerService
}

func (sm *serviceManager) Session() SessionService {
	sm.mustBeInitialized()
	return sm.sessionService
}

func (sm *serviceManager) Export() ExportService {
	sm.mustBeInitialized()
	return sm.exportService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.collaborators.Publisher != nil {
		if err := sm.collaborators.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
