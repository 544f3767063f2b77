package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateQuestionBankRequest = validator.QuestionBankCreateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type SuggestQuestionRequest = validator.QuestionSuggestRequest
type CreateTestTakerRequest = validator.TestTakerCreateRequest
type CreateSessionRequest = validator.SessionCreateRequest
type SubmitSessionRequest = validator.SessionSubmitRequest

type QuestionBankResponse struct {
	*models.QuestionBank
}

type TestTakerResponse struct {
	*models.TestTaker
	Score         *int                  `json:"score"`
	SessionStatus *models.SessionStatus `json:"session_status,omitempty"`
	TestLink      *string               `json:"test_link,omitempty"`
}

type TestTakerListResponse = models.PaginatedResponse

// SessionResponse is what an admin gets back after issuing a test link
type SessionResponse struct {
	*models.TestSession
	TestLink string `json:"test_link"`
}

// TestViewQuestion is a question as shown to a test-taker, without the answer key
type TestViewQuestion struct {
	ID        string              `json:"id"`
	Text      string              `json:"text"`
	Type      models.QuestionType `json:"type"`
	Options   []string            `json:"options,omitempty"`
	TimeLimit *int                `json:"time_limit,omitempty"`
}

type TestView struct {
	SessionID     string               `json:"session_id"`
	Status        models.SessionStatus `json:"status"`
	TestTakerName string               `json:"test_taker_name,omitempty"`
	Questions     []TestViewQuestion   `json:"questions"`
}

type QuestionFeedback struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Feedback   string `json:"feedback"`
}

type ResultResponse struct {
	SessionID      string             `json:"session_id"`
	TestTakerID    string             `json:"test_taker_id"`
	Score          int                `json:"score"`
	PassingScore   int                `json:"passing_score"`
	Passed         bool               `json:"passed"`
	TotalQuestions int                `json:"total_questions"`
	CompletedAt    *time.Time         `json:"completed_at"`
	Feedback       []QuestionFeedback `json:"feedback"`
}

// ===== SERVICE INTERFACES =====

type QuestionBankService interface {
	Create(ctx context.Context, req *CreateQuestionBankRequest) (*QuestionBankResponse, error)
	GetByID(ctx context.Context, id string) (*QuestionBankResponse, error)
	List(ctx context.Context) ([]*QuestionBankResponse, error)
	Delete(ctx context.Context, id string) error
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	ListByBank(ctx context.Context, bankID string) ([]*models.Question, error)
	Delete(ctx context.Context, id string) error
	Suggest(ctx context.Context, req *SuggestQuestionRequest) (*grader.QuestionSuggestion, error)
}

type TestTakerService interface {
	Create(ctx context.Context, req *CreateTestTakerRequest) (*TestTakerResponse, error)
	GetByID(ctx context.Context, id string) (*TestTakerResponse, error)
	List(ctx context.Context, filters repositories.TestTakerFilters) ([]*TestTakerResponse, int64, error)
}

// SessionService owns the session lifecycle:
// Not Started -> In Progress -> Completed, or Not Started -> Completed.
type SessionService interface {
	Create(ctx context.Context, req *CreateSessionRequest) (*SessionResponse, error)
	Get(ctx context.Context, id string) (*models.TestSession, error)
	Start(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, answers []models.UserAnswer, score int, aiFeedback map[string]string) (*models.TestSession, error)

	// Taker-facing operations
	GetTestView(ctx context.Context, id string) (*TestView, error)
	Submit(ctx context.Context, id string, req *SubmitSessionRequest) (*ResultResponse, error)
	GetResult(ctx context.Context, id string) (*ResultResponse, error)
}

type ExportService interface {
	// ExportResults renders every test-taker and its score as an xlsx workbook
	ExportResults(ctx context.Context) ([]byte, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	QuestionBank() QuestionBankService
	Question() QuestionService
	TestTaker() TestTakerService
	Session() SessionService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
