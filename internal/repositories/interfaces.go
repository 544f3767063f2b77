package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type TestTakerFilters struct {
	Status    *models.TestStatus `json:"status"`
	Query     string             `json:"query"` // name or contact
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`    // "created_at", "name"
	SortOrder string             `json:"sort_order"` // "asc", "desc"
}

// ===== SHARED RESULT STRUCTS =====

// TestTakerRow is a test-taker joined with the score of its current session
type TestTakerRow struct {
	models.TestTaker
	Score         *int                  `json:"score"`
	SessionStatus *models.SessionStatus `json:"session_status"`
}

// SessionCompletion is the single atomic write that freezes a session
type SessionCompletion struct {
	Answers     []models.UserAnswer
	Score       int
	AIFeedback  map[string]string
	CompletedAt time.Time
}

// ===== REPOSITORY INTERFACES =====

type QuestionBankRepository interface {
	Create(ctx context.Context, tx *gorm.DB, bank *models.QuestionBank) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionBank, error)
	// List returns all banks with QuestionCount populated
	List(ctx context.Context, tx *gorm.DB) ([]*models.QuestionBank, error)
	// Delete removes the bank and its questions
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	// GetByBank returns the bank's questions ordered by order then created_at
	GetByBank(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error)
	// ListForSnapshot is GetByBank without the cache, for copying a bank into a session
	ListForSnapshot(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error)
	NextOrder(ctx context.Context, tx *gorm.DB, bankID string) (int, error)
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type TestTakerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, taker *models.TestTaker) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestTaker, error)
	List(ctx context.Context, tx *gorm.DB, filters TestTakerFilters) ([]*TestTakerRow, int64, error)
	// AssignSession points the taker at a session and resets its status
	AssignSession(ctx context.Context, tx *gorm.DB, id, sessionID string) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.TestStatus) error
}

type TestSessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestSession, error)
	// MarkInProgress moves Not Started to In Progress. It is a no-op for In Progress
	// and returns ErrStatusConflict for Completed.
	MarkInProgress(ctx context.Context, tx *gorm.DB, id string, startedAt time.Time) error
	// Complete freezes the session if it is not already Completed,
	// otherwise it returns ErrStatusConflict.
	Complete(ctx context.Context, tx *gorm.DB, id string, completion SessionCompletion) error
}
