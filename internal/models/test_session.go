package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionNotStarted SessionStatus = "Not Started"
	SessionInProgress SessionStatus = "In Progress"
	SessionCompleted  SessionStatus = "Completed"
)

// UserAnswer is one submitted answer, keyed by question id
type UserAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

type TestSession struct {
	ID             string        `json:"id" gorm:"primaryKey;size:36"`
	TestTakerID    string        `json:"test_taker_id" gorm:"not null;index;size:36"`
	QuestionBankID string        `json:"question_bank_id" gorm:"not null;size:36"`
	Status         SessionStatus `json:"status" gorm:"not null;size:20;index"`

	// Questions is a copy of the bank taken at creation; it never follows the bank
	Questions datatypes.JSONSlice[Question]   `json:"questions" gorm:"type:jsonb;not null"`
	Answers   datatypes.JSONSlice[UserAnswer] `json:"answers" gorm:"type:jsonb"`

	Score      *int                                 `json:"score"`
	AIFeedback datatypes.JSONType[map[string]string] `json:"ai_feedback" gorm:"type:jsonb"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (s *TestSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Status == "" {
		s.Status = SessionNotStarted
	}
	return nil
}

func (s *TestSession) IsCompleted() bool {
	return s.Status == SessionCompleted
}

// Feedback returns the AI feedback map, never nil
func (s *TestSession) Feedback() map[string]string {
	if m := s.AIFeedback.Data(); m != nil {
		return m
	}
	return map[string]string{}
}
