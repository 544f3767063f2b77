package validator

import (
	"strings"

	"github.com/SAP-F-2025/test-session-service/internal/models"
)

// QuestionBankCreateRequest represents the request structure for creating question banks
type QuestionBankCreateRequest struct {
	Name string `json:"name" validate:"required,not_blank,max=200"`
}

// QuestionCreateRequest represents the request structure for creating questions
type QuestionCreateRequest struct {
	QuestionBankID string              `json:"question_bank_id" validate:"required"`
	Text           string              `json:"text" validate:"required,not_blank,max=2000"`
	Type           models.QuestionType `json:"type" validate:"required,question_type"`
	Options        []string            `json:"options" validate:"omitempty,max=10,dive,max=500"`
	Answer         *string             `json:"answer" validate:"omitempty,max=500"`
	TimeLimit      *int                `json:"time_limit" validate:"omitempty,gt=0,max=3600"`
}

// CleanOptions drops blank options the way the admin form submits them
func (r *QuestionCreateRequest) CleanOptions() []string {
	out := make([]string, 0, len(r.Options))
	for _, opt := range r.Options {
		if strings.TrimSpace(opt) != "" {
			out = append(out, opt)
		}
	}
	return out
}

// QuestionSuggestRequest asks the AI advisor to improve a question's wording
type QuestionSuggestRequest struct {
	Question string `json:"question" validate:"required,not_blank,max=2000"`
}

// TestTakerCreateRequest represents the request structure for registering test-takers
type TestTakerCreateRequest struct {
	Name    string `json:"name" validate:"required,not_blank,max=100"`
	Contact string `json:"contact" validate:"required,not_blank,max=255"`
}

// SessionCreateRequest binds a test-taker to a snapshot of a question bank
type SessionCreateRequest struct {
	TestTakerID    string `json:"test_taker_id" validate:"required"`
	QuestionBankID string `json:"question_bank_id" validate:"required"`
}

// SessionSubmitRequest carries the full answer set for a session
type SessionSubmitRequest struct {
	Answers []models.UserAnswer `json:"answers"`
}
