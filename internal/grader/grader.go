// Package grader scores free-text answers with an AI judge and suggests
// wording improvements for questions.
package grader

import (
	"context"
	"errors"
)

// ErrGradingUnavailable wraps every failure to obtain a usable grade
var ErrGradingUnavailable = errors.New("grading unavailable")

// EssayGrade is the judge's verdict on one essay
type EssayGrade struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// EssayGrader scores an essay written on subject out of 100.
// Implementations make a single attempt and never cache.
type EssayGrader interface {
	Grade(ctx context.Context, subject, essay string) (*EssayGrade, error)
}

// QuestionSuggestion is an improved rewording of a question
type QuestionSuggestion struct {
	ImprovedQuestion string `json:"improved_question"`
	Reasoning        string `json:"reasoning"`
}

type QuestionAdvisor interface {
	Suggest(ctx context.Context, question string) (*QuestionSuggestion, error)
}

// Disabled always fails with ErrGradingUnavailable.
// It stands in when no AI credentials are configured.
type Disabled struct{}

func NewDisabled() Disabled {
	return Disabled{}
}

func (Disabled) Grade(ctx context.Context, subject, essay string) (*EssayGrade, error) {
	return nil, errNotConfigured
}

func (Disabled) Suggest(ctx context.Context, question string) (*QuestionSuggestion, error) {
	return nil, errNotConfigured
}

var errNotConfigured = wrap("AI judge not configured", nil)
