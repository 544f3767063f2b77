package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
)

func mcQuestion(id, answer string, options ...string) models.Question {
	return models.Question{ID: id, Text: "Pick one", Type: models.MultipleChoice, Options: options, Answer: strPtr(answer)}
}

func essayQuestion(id, text string) models.Question {
	return models.Question{ID: id, Text: text, Type: models.OpenEnded}
}

func TestAnswerEvaluator_MultipleChoice(t *testing.T) {
	g := newFakeGrader(fixedGrade(100, "unused"))
	e := NewAnswerEvaluator(g, time.Second, discardLogger())
	q := mcQuestion("q1", "Paris", "Paris", "London", "Berlin")

	tests := []struct {
		name   string
		answer string
		want   bool
	}{
		{name: "exact match", answer: "Paris", want: true},
		{name: "lower case", answer: "paris", want: false},
		{name: "upper case", answer: "PARIS", want: false},
		{name: "trailing space", answer: "Paris ", want: false},
		{name: "other option", answer: "Berlin", want: false},
		{name: "empty", answer: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Evaluate(context.Background(), q, models.UserAnswer{QuestionID: "q1", Answer: tt.answer})
			assert.Equal(t, tt.want, got.IsCorrect)
			assert.Nil(t, got.Feedback)
		})
	}

	assert.Zero(t, g.calls.Load(), "multiple-choice answers never reach the grader")
}

func TestAnswerEvaluator_MultipleChoiceWithoutKey(t *testing.T) {
	e := NewAnswerEvaluator(newFakeGrader(fixedGrade(100, "")), time.Second, discardLogger())
	q := models.Question{ID: "q1", Type: models.MultipleChoice, Options: []string{"a", "b"}}

	got := e.Evaluate(context.Background(), q, models.UserAnswer{QuestionID: "q1", Answer: ""})
	assert.False(t, got.IsCorrect)
}

func TestAnswerEvaluator_OpenEnded(t *testing.T) {
	tests := []struct {
		name         string
		grade        gradeFunc
		wantCorrect  bool
		wantFeedback string
	}{
		{name: "at threshold", grade: fixedGrade(70, "Solid."), wantCorrect: true, wantFeedback: "Solid."},
		{name: "just below threshold", grade: fixedGrade(69, "Almost."), wantCorrect: false, wantFeedback: "Almost."},
		{name: "perfect", grade: fixedGrade(100, "Excellent."), wantCorrect: true, wantFeedback: "Excellent."},
		{name: "zero", grade: fixedGrade(0, "Off topic."), wantCorrect: false, wantFeedback: "Off topic."},
		{name: "grader failure", grade: failingGrade(grader.ErrGradingUnavailable), wantCorrect: false, wantFeedback: AIUnavailableFeedback},
		{name: "unexpected error", grade: failingGrade(errors.New("boom")), wantCorrect: false, wantFeedback: AIUnavailableFeedback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newFakeGrader(tt.grade)
			e := NewAnswerEvaluator(g, time.Second, discardLogger())

			got := e.Evaluate(context.Background(), essayQuestion("q2", "Explain relativity"), models.UserAnswer{QuestionID: "q2", Answer: "some essay"})

			assert.Equal(t, tt.wantCorrect, got.IsCorrect)
			require.NotNil(t, got.Feedback)
			assert.Equal(t, tt.wantFeedback, *got.Feedback)
			assert.EqualValues(t, 1, g.calls.Load())
		})
	}
}

func TestAnswerEvaluator_PassesSubjectAndEssay(t *testing.T) {
	var gotSubject, gotEssay string
	g := newFakeGrader(func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
		gotSubject, gotEssay = subject, essay
		return &grader.EssayGrade{Score: 90}, nil
	})
	e := NewAnswerEvaluator(g, time.Second, discardLogger())

	e.Evaluate(context.Background(), essayQuestion("q2", "Explain relativity"), models.UserAnswer{QuestionID: "q2", Answer: "Time dilates."})

	assert.Equal(t, "Explain relativity", gotSubject)
	assert.Equal(t, "Time dilates.", gotEssay)
}

func TestAnswerEvaluator_TimeoutUsesFallback(t *testing.T) {
	g := newFakeGrader(fixedGrade(95, "too late"))
	g.delay = time.Second
	e := NewAnswerEvaluator(g, 20*time.Millisecond, discardLogger())

	start := time.Now()
	got := e.Evaluate(context.Background(), essayQuestion("q2", "Explain"), models.UserAnswer{QuestionID: "q2", Answer: "essay"})

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, got.IsCorrect)
	require.NotNil(t, got.Feedback)
	assert.Equal(t, AIUnavailableFeedback, *got.Feedback)
}

func TestAnswerEvaluator_UnknownType(t *testing.T) {
	e := NewAnswerEvaluator(newFakeGrader(fixedGrade(100, "")), time.Second, discardLogger())
	q := models.Question{ID: "q9", Type: models.QuestionType("true-false")}

	got := e.Evaluate(context.Background(), q, models.UserAnswer{QuestionID: "q9", Answer: "true"})
	assert.False(t, got.IsCorrect)
	assert.Nil(t, got.Feedback)
}
