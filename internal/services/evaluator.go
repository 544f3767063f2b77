package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
)

const (
	// EssayPassThreshold is the minimum grader score for an open-ended answer to count as correct
	EssayPassThreshold = 70

	// PassingScore is the session score needed to pass
	PassingScore = 70

	AIUnavailableFeedback = "AI scoring was unavailable for this question."
)

// Evaluation is the verdict for one answered question.
// Feedback is only set for open-ended questions.
type Evaluation struct {
	IsCorrect bool
	Feedback  *string
}

type Evaluator interface {
	Evaluate(ctx context.Context, question models.Question, answer models.UserAnswer) Evaluation
}

// AnswerEvaluator checks multiple-choice answers against the key and sends
// open-ended answers to the essay grader
type AnswerEvaluator struct {
	grader  grader.EssayGrader
	timeout time.Duration
	logger  *slog.Logger
}

func NewAnswerEvaluator(essayGrader grader.EssayGrader, timeout time.Duration, logger *slog.Logger) *AnswerEvaluator {
	return &AnswerEvaluator{
		grader:  essayGrader,
		timeout: timeout,
		logger:  logger,
	}
}

func (e *AnswerEvaluator) Evaluate(ctx context.Context, question models.Question, answer models.UserAnswer) Evaluation {
	switch question.Type {
	case models.MultipleChoice:
		// Exact, case-sensitive comparison
		return Evaluation{IsCorrect: question.Answer != nil && answer.Answer == *question.Answer}

	case models.OpenEnded:
		return e.evaluateEssay(ctx, question, answer)

	default:
		e.logger.Warn("Unknown question type, scoring as incorrect",
			"question_id", question.ID,
			"type", question.Type)
		return Evaluation{}
	}
}

func (e *AnswerEvaluator) evaluateEssay(ctx context.Context, question models.Question, answer models.UserAnswer) Evaluation {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	grade, err := e.grader.Grade(ctx, question.Text, answer.Answer)
	if err != nil {
		e.logger.Warn("Essay grading failed, using fallback",
			"question_id", question.ID,
			"error", err)
		feedback := AIUnavailableFeedback
		return Evaluation{IsCorrect: false, Feedback: &feedback}
	}

	feedback := grade.Feedback
	return Evaluation{
		IsCorrect: grade.Score >= EssayPassThreshold,
		Feedback:  &feedback,
	}
}
