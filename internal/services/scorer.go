package services

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/test-session-service/internal/models"
)

// ScoreResult is the aggregate outcome of scoring one submission
type ScoreResult struct {
	Score          int
	AIFeedback     map[string]string
	CorrectCount   int
	TotalQuestions int

	// Answers is the effective answer set: one entry per known question, last write wins
	Answers []models.UserAnswer
}

// SessionScorer evaluates a submission against a session's question snapshot.
// Evaluations run concurrently up to the configured limit.
type SessionScorer struct {
	evaluator   Evaluator
	concurrency int
	logger      *slog.Logger
}

func NewSessionScorer(evaluator Evaluator, concurrency int, logger *slog.Logger) *SessionScorer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SessionScorer{
		evaluator:   evaluator,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Score never fails. Answers to unknown questions are skipped and
// unanswered questions count as incorrect.
func (s *SessionScorer) Score(ctx context.Context, session *models.TestSession, answers []models.UserAnswer) ScoreResult {
	total := len(session.Questions)
	latest := make(map[string]string, len(answers))
	for _, a := range answers {
		latest[a.QuestionID] = a.Answer
	}

	type job struct {
		question models.Question
		answer   models.UserAnswer
	}

	// Walk the snapshot so the effective answers follow question order
	var jobs []job
	for _, q := range session.Questions {
		if text, ok := latest[q.ID]; ok {
			jobs = append(jobs, job{question: q, answer: models.UserAnswer{QuestionID: q.ID, Answer: text}})
		}
	}
	if skipped := len(latest) - len(jobs); skipped > 0 {
		s.logger.Warn("Ignoring answers for unknown questions",
			"session_id", session.ID,
			"skipped", skipped)
	}

	evaluations := make([]Evaluation, len(jobs))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			evaluations[i] = s.evaluator.Evaluate(ctx, j.question, j.answer)
			return nil
		})
	}
	_ = g.Wait()

	result := ScoreResult{
		AIFeedback:     make(map[string]string),
		TotalQuestions: total,
		Answers:        make([]models.UserAnswer, 0, len(jobs)),
	}
	for i, j := range jobs {
		result.Answers = append(result.Answers, j.answer)
		if evaluations[i].IsCorrect {
			result.CorrectCount++
		}
		if evaluations[i].Feedback != nil {
			result.AIFeedback[j.question.ID] = *evaluations[i].Feedback
		}
	}

	if total > 0 {
		result.Score = int(math.Round(float64(result.CorrectCount) / float64(total) * 100))
	}

	return result
}
