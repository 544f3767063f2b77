package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
)

func newTestScorer(g grader.EssayGrader, concurrency int) *SessionScorer {
	return NewSessionScorer(NewAnswerEvaluator(g, time.Second, discardLogger()), concurrency, discardLogger())
}

func sessionWith(questions ...models.Question) *models.TestSession {
	return &models.TestSession{ID: "s1", Questions: questions}
}

func TestSessionScorer_EmptySession(t *testing.T) {
	scorer := newTestScorer(newFakeGrader(fixedGrade(100, "")), 4)

	tests := []struct {
		name    string
		answers []models.UserAnswer
	}{
		{name: "no answers"},
		{name: "stray answers", answers: []models.UserAnswer{{QuestionID: "q1", Answer: "Paris"}, {QuestionID: "q2", Answer: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Score(context.Background(), sessionWith(), tt.answers)
			assert.Equal(t, 0, result.Score)
			assert.Empty(t, result.AIFeedback)
			assert.Empty(t, result.Answers)
		})
	}
}

func TestSessionScorer_OrderIndependent(t *testing.T) {
	g := newFakeGrader(func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
		if essay == "good" {
			return &grader.EssayGrade{Score: 85, Feedback: "fb-" + subject}, nil
		}
		return &grader.EssayGrade{Score: 40, Feedback: "fb-" + subject}, nil
	})
	scorer := newTestScorer(g, 3)

	session := sessionWith(
		mcQuestion("q1", "Paris", "Paris", "London"),
		essayQuestion("q2", "Relativity"),
		mcQuestion("q3", "4", "3", "4"),
		essayQuestion("q4", "Evolution"),
		essayQuestion("q5", "Gravity"),
	)
	answers := []models.UserAnswer{
		{QuestionID: "q1", Answer: "Paris"},
		{QuestionID: "q2", Answer: "good"},
		{QuestionID: "q3", Answer: "3"},
		{QuestionID: "q4", Answer: "bad"},
		{QuestionID: "q5", Answer: "good"},
	}

	baseline := scorer.Score(context.Background(), session, answers)
	assert.Equal(t, 60, baseline.Score)
	assert.Equal(t, 3, baseline.CorrectCount)
	assert.Len(t, baseline.AIFeedback, 3)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.UserAnswer{}, answers...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		got := scorer.Score(context.Background(), session, shuffled)
		assert.Equal(t, baseline.Score, got.Score)
		assert.Equal(t, baseline.CorrectCount, got.CorrectCount)
		assert.Equal(t, baseline.AIFeedback, got.AIFeedback)
		assert.Equal(t, baseline.Answers, got.Answers)
	}
}

func TestSessionScorer_UnknownQuestionsIgnored(t *testing.T) {
	scorer := newTestScorer(newFakeGrader(fixedGrade(100, "great")), 2)
	session := sessionWith(mcQuestion("q1", "Paris", "Paris", "Rome"), mcQuestion("q2", "4", "4", "5"))

	withoutStray := scorer.Score(context.Background(), session, []models.UserAnswer{{QuestionID: "q1", Answer: "Paris"}})
	withStray := scorer.Score(context.Background(), session, []models.UserAnswer{
		{QuestionID: "q1", Answer: "Paris"},
		{QuestionID: "ghost", Answer: "Paris"},
		{QuestionID: "ghost-2", Answer: "4"},
	})

	assert.Equal(t, 50, withoutStray.Score)
	assert.Equal(t, withoutStray.Score, withStray.Score)
	assert.Equal(t, 2, withStray.TotalQuestions)
	assert.Equal(t, 1, withStray.CorrectCount)
	assert.Equal(t, []models.UserAnswer{{QuestionID: "q1", Answer: "Paris"}}, withStray.Answers)
}

func TestSessionScorer_DuplicateAnswersLastWins(t *testing.T) {
	scorer := newTestScorer(newFakeGrader(fixedGrade(100, "")), 1)
	session := sessionWith(mcQuestion("q1", "Paris", "Paris", "Rome"))

	result := scorer.Score(context.Background(), session, []models.UserAnswer{
		{QuestionID: "q1", Answer: "Paris"},
		{QuestionID: "q1", Answer: "Rome"},
	})
	assert.Equal(t, 0, result.Score)
	assert.Equal(t, []models.UserAnswer{{QuestionID: "q1", Answer: "Rome"}}, result.Answers)
}

func TestSessionScorer_Rounding(t *testing.T) {
	scorer := newTestScorer(newFakeGrader(fixedGrade(0, "")), 2)
	session := sessionWith(
		mcQuestion("q1", "a", "a", "b"),
		mcQuestion("q2", "a", "a", "b"),
		mcQuestion("q3", "a", "a", "b"),
	)

	tests := []struct {
		correct int
		want    int
	}{
		{correct: 0, want: 0},
		{correct: 1, want: 33},
		{correct: 2, want: 67},
		{correct: 3, want: 100},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d of 3", tt.correct), func(t *testing.T) {
			var answers []models.UserAnswer
			for i, q := range session.Questions {
				answer := "b"
				if i < tt.correct {
					answer = "a"
				}
				answers = append(answers, models.UserAnswer{QuestionID: q.ID, Answer: answer})
			}
			assert.Equal(t, tt.want, scorer.Score(context.Background(), session, answers).Score)
		})
	}
}

func TestSessionScorer_SkippedQuestionsCountAgainst(t *testing.T) {
	scorer := newTestScorer(newFakeGrader(fixedGrade(90, "nice")), 2)
	session := sessionWith(mcQuestion("q1", "Paris", "Paris", "Rome"), essayQuestion("q2", "Relativity"))

	result := scorer.Score(context.Background(), session, []models.UserAnswer{{QuestionID: "q1", Answer: "Paris"}})
	assert.Equal(t, 50, result.Score)
	assert.NotContains(t, result.AIFeedback, "q2")
}

func TestSessionScorer_IsolatesGradingFailures(t *testing.T) {
	g := newFakeGrader(func(ctx context.Context, subject, essay string) (*grader.EssayGrade, error) {
		if subject == "broken" {
			return nil, grader.ErrGradingUnavailable
		}
		return &grader.EssayGrade{Score: 75, Feedback: "Good."}, nil
	})
	scorer := newTestScorer(g, 4)
	session := sessionWith(essayQuestion("q1", "broken"), essayQuestion("q2", "fine"))

	result := scorer.Score(context.Background(), session, []models.UserAnswer{
		{QuestionID: "q1", Answer: "essay"},
		{QuestionID: "q2", Answer: "essay"},
	})

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, AIUnavailableFeedback, result.AIFeedback["q1"])
	assert.Equal(t, "Good.", result.AIFeedback["q2"])
}

func TestSessionScorer_BoundedConcurrency(t *testing.T) {
	g := newFakeGrader(fixedGrade(80, "ok"))
	g.delay = 20 * time.Millisecond
	scorer := newTestScorer(g, 2)

	var questions []models.Question
	var answers []models.UserAnswer
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("q%d", i)
		questions = append(questions, essayQuestion(id, "topic "+id))
		answers = append(answers, models.UserAnswer{QuestionID: id, Answer: "essay"})
	}

	result := scorer.Score(context.Background(), sessionWith(questions...), answers)
	require.Equal(t, 100, result.Score)
	assert.EqualValues(t, 8, g.calls.Load())
	assert.LessOrEqual(t, g.maxInFlight.Load(), int32(2))
}
