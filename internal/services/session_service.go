package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/test-session-service/internal/events"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	scorer    *SessionScorer
	publisher events.EventPublisher
	publicURL string
	now       func() time.Time
}

func NewSessionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, scorer *SessionScorer, publisher events.EventPublisher, publicURL string) SessionService {
	return &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		scorer:    scorer,
		publisher: publisher,
		publicURL: publicURL,
		now:       time.Now,
	}
}

// ===== LIFECYCLE OPERATIONS =====

func (s *sessionService) Create(ctx context.Context, req *CreateSessionRequest) (*SessionResponse, error) {
	s.logger.Info("Creating test session",
		"test_taker_id", req.TestTakerID,
		"question_bank_id", req.QuestionBankID)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var session *models.TestSession
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if _, err := tx.TestTaker().GetByID(ctx, nil, req.TestTakerID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrTestTakerNotFound
			}
			return fmt.Errorf("failed to get test taker: %w", err)
		}

		if _, err := tx.QuestionBank().GetByID(ctx, nil, req.QuestionBankID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrQuestionBankNotFound
			}
			return fmt.Errorf("failed to get question bank: %w", err)
		}

		questions, err := tx.Question().ListForSnapshot(ctx, nil, req.QuestionBankID)
		if err != nil {
			return fmt.Errorf("failed to get bank questions: %w", err)
		}
		if len(questions) == 0 {
			return ErrEmptyBank
		}

		snapshot := make([]models.Question, 0, len(questions))
		for _, q := range questions {
			snapshot = append(snapshot, q.Snapshot())
		}

		session = &models.TestSession{
			TestTakerID:    req.TestTakerID,
			QuestionBankID: req.QuestionBankID,
			Status:         models.SessionNotStarted,
			Questions:      snapshot,
			Answers:        []models.UserAnswer{},
		}
		if err := tx.TestSession().Create(ctx, nil, session); err != nil {
			return fmt.Errorf("failed to create test session: %w", err)
		}

		if err := tx.TestTaker().AssignSession(ctx, nil, req.TestTakerID, session.ID); err != nil {
			return fmt.Errorf("failed to assign session to test taker: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	link := s.testLink(session.ID)
	s.logger.Info("Test session created",
		"session_id", session.ID,
		"test_taker_id", session.TestTakerID,
		"question_count", len(session.Questions))

	s.publish(ctx, events.NewEvent(events.SessionCreated, events.SessionCreatedEvent{
		SessionID:      session.ID,
		TestTakerID:    session.TestTakerID,
		QuestionBankID: session.QuestionBankID,
		QuestionCount:  len(session.Questions),
		TestLink:       link,
	}))

	return &SessionResponse{TestSession: session, TestLink: link}, nil
}

func (s *sessionService) Get(ctx context.Context, id string) (*models.TestSession, error) {
	session, err := s.repo.TestSession().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}
	return session, nil
}

func (s *sessionService) Start(ctx context.Context, id string) error {
	err := s.repo.TestSession().MarkInProgress(ctx, nil, id, s.now())
	switch {
	case err == nil:
		return nil
	case repositories.IsNotFoundError(err):
		return ErrSessionNotFound
	case errors.Is(err, repositories.ErrStatusConflict):
		return ErrSessionAlreadyCompleted
	default:
		return fmt.Errorf("failed to start test session: %w", err)
	}
}

func (s *sessionService) Complete(ctx context.Context, id string, answers []models.UserAnswer, score int, aiFeedback map[string]string) (*models.TestSession, error) {
	if aiFeedback == nil {
		aiFeedback = map[string]string{}
	}
	if answers == nil {
		answers = []models.UserAnswer{}
	}
	completedAt := s.now()

	var takerID string
	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		session, err := tx.TestSession().GetByID(ctx, nil, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSessionNotFound
			}
			return fmt.Errorf("failed to get test session: %w", err)
		}
		takerID = session.TestTakerID

		err = tx.TestSession().Complete(ctx, nil, id, repositories.SessionCompletion{
			Answers:     answers,
			Score:       score,
			AIFeedback:  aiFeedback,
			CompletedAt: completedAt,
		})
		switch {
		case err == nil:
		case repositories.IsNotFoundError(err):
			return ErrSessionNotFound
		case errors.Is(err, repositories.ErrStatusConflict):
			return ErrSessionAlreadyCompleted
		default:
			return fmt.Errorf("failed to complete test session: %w", err)
		}

		if err := tx.TestTaker().UpdateStatus(ctx, nil, takerID, models.TestCompleted); err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to update test taker status: %w", err)
			}
			s.logger.Warn("Completed session has no test taker", "session_id", id, "test_taker_id", takerID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test session completed",
		"session_id", id,
		"test_taker_id", takerID,
		"score", score)

	s.publish(ctx, events.NewEvent(events.SessionCompleted, events.SessionCompletedEvent{
		SessionID:      id,
		TestTakerID:    takerID,
		Score:          score,
		Passed:         score >= PassingScore,
		TotalQuestions: len(session.Questions),
		CompletedAt:    completedAt,
	}))

	return session, nil
}

// ===== TAKER-FACING OPERATIONS =====

// GetTestView returns the questions without answer keys and marks an open session In Progress
func (s *sessionService) GetTestView(ctx context.Context, id string) (*TestView, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status := session.Status
	if status == models.SessionNotStarted {
		switch err := s.Start(ctx, id); {
		case err == nil:
			status = models.SessionInProgress
		case errors.Is(err, ErrSessionAlreadyCompleted):
			// Submitted between the read and the start
			status = models.SessionCompleted
		default:
			return nil, err
		}
	}

	view := &TestView{
		SessionID: session.ID,
		Status:    status,
		Questions: make([]TestViewQuestion, 0, len(session.Questions)),
	}

	if taker, err := s.repo.TestTaker().GetByID(ctx, nil, session.TestTakerID); err == nil {
		view.TestTakerName = taker.Name
	} else {
		s.logger.Warn("Failed to load test taker for test view", "session_id", id, "error", err)
	}

	for _, q := range session.Questions {
		view.Questions = append(view.Questions, TestViewQuestion{
			ID:        q.ID,
			Text:      q.Text,
			Type:      q.Type,
			Options:   q.Options,
			TimeLimit: q.TimeLimit,
		})
	}

	return view, nil
}

func (s *sessionService) Submit(ctx context.Context, id string, req *SubmitSessionRequest) (*ResultResponse, error) {
	s.logger.Info("Submitting test session",
		"session_id", id,
		"answers_count", len(req.Answers))

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted() {
		return nil, ErrSessionAlreadyCompleted
	}

	// A taker who disconnects mid-grading still gets a stored result
	ctx = context.WithoutCancel(ctx)

	result := s.scorer.Score(ctx, session, req.Answers)

	completed, err := s.Complete(ctx, id, result.Answers, result.Score, result.AIFeedback)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Test session scored",
		"session_id", id,
		"score", result.Score,
		"correct", result.CorrectCount,
		"total", result.TotalQuestions)

	return buildResultResponse(completed), nil
}

func (s *sessionService) GetResult(ctx context.Context, id string) (*ResultResponse, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !session.IsCompleted() {
		return nil, ErrSessionNotCompleted
	}
	return buildResultResponse(session), nil
}

// ===== HELPERS =====

func (s *sessionService) testLink(sessionID string) string {
	return fmt.Sprintf("%s/test/%s", s.publicURL, sessionID)
}

// publish never fails the operation that produced the event
func (s *sessionService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

// buildResultResponse lists feedback for answered open-ended questions in snapshot order
func buildResultResponse(session *models.TestSession) *ResultResponse {
	score := 0
	if session.Score != nil {
		score = *session.Score
	}

	answers := make(map[string]string, len(session.Answers))
	for _, a := range session.Answers {
		answers[a.QuestionID] = a.Answer
	}

	feedback := session.Feedback()
	items := make([]QuestionFeedback, 0)
	for _, q := range session.Questions {
		if q.Type != models.OpenEnded {
			continue
		}
		answer, answered := answers[q.ID]
		text, ok := feedback[q.ID]
		if !answered || !ok {
			continue
		}
		items = append(items, QuestionFeedback{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     answer,
			Feedback:   text,
		})
	}

	return &ResultResponse{
		SessionID:      session.ID,
		TestTakerID:    session.TestTakerID,
		Score:          score,
		PassingScore:   PassingScore,
		Passed:         score >= PassingScore,
		TotalQuestions: len(session.Questions),
		CompletedAt:    session.CompletedAt,
		Feedback:       items,
	}
}
