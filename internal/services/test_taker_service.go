package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

type testTakerService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publicURL string
}

func NewTestTakerService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publicURL string) TestTakerService {
	return &testTakerService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publicURL: publicURL,
	}
}

func (s *testTakerService) Create(ctx context.Context, req *CreateTestTakerRequest) (*TestTakerResponse, error) {
	s.logger.Info("Creating test taker", "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	taker := &models.TestTaker{
		Name:       strings.TrimSpace(req.Name),
		Contact:    strings.TrimSpace(req.Contact),
		TestStatus: models.TestNotStarted,
	}
	if err := s.repo.TestTaker().Create(ctx, nil, taker); err != nil {
		return nil, fmt.Errorf("failed to create test taker: %w", err)
	}

	s.logger.Info("Test taker created successfully", "test_taker_id", taker.ID)
	return &TestTakerResponse{TestTaker: taker}, nil
}

// GetByID reads the taker together with the score of its current session
func (s *testTakerService) GetByID(ctx context.Context, id string) (*TestTakerResponse, error) {
	taker, err := s.repo.TestTaker().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrTestTakerNotFound
		}
		return nil, fmt.Errorf("failed to get test taker: %w", err)
	}

	resp := &TestTakerResponse{TestTaker: taker}
	if taker.TestSessionID == nil {
		return resp, nil
	}

	session, err := s.repo.TestSession().GetByID(ctx, nil, *taker.TestSessionID)
	switch {
	case err == nil:
		status := session.Status
		resp.Score = session.Score
		resp.SessionStatus = &status
		resp.TestLink = s.testLink(session.ID)
	case repositories.IsNotFoundError(err):
		s.logger.Warn("Test taker points at a missing session",
			"test_taker_id", id,
			"session_id", *taker.TestSessionID)
	default:
		return nil, fmt.Errorf("failed to get test session: %w", err)
	}
	return resp, nil
}

func (s *testTakerService) List(ctx context.Context, filters repositories.TestTakerFilters) ([]*TestTakerResponse, int64, error) {
	rows, total, err := s.repo.TestTaker().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list test takers: %w", err)
	}

	out := make([]*TestTakerResponse, 0, len(rows))
	for _, row := range rows {
		taker := row.TestTaker
		resp := &TestTakerResponse{
			TestTaker:     &taker,
			Score:         row.Score,
			SessionStatus: row.SessionStatus,
		}
		if taker.TestSessionID != nil {
			resp.TestLink = s.testLink(*taker.TestSessionID)
		}
		out = append(out, resp)
	}
	return out, total, nil
}

func (s *testTakerService) testLink(sessionID string) *string {
	link := fmt.Sprintf("%s/test/%s", s.publicURL, sessionID)
	return &link
}
