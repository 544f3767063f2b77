package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/test-session-service/internal/grader"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
	"github.com/SAP-F-2025/test-session-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	advisor   grader.QuestionAdvisor
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, advisor grader.QuestionAdvisor) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		advisor:   advisor,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	s.logger.Info("Creating question",
		"question_bank_id", req.QuestionBankID,
		"type", req.Type)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if _, err := s.repo.QuestionBank().GetByID(ctx, nil, req.QuestionBankID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}

	order, err := s.repo.Question().NextOrder(ctx, nil, req.QuestionBankID)
	if err != nil {
		return nil, fmt.Errorf("failed to get question order: %w", err)
	}

	question := &models.Question{
		QuestionBankID: req.QuestionBankID,
		Text:           strings.TrimSpace(req.Text),
		Type:           req.Type,
		TimeLimit:      req.TimeLimit,
		Order:          order,
	}
	if req.Type == models.MultipleChoice {
		question.Options = req.CleanOptions()
		question.Answer = req.Answer
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created successfully", "question_id", question.ID)
	return question, nil
}

func (s *questionService) ListByBank(ctx context.Context, bankID string) ([]*models.Question, error) {
	if _, err := s.repo.QuestionBank().GetByID(ctx, nil, bankID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}

	questions, err := s.repo.Question().GetByBank(ctx, nil, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, nil
}

// Delete removes a question from its bank. Sessions already issued keep their copy.
func (s *questionService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted successfully", "question_id", id)
	return nil
}

func (s *questionService) Suggest(ctx context.Context, req *SuggestQuestionRequest) (*grader.QuestionSuggestion, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	suggestion, err := s.advisor.Suggest(ctx, req.Question)
	if err != nil {
		s.logger.Warn("Question suggestion failed", "error", err)
		return nil, err
	}
	return suggestion, nil
}
