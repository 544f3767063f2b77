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

type questionBankService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionBankService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionBankService {
	return &questionBankService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionBankService) Create(ctx context.Context, req *CreateQuestionBankRequest) (*QuestionBankResponse, error) {
	s.logger.Info("Creating question bank", "name", req.Name)

	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	bank := &models.QuestionBank{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.QuestionBank().Create(ctx, nil, bank); err != nil {
		return nil, fmt.Errorf("failed to create question bank: %w", err)
	}

	s.logger.Info("Question bank created successfully", "bank_id", bank.ID)
	return &QuestionBankResponse{QuestionBank: bank}, nil
}

func (s *questionBankService) GetByID(ctx context.Context, id string) (*QuestionBankResponse, error) {
	bank, err := s.repo.QuestionBank().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionBankNotFound
		}
		return nil, fmt.Errorf("failed to get question bank: %w", err)
	}
	return &QuestionBankResponse{QuestionBank: bank}, nil
}

func (s *questionBankService) List(ctx context.Context) ([]*QuestionBankResponse, error) {
	banks, err := s.repo.QuestionBank().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list question banks: %w", err)
	}

	out := make([]*QuestionBankResponse, 0, len(banks))
	for _, bank := range banks {
		out = append(out, &QuestionBankResponse{QuestionBank: bank})
	}
	return out, nil
}

// Delete removes the bank and its questions. Existing sessions keep their snapshots.
func (s *questionBankService) Delete(ctx context.Context, id string) error {
	s.logger.Info("Deleting question bank", "bank_id", id)

	if err := s.repo.QuestionBank().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionBankNotFound
		}
		return fmt.Errorf("failed to delete question bank: %w", err)
	}

	s.logger.Info("Question bank deleted successfully", "bank_id", id)
	return nil
}
