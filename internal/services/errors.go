package services

import "errors"

var (
	ErrTestTakerNotFound    = errors.New("test taker not found")
	ErrSessionNotFound      = errors.New("test session not found")
	ErrQuestionBankNotFound = errors.New("question bank not found")
	ErrQuestionNotFound     = errors.New("question not found")

	// ErrEmptyBank aborts session creation before anything is written
	ErrEmptyBank = errors.New("selected question bank has no questions")

	// ErrSessionAlreadyCompleted is returned when a session is submitted or started after completion
	ErrSessionAlreadyCompleted = errors.New("test session already completed")

	// ErrSessionNotCompleted is returned when a result is requested before submission
	ErrSessionNotCompleted = errors.New("test session not completed")
)
