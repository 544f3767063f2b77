package repositories

import "context"

// Repository aggregates the per-entity repositories
type Repository interface {
	QuestionBank() QuestionBankRepository
	Question() QuestionRepository
	TestTaker() TestTakerRepository
	TestSession() TestSessionRepository

	// WithTransaction runs fn against a repository bound to a single transaction.
	// Returning an error from fn rolls everything back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
