package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/cache"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

// QuestionPostgreSQL implements QuestionRepository with a read-through cache
// for per-bank question lists
type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db, cacheManager: cacheManager}
}

// Create creates a new question
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := getDB(q.db, tx)
	if err := db.WithContext(ctx).Create(question).Error; err != nil {
		return handleDBError(err, "create question")
	}

	cache.InvalidateBankCache(ctx, q.cacheManager, question.QuestionBankID)
	return nil
}

// GetByID retrieves a question by ID
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error) {
	db := getDB(q.db, tx)
	var question models.Question
	if err := db.WithContext(ctx).Where("id = ?", id).First(&question).Error; err != nil {
		return nil, handleDBError(err, "get question by id")
	}
	return &question, nil
}

// GetByBank retrieves the ordered questions of a bank through the bank-question cache
func (q *QuestionPostgreSQL) GetByBank(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error) {
	fetch := func() (interface{}, error) {
		return q.listByBank(ctx, tx, bankID)
	}

	var questions []*models.Question
	if err := q.cacheManager.Question.CacheOrExecute(ctx, cache.BankQuestionsKey(bankID), &questions, cache.QuestionCacheConfig.TTL, fetch); err != nil {
		return nil, err
	}
	return questions, nil
}

// ListForSnapshot reads the bank's questions straight from the database
func (q *QuestionPostgreSQL) ListForSnapshot(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error) {
	return q.listByBank(ctx, tx, bankID)
}

func (q *QuestionPostgreSQL) listByBank(ctx context.Context, tx *gorm.DB, bankID string) ([]*models.Question, error) {
	var questions []*models.Question
	if err := getDB(q.db, tx).WithContext(ctx).
		Where("question_bank_id = ?", bankID).
		Order(`"order" ASC, created_at ASC`).
		Find(&questions).Error; err != nil {
		return nil, handleDBError(err, "get questions by bank")
	}
	return questions, nil
}

// NextOrder returns the position for a question appended to the bank
func (q *QuestionPostgreSQL) NextOrder(ctx context.Context, tx *gorm.DB, bankID string) (int, error) {
	db := getDB(q.db, tx)
	var maxOrder *int
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("question_bank_id = ?", bankID).
		Select(`MAX("order")`).
		Scan(&maxOrder).Error; err != nil {
		return 0, handleDBError(err, "get next question order")
	}
	if maxOrder == nil {
		return 0, nil
	}
	return *maxOrder + 1, nil
}

// Delete removes a question from its bank. Sessions keep their own copy.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := getDB(q.db, tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, question_bank_id").Where("id = ?", id).First(&question).Error; err != nil {
		return handleDBError(err, "get question for delete")
	}

	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&models.Question{}).Error; err != nil {
		return handleDBError(err, "delete question")
	}

	cache.InvalidateBankCache(ctx, q.cacheManager, question.QuestionBankID)
	return nil
}
