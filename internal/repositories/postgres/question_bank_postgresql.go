package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/cache"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

type questionBankRepository struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionBankRepository(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionBankRepository {
	return &questionBankRepository{db: db, cacheManager: cacheManager}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *questionBankRepository) Create(ctx context.Context, tx *gorm.DB, bank *models.QuestionBank) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Omit("Questions").Create(bank).Error; err != nil {
		return handleDBError(err, "create question bank")
	}

	cache.SafeDelete(ctx, r.cacheManager.Bank, cache.BankListKey)
	return nil
}

func (r *questionBankRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.QuestionBank, error) {
	db := getDB(r.db, tx)
	var bank models.QuestionBank

	if err := db.WithContext(ctx).Where("id = ?", id).First(&bank).Error; err != nil {
		return nil, handleDBError(err, "get question bank by id")
	}

	var count int64
	if err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("question_bank_id = ?", id).
		Count(&count).Error; err != nil {
		return nil, handleDBError(err, "count bank questions")
	}
	bank.QuestionCount = int(count)

	return &bank, nil
}

func (r *questionBankRepository) List(ctx context.Context, tx *gorm.DB) ([]*models.QuestionBank, error) {
	db := getDB(r.db, tx)
	var banks []*models.QuestionBank

	err := r.cacheManager.Bank.CacheOrExecute(ctx, cache.BankListKey, &banks, cache.BankCacheConfig.TTL, func() (interface{}, error) {
		var dbBanks []*models.QuestionBank
		if err := db.WithContext(ctx).Order("created_at DESC").Find(&dbBanks).Error; err != nil {
			return nil, handleDBError(err, "list question banks")
		}

		type bankCount struct {
			QuestionBankID string
			Count          int
		}
		var counts []bankCount
		if err := db.WithContext(ctx).
			Model(&models.Question{}).
			Select("question_bank_id, COUNT(*) AS count").
			Group("question_bank_id").
			Scan(&counts).Error; err != nil {
			return nil, handleDBError(err, "count questions per bank")
		}

		byBank := make(map[string]int, len(counts))
		for _, c := range counts {
			byBank[c.QuestionBankID] = c.Count
		}
		for _, bank := range dbBanks {
			bank.QuestionCount = byBank[bank.ID]
		}
		return dbBanks, nil
	})
	if err != nil {
		return nil, err
	}

	return banks, nil
}

func (r *questionBankRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := getDB(r.db, tx)

	// Questions go first so the delete also works without the FK cascade
	err := db.WithContext(ctx).Transaction(func(inner *gorm.DB) error {
		if err := inner.Where("question_bank_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return handleDBError(err, "delete bank questions")
		}

		result := inner.Where("id = ?", id).Delete(&models.QuestionBank{})
		if result.Error != nil {
			return handleDBError(result.Error, "delete question bank")
		}
		if result.RowsAffected == 0 {
			return handleDBError(gorm.ErrRecordNotFound, "delete question bank")
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateBankCache(ctx, r.cacheManager, id)
	return nil
}
