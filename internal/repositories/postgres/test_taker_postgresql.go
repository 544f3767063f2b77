package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

type testTakerRepository struct {
	db *gorm.DB
}

func NewTestTakerRepository(db *gorm.DB) repositories.TestTakerRepository {
	return &testTakerRepository{db: db}
}

var testTakerSortColumns = map[string]string{
	"created_at": "test_takers.created_at",
	"name":       "test_takers.name",
	"status":     "test_takers.test_status",
}

// ===== BASIC CRUD OPERATIONS =====

func (r *testTakerRepository) Create(ctx context.Context, tx *gorm.DB, taker *models.TestTaker) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(taker).Error; err != nil {
		return handleDBError(err, "create test taker")
	}
	return nil
}

func (r *testTakerRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestTaker, error) {
	db := getDB(r.db, tx)
	var taker models.TestTaker
	if err := db.WithContext(ctx).Where("id = ?", id).First(&taker).Error; err != nil {
		return nil, handleDBError(err, "get test taker by id")
	}
	return &taker, nil
}

// List joins each taker with its current session so the score is read, never stored
func (r *testTakerRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.TestTakerFilters) ([]*repositories.TestTakerRow, int64, error) {
	db := getDB(r.db, tx)
	var rows []*repositories.TestTakerRow
	var total int64

	query := db.WithContext(ctx).Model(&models.TestTaker{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count test takers")
	}

	query = query.
		Select("test_takers.*, ts.score AS score, ts.status AS session_status").
		Joins("LEFT JOIN test_sessions ts ON ts.id = test_takers.test_session_id")
	query = applyPaginationAndSort(query, testTakerSortColumns, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, handleDBError(err, "list test takers")
	}

	return rows, total, nil
}

// ===== SESSION BINDING =====

func (r *testTakerRepository) AssignSession(ctx context.Context, tx *gorm.DB, id, sessionID string) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.TestTaker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"test_session_id": sessionID,
			"test_status":     models.TestNotStarted,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return handleDBError(result.Error, "assign test session")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "assign test session")
	}
	return nil
}

func (r *testTakerRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status models.TestStatus) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).
		Model(&models.TestTaker{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"test_status": status,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update test taker status")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update test taker status")
	}
	return nil
}

func (r *testTakerRepository) applyFilters(query *gorm.DB, filters repositories.TestTakerFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("test_takers.test_status = ?", *filters.Status)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("(test_takers.name ILIKE ? OR test_takers.contact ILIKE ?)", like, like)
	}
	return query
}
