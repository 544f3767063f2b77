package postgres

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/test-session-service/internal/cache"
	"github.com/SAP-F-2025/test-session-service/internal/models"
	"github.com/SAP-F-2025/test-session-service/internal/repositories"
)

// TestSessionPostgreSQL stores sessions and caches them once they are frozen
type TestSessionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewTestSessionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.TestSessionRepository {
	return &TestSessionPostgreSQL{db: db, cacheManager: cacheManager}
}

var openSessionStatuses = []models.SessionStatus{models.SessionNotStarted, models.SessionInProgress}

func (s *TestSessionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, session *models.TestSession) error {
	db := getDB(s.db, tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return handleDBError(err, "create test session")
	}
	return nil
}

// GetByID serves completed sessions from cache; open sessions always hit the database
func (s *TestSessionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.TestSession, error) {
	var cached models.TestSession
	if err := s.cacheManager.Session.Get(ctx, cache.SessionKey(id), &cached); err == nil {
		return &cached, nil
	}

	db := getDB(s.db, tx)
	var session models.TestSession
	if err := db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, handleDBError(err, "get test session by id")
	}

	if session.IsCompleted() {
		if err := s.cacheManager.Session.Set(ctx, cache.SessionKey(id), &session, cache.SessionCacheConfig.TTL); err != nil {
			slog.WarnContext(ctx, "Failed to cache completed session", "error", err, "session_id", id)
		}
	}

	return &session, nil
}

func (s *TestSessionPostgreSQL) MarkInProgress(ctx context.Context, tx *gorm.DB, id string, startedAt time.Time) error {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("id = ? AND status = ?", id, models.SessionNotStarted).
		Updates(map[string]interface{}{
			"status":     models.SessionInProgress,
			"started_at": startedAt,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return handleDBError(result.Error, "mark test session in progress")
	}
	if result.RowsAffected == 1 {
		return nil
	}

	status, err := s.currentStatus(ctx, db, id)
	if err != nil {
		return err
	}
	if status == models.SessionCompleted {
		return repositories.ErrStatusConflict
	}
	return nil
}

// Complete is a compare-and-swap on status: only an open session is frozen.
// Answers, score, feedback and completion time are written in the same UPDATE.
func (s *TestSessionPostgreSQL) Complete(ctx context.Context, tx *gorm.DB, id string, completion repositories.SessionCompletion) error {
	db := getDB(s.db, tx)
	result := db.WithContext(ctx).
		Model(&models.TestSession{}).
		Where("id = ? AND status IN ?", id, openSessionStatuses).
		Updates(map[string]interface{}{
			"status":       models.SessionCompleted,
			"answers":      datatypes.NewJSONSlice(completion.Answers),
			"score":        completion.Score,
			"ai_feedback":  datatypes.NewJSONType(completion.AIFeedback),
			"completed_at": completion.CompletedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return handleDBError(result.Error, "complete test session")
	}

	if result.RowsAffected == 0 {
		if _, err := s.currentStatus(ctx, db, id); err != nil {
			return err
		}
		return repositories.ErrStatusConflict
	}

	cache.InvalidateSessionCache(ctx, s.cacheManager, id)
	return nil
}

func (s *TestSessionPostgreSQL) currentStatus(ctx context.Context, db *gorm.DB, id string) (models.SessionStatus, error) {
	var session models.TestSession
	if err := db.WithContext(ctx).Select("id, status").Where("id = ?", id).First(&session).Error; err != nil {
		return "", handleDBError(err, "get test session status")
	}
	return session.Status, nil
}
