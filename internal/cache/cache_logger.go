package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SessionKey is the cache key of a session by id
func SessionKey(sessionID string) string {
	return fmt.Sprintf("id:%s", sessionID)
}

// BankListKey is the cache key of the bank list with question counts
const BankListKey = "list:all"

// BankQuestionsKey is the cache key of a bank's ordered question list
func BankQuestionsKey(bankID string) string {
	return fmt.Sprintf("bank:%s", bankID)
}

// InvalidateSessionCache drops a cached session
func InvalidateSessionCache(ctx context.Context, cm *CacheManager, sessionID string) {
	SafeDelete(ctx, cm.Session, SessionKey(sessionID))
}

// InvalidateBankCache drops everything cached for a bank, including its question list
func InvalidateBankCache(ctx context.Context, cm *CacheManager, bankID string) {
	SafeDelete(ctx, cm.Question, BankQuestionsKey(bankID))
	SafeInvalidatePattern(ctx, cm.Bank, "list:*")
}
