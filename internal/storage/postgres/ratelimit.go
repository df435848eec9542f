package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
)

// RateLimitStore keeps counters in rate_limits so every instance shares them.
type RateLimitStore struct {
	db *gorm.DB
}

// Hit implements ratelimit.Store. The row is locked for the duration of the
// check so concurrent requests for one key serialise, and request_count never
// passes the limit.
func (s *RateLimitStore) Hit(ctx context.Context, key ratelimit.Key, policy ratelimit.Policy, now time.Time) (bool, error) {
	if policy.Limit <= 0 {
		return false, nil
	}

	now = now.UTC()
	resetAt := nextReset(now, policy.Window)
	allowed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 首次访问时插入计数行，已存在则忽略。
		err := tx.Exec(`INSERT INTO rate_limits (identity, function_name, request_count, daily_limit, reset_at, last_request)
VALUES (?, ?, 0, ?, ?, ?) ON CONFLICT (identity, function_name) DO NOTHING`,
			key.Identity, key.Function, policy.Limit, resetAt, now).Error
		if err != nil {
			return err
		}

		var rec rateLimitRecord
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("identity = ? AND function_name = ?", key.Identity, key.Function).
			First(&rec).Error
		if err != nil {
			return err
		}

		if !now.Before(rec.ResetAt) {
			rec.RequestCount = 0
			rec.ResetAt = resetAt
		}
		if rec.RequestCount >= policy.Limit {
			return nil
		}

		allowed = true
		return tx.Exec(`UPDATE rate_limits SET request_count = ?, daily_limit = ?, reset_at = ?, last_request = ? WHERE id = ?`,
			rec.RequestCount+1, policy.Limit, rec.ResetAt, now, rec.ID).Error
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// nextReset returns the end of the window containing now. Windows are
// aligned to the zero time, so a 24h window ends at UTC midnight.
func nextReset(now time.Time, window time.Duration) time.Time {
	if window <= 0 {
		return now
	}
	return now.UTC().Truncate(window).Add(window)
}
