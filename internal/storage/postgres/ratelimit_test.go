package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
)

func TestNextResetDailyAlignsToUTCMidnight(t *testing.T) {
	now := time.Date(2024, 3, 10, 17, 42, 5, 0, time.UTC)
	got := nextReset(now, 24*time.Hour)
	want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestNextResetConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2024, 3, 11, 2, 0, 0, 0, loc) // 2024-03-10 18:00 UTC
	got := nextReset(now, 24*time.Hour)
	want := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestNextResetShortWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 17, 42, 5, 0, time.UTC)
	got := nextReset(now, time.Minute)
	want := time.Date(2024, 3, 10, 17, 43, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %s got %s", want, got)
	}
}

var (
	hitNow    = time.Date(2024, 3, 10, 17, 42, 5, 0, time.UTC)
	hitKey    = ratelimit.Key{Identity: "user-1", Function: "diet-chat"}
	hitPolicy = ratelimit.Policy{Limit: 3, Window: 24 * time.Hour}
)

type sameTime time.Time

func (want sameTime) Match(v driver.Value) bool {
	got, ok := v.(time.Time)
	return ok && got.Equal(time.Time(want))
}

func rateLimitRow(count int, resetAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "identity", "function_name", "request_count", "daily_limit", "reset_at", "last_request"}).
		AddRow(7, hitKey.Identity, hitKey.Function, count, hitPolicy.Limit, resetAt, hitNow.Add(-time.Hour))
}

func expectSeedAndLock(mock sqlmock.Sqlmock, rows *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rate_limits|ON CONFLICT (identity, function_name) DO NOTHING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM "rate_limits"|FOR UPDATE`).WillReturnRows(rows)
}

func TestRateLimitHitAllowsUpToLimit(t *testing.T) {
	store, mock := newMockStore(t)
	endOfDay := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	expectSeedAndLock(mock, rateLimitRow(2, endOfDay))
	mock.ExpectExec("UPDATE rate_limits SET request_count").
		WithArgs(3, 3, sqlmock.AnyArg(), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := store.RateLimits().Hit(context.Background(), hitKey, hitPolicy, hitNow)
	if err != nil || !ok {
		t.Fatalf("expected the third request to pass, got ok=%v err=%v", ok, err)
	}
	expectationsMet(t, mock)
}

func TestRateLimitHitDeniesPastLimit(t *testing.T) {
	store, mock := newMockStore(t)
	endOfDay := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	// A denied request leaves the counter untouched.
	expectSeedAndLock(mock, rateLimitRow(3, endOfDay))
	mock.ExpectCommit()

	ok, err := store.RateLimits().Hit(context.Background(), hitKey, hitPolicy, hitNow)
	if err != nil || ok {
		t.Fatalf("expected limit+1 to be denied, got ok=%v err=%v", ok, err)
	}
	expectationsMet(t, mock)
}

func TestRateLimitHitResetsAfterBoundary(t *testing.T) {
	store, mock := newMockStore(t)
	midnight := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	expectSeedAndLock(mock, rateLimitRow(3, midnight))
	mock.ExpectExec("UPDATE rate_limits SET request_count").
		WithArgs(1, 3, sameTime(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)), sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ok, err := store.RateLimits().Hit(context.Background(), hitKey, hitPolicy, hitNow)
	if err != nil || !ok {
		t.Fatalf("expected a fresh window to allow, got ok=%v err=%v", ok, err)
	}
	expectationsMet(t, mock)
}

func TestRateLimitHitZeroLimitSkipsDatabase(t *testing.T) {
	store, mock := newMockStore(t)

	ok, err := store.RateLimits().Hit(context.Background(), hitKey, ratelimit.Policy{Limit: 0, Window: time.Hour}, hitNow)
	if err != nil || ok {
		t.Fatalf("expected denial, got ok=%v err=%v", ok, err)
	}
	expectationsMet(t, mock)
}

func TestRateLimitDatabaseErrorIsCheckFailed(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rate_limits").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	limiter := ratelimit.New(store.RateLimits(), 24*time.Hour, map[string]int{"diet-chat": 3})
	ok, err := limiter.Allow(context.Background(), "user-1", "diet-chat")
	if ok || !errors.Is(err, ratelimit.ErrCheckFailed) {
		t.Fatalf("expected ErrCheckFailed, got ok=%v err=%v", ok, err)
	}
	expectationsMet(t, mock)
}
