// Package postgres implements the repositories on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

// Store owns the database handle shared by the repositories.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := New(db)
	if err := store.Migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// New wraps an existing gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&chatMessageRecord{},
		&mealRecord{},
		&rateLimitRecord{},
		&auditLogRecord{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Chats returns the chat message repository.
func (s *Store) Chats() *ChatRepository { return &ChatRepository{db: s.db} }

// Meals returns the meal repository.
func (s *Store) Meals() *MealRepository { return &MealRepository{db: s.db} }

// Audit returns the audit log writer.
func (s *Store) Audit() *AuditRepository { return &AuditRepository{db: s.db} }

// RateLimits returns the rate limit counter store.
func (s *Store) RateLimits() *RateLimitStore { return &RateLimitStore{db: s.db} }

// ChatRepository persists chat_messages.
type ChatRepository struct {
	db *gorm.DB
}

func (r *ChatRepository) Append(ctx context.Context, message chat.Message) error {
	record := chatFromModel(message)
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *ChatRepository) List(ctx context.Context, userID string) ([]chat.Message, error) {
	var records []chatMessageRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]chat.Message, len(records))
	for i, rec := range records {
		out[i] = rec.toModel()
	}
	return out, nil
}

func (r *ChatRepository) Clear(ctx context.Context, userID string) (int, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&chatMessageRecord{})
	return int(res.RowsAffected), res.Error
}

// MealRepository persists meals.
type MealRepository struct {
	db *gorm.DB
}

func (r *MealRepository) Create(ctx context.Context, m meal.Meal) error {
	record := mealFromModel(m)
	return r.db.WithContext(ctx).Create(&record).Error
}

func (r *MealRepository) Get(ctx context.Context, userID, id string) (meal.Meal, error) {
	var record mealRecord
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return meal.Meal{}, meal.ErrNotFound
	}
	if err != nil {
		return meal.Meal{}, err
	}
	return record.toModel(), nil
}

func (r *MealRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&mealRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return meal.ErrNotFound
	}
	return nil
}

func (r *MealRepository) ListRange(ctx context.Context, userID, from, to string) ([]meal.Meal, error) {
	var records []mealRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND meal_date BETWEEN ? AND ?", userID, from, to).
		Order("meal_date ASC, created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	out := make([]meal.Meal, len(records))
	for i, rec := range records {
		out[i] = rec.toModel()
	}
	return out, nil
}

// AuditRepository writes audit_logs.
type AuditRepository struct {
	db *gorm.DB
}

// Record implements audit.Writer.
func (r *AuditRepository) Record(ctx context.Context, entry audit.Entry) error {
	record := auditFromModel(entry)
	return r.db.WithContext(ctx).Create(&record).Error
}
