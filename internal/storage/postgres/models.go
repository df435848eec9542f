package postgres

import (
	"time"

	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

type chatMessageRecord struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `gorm:"index;not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (chatMessageRecord) TableName() string { return "chat_messages" }

func chatFromModel(m chat.Message) chatMessageRecord {
	return chatMessageRecord{
		ID:        m.ID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

func (r chatMessageRecord) toModel() chat.Message {
	return chat.Message{
		ID:        r.ID,
		UserID:    r.UserID,
		Role:      chat.Role(r.Role),
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

type mealRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"index:idx_meals_user_date,priority:1;not null"`
	MealName  string `gorm:"not null"`
	MealType  string `gorm:"type:varchar(16);not null"`
	Calories  float64
	Protein   float64
	Carbs     float64
	Fats      float64
	MealDate  string `gorm:"type:varchar(10);index:idx_meals_user_date,priority:2;not null"`
	Notes     string `gorm:"type:text"`
	Source    string `gorm:"type:varchar(16)"`
	CreatedAt time.Time
}

func (mealRecord) TableName() string { return "meals" }

func mealFromModel(m meal.Meal) mealRecord {
	return mealRecord{
		ID:        m.ID,
		UserID:    m.UserID,
		MealName:  m.Name,
		MealType:  string(m.Type),
		Calories:  m.Calories,
		Protein:   m.Protein,
		Carbs:     m.Carbs,
		Fats:      m.Fats,
		MealDate:  m.Date,
		Notes:     m.Notes,
		Source:    string(m.Source),
		CreatedAt: m.CreatedAt,
	}
}

func (r mealRecord) toModel() meal.Meal {
	return meal.Meal{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.MealName,
		Type:      meal.Type(r.MealType),
		Calories:  r.Calories,
		Protein:   r.Protein,
		Carbs:     r.Carbs,
		Fats:      r.Fats,
		Date:      r.MealDate,
		Notes:     r.Notes,
		Source:    meal.Source(r.Source),
		CreatedAt: r.CreatedAt,
	}
}

type rateLimitRecord struct {
	ID           uint      `gorm:"primaryKey"`
	Identity     string    `gorm:"uniqueIndex:idx_rate_limits_key,priority:1;not null"`
	FunctionName string    `gorm:"uniqueIndex:idx_rate_limits_key,priority:2;not null"`
	RequestCount int       `gorm:"not null;default:0"`
	DailyLimit   int       `gorm:"not null"`
	ResetAt      time.Time `gorm:"not null"`
	LastRequest  time.Time
}

func (rateLimitRecord) TableName() string { return "rate_limits" }

type auditLogRecord struct {
	ID        string `gorm:"primaryKey;type:varchar(36)"`
	UserID    string `gorm:"index;not null"`
	Action    string `gorm:"type:varchar(16);not null"`
	Table     string `gorm:"column:table_name;not null"`
	RecordID  string
	NewData   string `gorm:"type:text"`
	OldData   string `gorm:"type:text"`
	IPAddress string
	UserAgent string
	CreatedAt time.Time `gorm:"index"`
}

func (auditLogRecord) TableName() string { return "audit_logs" }

func auditFromModel(e audit.Entry) auditLogRecord {
	return auditLogRecord{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    string(e.Action),
		Table:     e.TableName,
		RecordID:  e.RecordID,
		NewData:   string(e.NewData),
		OldData:   string(e.OldData),
		IPAddress: e.IPAddress,
		UserAgent: e.UserAgent,
		CreatedAt: e.CreatedAt,
	}
}
