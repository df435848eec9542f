// Package meal implements meal logging, history and weekly summaries.
package meal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/analysis/mealtype"
	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
)

// EventMealsUpdated is pushed to a user's sockets after any meal change.
const EventMealsUpdated = "meals-updated"

const tableMeals = "meals"

var ErrUserRequired = errors.New("user id is required")

// Repository persists meals.
type Repository interface {
	Create(ctx context.Context, m meal.Meal) error
	// Get returns meal.ErrNotFound when id does not exist for userID.
	Get(ctx context.Context, userID, id string) (meal.Meal, error)
	Delete(ctx context.Context, userID, id string) error
	// ListRange returns meals with from <= meal_date <= to, ordered by date
	// then creation time.
	ListRange(ctx context.Context, userID, from, to string) ([]meal.Meal, error)
}

// Notifier fans events out to a user's live connections.
type Notifier interface {
	Publish(userID string, payload any)
}

// Event is the payload published on meal changes.
type Event struct {
	Event  string     `json:"event"`
	Action string     `json:"action"`
	MealID string     `json:"mealId"`
	Date   string     `json:"date"`
	Meal   *meal.Meal `json:"meal,omitempty"`
}

// Service coordinates meal persistence with auditing and notifications.
type Service struct {
	repo     Repository
	audit    audit.Writer
	notifier Notifier
	now      func() time.Time
	log      *logrus.Entry
}

// Option customises a Service.
type Option func(*Service)

// WithAudit records create and delete operations to w.
func WithAudit(w audit.Writer) Option {
	return func(s *Service) { s.audit = w }
}

// WithNotifier publishes change events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a meal service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
		log:  logger.Component("meal"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current meal date.
func (s *Service) Today() string {
	return meal.Day(s.now())
}

// Create stamps, normalises and stores m for userID.
func (s *Service) Create(ctx context.Context, userID string, m meal.Meal) (meal.Meal, error) {
	if userID == "" {
		return meal.Meal{}, ErrUserRequired
	}

	now := s.now()
	m.ID = uuid.NewString()
	m.UserID = userID
	m.CreatedAt = now.UTC()
	m.Name = strings.TrimSpace(m.Name)
	if m.Date == "" {
		m.Date = meal.Day(now)
	}
	if m.Source == "" {
		m.Source = meal.SourceManual
	}
	m.Type = mealtype.Infer(string(m.Type), m.Name, m.Notes, now).Type

	if err := m.Validate(); err != nil {
		return meal.Meal{}, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return meal.Meal{}, fmt.Errorf("failed to save meal: %w", err)
	}

	s.record(ctx, audit.ActionCreate, userID, m.ID, &m, nil)
	s.publish(userID, "created", m)

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"meal_id": m.ID,
		"source":  m.Source,
	}).Info("meal logged")
	return m, nil
}

// CreateFromFood logs a food lookup result scaled by multiplier.
func (s *Service) CreateFromFood(ctx context.Context, userID string, item meal.FoodItem, multiplier float64, mealType string) (meal.Meal, error) {
	raw := meal.Type(mealType)
	if _, ok := meal.ParseType(mealType); !ok {
		raw = mealtype.Infer(mealType, item.Name, "", s.now()).Type
	}

	m, err := item.ToMeal(multiplier, raw, meal.Day(s.now()))
	if err != nil {
		return meal.Meal{}, err
	}
	return s.Create(ctx, userID, m)
}

// List returns meals between from and to inclusive. Empty bounds default
// to today.
func (s *Service) List(ctx context.Context, userID, from, to string) ([]meal.Meal, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if from == "" {
		from = s.Today()
	}
	if to == "" {
		to = from
	}
	if _, err := time.Parse(meal.DateLayout, from); err != nil {
		return nil, meal.ErrInvalidMealDate
	}
	if _, err := time.Parse(meal.DateLayout, to); err != nil {
		return nil, meal.ErrInvalidMealDate
	}
	return s.repo.ListRange(ctx, userID, from, to)
}

// Delete removes a meal owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrUserRequired
	}

	existing, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.record(ctx, audit.ActionDelete, userID, id, nil, &existing)
	s.publish(userID, "deleted", existing)
	return nil
}

// DayTotals sums one calendar day.
type DayTotals struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
	Meals    int     `json:"meals"`
}

// Averages are per-day means over a summary window.
type Averages struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fats     float64 `json:"fats"`
}

// WeeklyStats summarises the seven days ending on End.
type WeeklyStats struct {
	Start      string      `json:"start"`
	End        string      `json:"end"`
	Days       []DayTotals `json:"days"`
	Averages   Averages    `json:"averages"`
	TotalMeals int         `json:"totalMeals"`
}

// WeeklyStats totals the seven days ending on end (default today).
func (s *Service) WeeklyStats(ctx context.Context, userID, end string) (WeeklyStats, error) {
	if end == "" {
		end = s.Today()
	}
	endDay, err := time.Parse(meal.DateLayout, end)
	if err != nil {
		return WeeklyStats{}, meal.ErrInvalidMealDate
	}
	start := meal.Day(endDay.AddDate(0, 0, -6))

	meals, err := s.List(ctx, userID, start, end)
	if err != nil {
		return WeeklyStats{}, err
	}

	days := make([]DayTotals, 7)
	index := make(map[string]int, 7)
	for i := range days {
		date := meal.Day(endDay.AddDate(0, 0, i-6))
		days[i] = DayTotals{Date: date}
		index[date] = i
	}

	stats := WeeklyStats{Start: start, End: end}
	for _, m := range meals {
		i, ok := index[m.Date]
		if !ok {
			continue
		}
		days[i].Calories += m.Calories
		days[i].Protein += m.Protein
		days[i].Carbs += m.Carbs
		days[i].Fats += m.Fats
		days[i].Meals++
		stats.TotalMeals++
	}

	var sum Averages
	for i := range days {
		days[i].Calories = round1(days[i].Calories)
		days[i].Protein = round1(days[i].Protein)
		days[i].Carbs = round1(days[i].Carbs)
		days[i].Fats = round1(days[i].Fats)
		sum.Calories += days[i].Calories
		sum.Protein += days[i].Protein
		sum.Carbs += days[i].Carbs
		sum.Fats += days[i].Fats
	}
	stats.Days = days
	stats.Averages = Averages{
		Calories: round1(sum.Calories / 7),
		Protein:  round1(sum.Protein / 7),
		Carbs:    round1(sum.Carbs / 7),
		Fats:     round1(sum.Fats / 7),
	}
	return stats, nil
}

func (s *Service) record(ctx context.Context, action audit.Action, userID, recordID string, newData, oldData *meal.Meal) {
	if s.audit == nil {
		return
	}

	client := audit.ClientFrom(ctx)
	entry := audit.Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		TableName: tableMeals,
		RecordID:  recordID,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: s.now().UTC(),
	}
	if newData != nil {
		entry.NewData = audit.Snapshot(newData)
	}
	if oldData != nil {
		entry.OldData = audit.Snapshot(oldData)
	}

	if err := s.audit.Record(ctx, entry); err != nil {
		s.log.WithError(err).WithField("record_id", recordID).Warn("failed to write audit log")
	}
}

func (s *Service) publish(userID, action string, m meal.Meal) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(userID, Event{
		Event:  EventMealsUpdated,
		Action: action,
		MealID: m.ID,
		Date:   m.Date,
		Meal:   &m,
	})
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
