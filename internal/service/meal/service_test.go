package meal_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	model "github.com/zhouzirui/z-diet/backend/internal/model/meal"
	meal "github.com/zhouzirui/z-diet/backend/internal/service/meal"
	"github.com/zhouzirui/z-diet/backend/internal/storage/memory"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []meal.Event
}

func (n *recordingNotifier) Publish(_ string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if ev, ok := payload.(meal.Event); ok {
		n.events = append(n.events, ev)
	}
}

type failingAudit struct{}

func (failingAudit) Record(context.Context, audit.Entry) error {
	return errors.New("audit table unavailable")
}

var fixedNow = time.Date(2024, 5, 8, 8, 30, 0, 0, time.UTC)

func newService(opts ...meal.Option) (*meal.Service, *memory.AuditStore, *recordingNotifier) {
	auditStore := memory.NewAuditStore()
	notifier := &recordingNotifier{}
	base := []meal.Option{
		meal.WithAudit(auditStore),
		meal.WithNotifier(notifier),
		meal.WithClock(func() time.Time { return fixedNow }),
	}
	return meal.NewService(memory.NewMealStore(), append(base, opts...)...), auditStore, notifier
}

func TestCreateStampsAndNotifies(t *testing.T) {
	svc, auditStore, notifier := newService()
	ctx := audit.WithClient(context.Background(), audit.Client{IPAddress: "10.0.0.1", UserAgent: "dietctl"})

	created, err := svc.Create(ctx, "user-1", model.Meal{
		Name:     "Eggs and toast",
		Type:     model.Breakfast,
		Calories: 320,
		Protein:  18,
		Carbs:    28,
		Fats:     14,
		Source:   model.SourceChat,
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if created.ID == "" || created.UserID != "user-1" {
		t.Fatalf("meal not stamped: %+v", created)
	}
	if created.Date != "2024-05-08" {
		t.Fatalf("expected today's date, got %s", created.Date)
	}

	entries := auditStore.Entries()
	if len(entries) != 1 || entries[0].Action != audit.ActionCreate || entries[0].IPAddress != "10.0.0.1" {
		t.Fatalf("unexpected audit entries: %+v", entries)
	}
	if len(notifier.events) != 1 || notifier.events[0].Event != meal.EventMealsUpdated {
		t.Fatalf("unexpected events: %+v", notifier.events)
	}
}

func TestCreateInfersUnknownType(t *testing.T) {
	svc, _, _ := newService()

	created, err := svc.Create(context.Background(), "user-1", model.Meal{
		Name: "Oatmeal with berries",
		Type: model.Type("brunch"),
	})
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if created.Type != model.Breakfast {
		t.Fatalf("expected breakfast, got %s", created.Type)
	}
	if created.Source != model.SourceManual {
		t.Fatalf("expected manual source, got %s", created.Source)
	}
}

func TestCreateRejectsNegativeMacros(t *testing.T) {
	svc, auditStore, _ := newService()

	_, err := svc.Create(context.Background(), "user-1", model.Meal{
		Name:     "Mystery",
		Type:     model.Snack,
		Calories: -5,
	})
	if !errors.Is(err, model.ErrNegativeMacro) {
		t.Fatalf("expected ErrNegativeMacro, got %v", err)
	}
	if len(auditStore.Entries()) != 0 {
		t.Fatal("rejected meal must not be audited")
	}
}

func TestAuditFailureDoesNotBlockCreate(t *testing.T) {
	svc, _, _ := newService(meal.WithAudit(failingAudit{}))

	if _, err := svc.Create(context.Background(), "user-1", model.Meal{Name: "Apple", Type: model.Snack}); err != nil {
		t.Fatalf("Create err: %v", err)
	}
}

func TestCreateFromFood(t *testing.T) {
	svc, _, _ := newService()
	item := model.FoodItem{Name: "Banana", Calories: 105, Protein: 1.3, Carbs: 27, Fat: 0.4, ServingSize: 118, ServingUnit: "g"}

	created, err := svc.CreateFromFood(context.Background(), "user-1", item, 2, "snack")
	if err != nil {
		t.Fatalf("CreateFromFood err: %v", err)
	}
	if created.Calories != 210 || created.Source != model.SourceSearch || created.Type != model.Snack {
		t.Fatalf("unexpected meal: %+v", created)
	}

	if _, err := svc.CreateFromFood(context.Background(), "user-1", item, 0, "snack"); !errors.Is(err, model.ErrInvalidMultiplier) {
		t.Fatalf("expected ErrInvalidMultiplier, got %v", err)
	}
}

func TestDeleteOwnership(t *testing.T) {
	svc, auditStore, notifier := newService()
	ctx := context.Background()

	created, _ := svc.Create(ctx, "user-1", model.Meal{Name: "Salad", Type: model.Lunch})

	if err := svc.Delete(ctx, "user-2", created.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.Delete(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("Delete err: %v", err)
	}

	entries := auditStore.Entries()
	last := entries[len(entries)-1]
	if last.Action != audit.ActionDelete || len(last.OldData) == 0 {
		t.Fatalf("unexpected delete audit: %+v", last)
	}
	if got := notifier.events[len(notifier.events)-1].Action; got != "deleted" {
		t.Fatalf("expected deleted event, got %s", got)
	}
}

func TestWeeklyStats(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	fixtures := []model.Meal{
		{Name: "Eggs", Type: model.Breakfast, Calories: 300, Protein: 20, Date: "2024-05-08"},
		{Name: "Rice", Type: model.Lunch, Calories: 400, Carbs: 80, Date: "2024-05-08"},
		{Name: "Soup", Type: model.Dinner, Calories: 700, Fats: 7, Date: "2024-05-02"},
		{Name: "Old", Type: model.Dinner, Calories: 999, Date: "2024-05-01"},
	}
	for _, m := range fixtures {
		if _, err := svc.Create(ctx, "user-1", m); err != nil {
			t.Fatalf("Create err: %v", err)
		}
	}

	stats, err := svc.WeeklyStats(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("WeeklyStats err: %v", err)
	}
	if stats.Start != "2024-05-02" || stats.End != "2024-05-08" {
		t.Fatalf("unexpected window: %s..%s", stats.Start, stats.End)
	}
	if len(stats.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(stats.Days))
	}
	if stats.Days[0].Calories != 700 || stats.Days[6].Calories != 700 || stats.Days[6].Meals != 2 {
		t.Fatalf("unexpected totals: %+v", stats.Days)
	}
	if stats.TotalMeals != 3 {
		t.Fatalf("expected 3 meals, got %d", stats.TotalMeals)
	}
	if stats.Averages.Calories != 200 {
		t.Fatalf("expected 200 kcal/day average, got %v", stats.Averages.Calories)
	}
}

func TestListRejectsBadDates(t *testing.T) {
	svc, _, _ := newService()
	if _, err := svc.List(context.Background(), "user-1", "05/01/2024", ""); !errors.Is(err, model.ErrInvalidMealDate) {
		t.Fatalf("expected ErrInvalidMealDate, got %v", err)
	}
}
