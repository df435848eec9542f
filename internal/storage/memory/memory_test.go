package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zhouzirui/z-diet/backend/internal/model/chat"
	"github.com/zhouzirui/z-diet/backend/internal/model/meal"
)

func TestMealStoreListRangeOrdersAndFilters(t *testing.T) {
	store := NewMealStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	fixtures := []meal.Meal{
		{ID: "c", UserID: "u1", Date: "2024-05-02", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "a", UserID: "u1", Date: "2024-05-01", CreatedAt: base.Add(time.Hour)},
		{ID: "b", UserID: "u1", Date: "2024-05-02", CreatedAt: base},
		{ID: "d", UserID: "u1", Date: "2024-05-09", CreatedAt: base},
		{ID: "e", UserID: "u2", Date: "2024-05-01", CreatedAt: base},
	}
	for _, m := range fixtures {
		if err := store.Create(ctx, m); err != nil {
			t.Fatalf("Create err: %v", err)
		}
	}

	got, err := store.ListRange(ctx, "u1", "2024-05-01", "2024-05-02")
	if err != nil {
		t.Fatalf("ListRange err: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d meals, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: want %s got %s", i, id, got[i].ID)
		}
	}
}

func TestMealStoreOwnership(t *testing.T) {
	store := NewMealStore()
	ctx := context.Background()
	_ = store.Create(ctx, meal.Meal{ID: "m1", UserID: "u1", Date: "2024-05-01"})

	if _, err := store.Get(ctx, "u2", "m1"); !errors.Is(err, meal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if err := store.Delete(ctx, "u2", "m1"); !errors.Is(err, meal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on foreign delete, got %v", err)
	}
	if err := store.Delete(ctx, "u1", "m1"); err != nil {
		t.Fatalf("Delete err: %v", err)
	}
	if _, err := store.Get(ctx, "u1", "m1"); !errors.Is(err, meal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestChatStoreListReturnsCopy(t *testing.T) {
	store := NewChatStore()
	ctx := context.Background()
	_ = store.Append(ctx, chat.Message{ID: "1", UserID: "u1", Role: chat.RoleUser, Content: "hi"})

	list, _ := store.List(ctx, "u1")
	list[0].Content = "mutated"

	again, _ := store.List(ctx, "u1")
	if again[0].Content != "hi" {
		t.Fatalf("store exposed internal slice: %+v", again[0])
	}
}
