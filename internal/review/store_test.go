package review_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"recitebot/internal/review"
	"recitebot/internal/testsupport"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func openStore(t *testing.T) (*review.Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: base}
	cfg := testsupport.NewConfig(t)
	return testsupport.MustOpenReviewStore(t, cfg, review.WithClock(clock.Now)), clock
}

func TestAddIsDueImmediatelyAndDeduplicates(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	item, created, err := store.Add(ctx, " Bio ", " Cells ", "")
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if !created {
		t.Fatal("expected item to be created")
	}
	if item.ID != "Bio:Cells" || item.Strategy != review.DefaultStrategy || item.ReviewCount != 0 {
		t.Fatalf("unexpected item %+v", item)
	}
	if item.LastReviewedAt != nil || item.NextReviewAt == nil || !item.NextReviewAt.Equal(base) {
		t.Fatalf("unexpected schedule %+v", item)
	}
	if !item.AddedAt.Equal(base) {
		t.Fatalf("unexpected added_at %v", item.AddedAt)
	}

	again, created, err := store.Add(ctx, "Bio", "Cells", "aggressive")
	if err != nil {
		t.Fatalf("second Add returned error: %v", err)
	}
	if created || again.Strategy != review.DefaultStrategy {
		t.Fatalf("duplicate add changed the item: created=%v %+v", created, again)
	}

	items, err := store.List(ctx)
	if err != nil || len(items) != 1 {
		t.Fatalf("List = %v, %v", items, err)
	}
}

func TestAddValidation(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()
	if _, _, err := store.Add(ctx, "", "Cells", ""); !errors.Is(err, review.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	if _, _, err := store.Add(ctx, "Bio", "  ", ""); !errors.Is(err, review.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
	if _, _, err := store.Add(ctx, "Bio", "Cells", "weekly"); !errors.Is(err, review.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
}

func TestMarkMemorizedProgression(t *testing.T) {
	store, clock := openStore(t)
	ctx := context.Background()
	if _, _, err := store.Add(ctx, "Bio", "Cells", "balanced"); err != nil {
		t.Fatal(err)
	}

	wantGaps := []time.Duration{3 * 24 * time.Hour, 7 * 24 * time.Hour, 14 * 24 * time.Hour, 14 * 24 * time.Hour}
	for i, gap := range wantGaps {
		clock.Advance(time.Hour)
		now := clock.Now()
		item, err := store.MarkMemorized(ctx, "Bio", "Cells")
		if err != nil {
			t.Fatalf("MarkMemorized #%d returned error: %v", i+1, err)
		}
		if item.ReviewCount != i+1 {
			t.Fatalf("review count = %d, want %d", item.ReviewCount, i+1)
		}
		if item.LastReviewedAt == nil || !item.LastReviewedAt.Equal(now) {
			t.Fatalf("last reviewed = %v, want %v", item.LastReviewedAt, now)
		}
		if got := item.NextReviewAt.Sub(now); got != gap {
			t.Fatalf("review #%d gap = %v, want %v", i+1, got, gap)
		}
	}

	if _, err := store.MarkMemorized(ctx, "Bio", "Missing"); !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChangeStrategyKeepsCount(t *testing.T) {
	store, clock := openStore(t)
	ctx := context.Background()
	if _, _, err := store.Add(ctx, "Bio", "Cells", "standard"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.MarkMemorized(ctx, "Bio", "Cells"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Hour)

	item, old, err := store.ChangeStrategy(ctx, "Bio", "Cells", "aggressive")
	if err != nil {
		t.Fatalf("ChangeStrategy returned error: %v", err)
	}
	if old != "standard" || item.Strategy != "aggressive" || item.ReviewCount != 1 {
		t.Fatalf("unexpected change: old=%s %+v", old, item)
	}
	if got := item.NextReviewAt.Sub(clock.Now()); got != 24*time.Hour {
		t.Fatalf("next review gap = %v", got)
	}

	if _, _, err := store.ChangeStrategy(ctx, "Bio", "Cells", "weekly"); !errors.Is(err, review.ErrUnknownStrategy) {
		t.Fatalf("expected ErrUnknownStrategy, got %v", err)
	}
	if _, _, err := store.ChangeStrategy(ctx, "Bio", "Nope", "balanced"); !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDueAndRemove(t *testing.T) {
	store, clock := openStore(t)
	ctx := context.Background()
	for _, title := range []string{"One", "Two"} {
		if _, _, err := store.Add(ctx, "Bio", title, "aggressive"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.MarkMemorized(ctx, "Bio", "One"); err != nil {
		t.Fatal(err)
	}

	due, err := store.Due(ctx, clock.Now())
	if err != nil {
		t.Fatalf("Due returned error: %v", err)
	}
	if len(due) != 1 || due[0].ChapterTitle != "Two" {
		t.Fatalf("unexpected due items %+v", due)
	}
	due, err = store.Due(ctx, clock.Now().Add(25*time.Hour))
	if err != nil || len(due) != 2 {
		t.Fatalf("expected both items due later, got %v %v", due, err)
	}

	removed, err := store.Remove(ctx, "Bio", "Two")
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = store.Remove(ctx, "Bio", "Two")
	if err != nil || removed {
		t.Fatalf("second Remove = %v, %v", removed, err)
	}
	if _, err := store.Get(ctx, "Bio", "Two"); !errors.Is(err, review.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreReopenKeepsItems(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first := testsupport.MustOpenReviewStore(t, cfg)
	if _, _, err := first.Add(ctx, "Bio", "Cells", "balanced"); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := testsupport.MustOpenReviewStore(t, cfg)
	item, err := second.Get(ctx, "Bio", "Cells")
	if err != nil {
		t.Fatalf("Get after reopen returned error: %v", err)
	}
	if item.Strategy != "balanced" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestDefaultStrategyOption(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenReviewStore(t, cfg, review.WithDefaultStrategy("aggressive"))
	item, _, err := store.Add(context.Background(), "Bio", "Cells", "")
	if err != nil {
		t.Fatal(err)
	}
	if item.Strategy != "aggressive" {
		t.Fatalf("strategy = %q", item.Strategy)
	}
}
