package review_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"recitebot/internal/review"
)

var base = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestLookupFallsBackToDefault(t *testing.T) {
	if got := review.Lookup("nope").Name; got != review.DefaultStrategy {
		t.Fatalf("Lookup(nope) = %q", got)
	}
	if got := review.Lookup(" Balanced ").Name; got != "balanced" {
		t.Fatalf("Lookup(Balanced) = %q", got)
	}
	if review.Known("nope") || !review.Known("aggressive") {
		t.Fatal("Known reported wrong membership")
	}
}

func TestStrategiesReturnsCopies(t *testing.T) {
	list := review.Strategies()
	if len(list) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(list))
	}
	list[0].Intervals[0] = 99
	if review.Strategies()[0].Intervals[0] == 99 {
		t.Fatal("Strategies leaked internal slice")
	}
}

func TestNextReview(t *testing.T) {
	tests := []struct {
		count    int
		strategy string
		want     time.Duration
	}{
		{0, "standard", 24 * time.Hour},
		{1, "standard", 3 * 24 * time.Hour},
		{4, "standard", 30 * 24 * time.Hour},
		{9, "standard", 30 * 24 * time.Hour},
		{0, "aggressive", 12 * time.Hour},
		{3, "balanced", 14 * 24 * time.Hour},
		{-1, "balanced", 24 * time.Hour},
		{2, "unknown", 7 * 24 * time.Hour},
	}
	for _, tt := range tests {
		got := review.NextReview(tt.count, tt.strategy, base)
		if got.Sub(base) != tt.want {
			t.Errorf("NextReview(%d, %s) = +%v, want +%v", tt.count, tt.strategy, got.Sub(base), tt.want)
		}
	}
}

func TestCompletion(t *testing.T) {
	got := review.Completion(1, "balanced")
	want := review.Progress{
		CurrentReviewCount:   1,
		TotalReviewsNeeded:   4,
		CompletionPercentage: 25,
		NextReviewCount:      2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected progress (-want +got):\n%s", diff)
	}

	if p := review.Completion(1, "standard"); p.CompletionPercentage != 20 {
		t.Fatalf("standard 1/5 = %v", p.CompletionPercentage)
	}
	if p := review.Completion(2, "standard"); p.CompletionPercentage != 40 {
		t.Fatalf("standard 2/5 = %v", p.CompletionPercentage)
	}
	if p := review.Completion(7, "aggressive"); p.CompletionPercentage != 100 || !p.IsCompleted {
		t.Fatalf("expected capped completion, got %+v", p)
	}
}

func TestIsDue(t *testing.T) {
	if !review.IsDue(nil, base) {
		t.Fatal("nil schedule should be due")
	}
	past := base.Add(-time.Minute)
	future := base.Add(time.Minute)
	if !review.IsDue(&base, base) || !review.IsDue(&past, base) {
		t.Fatal("past and present schedules should be due")
	}
	if review.IsDue(&future, base) {
		t.Fatal("future schedule should not be due")
	}
}

func TestUntil(t *testing.T) {
	if c := review.Until(nil, base); !c.Ready || c.Message != "ready to review" {
		t.Fatalf("unexpected countdown %+v", c)
	}
	past := base.Add(-time.Hour)
	if c := review.Until(&past, base); !c.Ready || c.Message != "you can review now" {
		t.Fatalf("unexpected countdown %+v", c)
	}
	next := base.Add(2*24*time.Hour + 5*time.Hour + 30*time.Minute)
	want := review.Countdown{Days: 2, Hours: 5, Message: "wait 2 days 5 hours"}
	if diff := cmp.Diff(want, review.Until(&next, base)); diff != "" {
		t.Fatalf("unexpected countdown (-want +got):\n%s", diff)
	}
}
