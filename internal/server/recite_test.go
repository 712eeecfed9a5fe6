package server_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"recitebot/internal/review"
	"recitebot/internal/studyset"
	"recitebot/internal/testsupport"
)

type memorizeReply struct {
	ReviewCount  int              `json:"review_count"`
	NextReviewAt time.Time        `json:"next_review_at"`
	Completion   review.Progress  `json:"completion"`
	Until        review.Countdown `json:"time_until_next_review"`
}

type strategiesReply struct {
	Strategies []struct {
		Name         string    `json:"name"`
		CycleDays    int       `json:"cycle_days"`
		Intervals    []float64 `json:"intervals"`
		TotalReviews int       `json:"total_reviews"`
	} `json:"strategies"`
	Default string `json:"default_strategy"`
}

func TestReciteLifecycle(t *testing.T) {
	h := newHarness(t)
	testsupport.WriteBook(t, h.lib.Dir(), "Bio", []studyset.Chapter{
		{Title: "Cells", Content: "c"},
		{Title: "DNA", Content: "d"},
	})

	rec := h.do(t, http.MethodPost, "/api/recite-list/add", `{"book_name":"Bio","chapter_title":"Cells","strategy":"balanced"}`)
	added := decode[map[string]any](t, rec)
	if rec.Code != http.StatusOK || added["message"] != "added to recite list" || added["strategy"] != "balanced" {
		t.Fatalf("add = %d %v", rec.Code, added)
	}
	if added["review_cycle_days"] != float64(14) || added["strategy_description"] == "" {
		t.Fatalf("unexpected strategy info %v", added)
	}

	rec = h.do(t, http.MethodPost, "/api/recite-list/add", `{"book_name":"Bio","chapter_title":"Cells"}`)
	if msg := decode[map[string]any](t, rec)["message"]; msg != "chapter already in recite list" {
		t.Fatalf("duplicate add message = %v", msg)
	}
	if rec := h.do(t, http.MethodPost, "/api/recite-list/add", `{"book_name":"Bio","chapter_title":"DNA"}`); rec.Code != http.StatusOK {
		t.Fatalf("second add = %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/api/recite-list", "")
	items := decode[[]review.Item](t, rec)
	if len(items) != 2 || items[0].ID != "Bio:Cells" || items[1].Strategy != review.DefaultStrategy {
		t.Fatalf("unexpected list %+v", items)
	}

	rec = h.do(t, http.MethodPost, "/api/recite-list/memorize", `{"book_name":"Bio","chapter_title":"Cells"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("memorize = %d %s", rec.Code, rec.Body.String())
	}
	memorized := decode[memorizeReply](t, rec)
	if memorized.ReviewCount != 1 || !memorized.NextReviewAt.Equal(now.Add(3*24*time.Hour)) {
		t.Fatalf("unexpected memorize reply %+v", memorized)
	}
	if memorized.Completion.CompletionPercentage != 25 || memorized.Until.Days != 3 || memorized.Until.Ready {
		t.Fatalf("unexpected progress %+v", memorized)
	}

	rec = h.do(t, http.MethodGet, "/api/reciting-chapters", "")
	due := decode[[]review.BookGroup](t, rec)
	if len(due) != 1 || len(due[0].Chapters) != 1 || due[0].Chapters[0].Title != "DNA" {
		t.Fatalf("unexpected due chapters %+v", due)
	}
	rec = h.do(t, http.MethodGet, "/api/reciting-chapters/all", "")
	all := decode[[]review.BookGroup](t, rec)
	if len(all) != 1 || len(all[0].Chapters) != 2 {
		t.Fatalf("unexpected all chapters %+v", all)
	}

	rec = h.do(t, http.MethodPost, "/api/recite-list/strategy", `{"book_name":"Bio","chapter_title":"Cells","strategy":"aggressive"}`)
	changed := decode[map[string]any](t, rec)
	if rec.Code != http.StatusOK || changed["old_strategy"] != "balanced" || changed["new_strategy"] != "aggressive" {
		t.Fatalf("strategy = %d %v", rec.Code, changed)
	}
	if changed["message"] != "changed review strategy from balanced to aggressive" {
		t.Fatalf("unexpected message %v", changed["message"])
	}

	rec = h.do(t, http.MethodPost, "/api/recite-list/remove", `{"book_name":"Bio","chapter_title":"Cells"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("remove = %d", rec.Code)
	}
	if _, err := h.reviews.Get(context.Background(), "Bio", "Cells"); err == nil {
		t.Fatal("expected item to be removed")
	}
}

func TestReciteErrors(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		path    string
		body    string
		status  int
		message string
	}{
		{"/api/recite-list/add", `{"book_name":"Bio"}`, http.StatusBadRequest, "missing book_name or chapter_title"},
		{"/api/recite-list/add", `{"book_name":" ","chapter_title":"x"}`, http.StatusBadRequest, "book_name and chapter_title cannot be empty"},
		{"/api/recite-list/add", `{"book_name":"Bio","chapter_title":"x","strategy":"weekly"}`, http.StatusBadRequest, "unknown review strategy"},
		{"/api/recite-list/remove", `{}`, http.StatusBadRequest, "missing book_name or chapter_title"},
		{"/api/recite-list/memorize", `{"book_name":"Bio","chapter_title":"x"}`, http.StatusNotFound, "chapter not found in recite list"},
		{"/api/recite-list/strategy", `{"book_name":"Bio","chapter_title":"x"}`, http.StatusBadRequest, "missing required parameters"},
		{"/api/recite-list/strategy", `{"book_name":"Bio","chapter_title":"x","strategy":""}`, http.StatusBadRequest, "parameters cannot be empty"},
		{"/api/recite-list/strategy", `{"book_name":"Bio","chapter_title":"x","strategy":"balanced"}`, http.StatusNotFound, "chapter not found in recite list"},
	}
	for _, tt := range tests {
		rec := h.do(t, http.MethodPost, tt.path, tt.body)
		if rec.Code != tt.status {
			t.Errorf("POST %s %s = %d, want %d", tt.path, tt.body, rec.Code, tt.status)
			continue
		}
		if got := errorOf(t, rec); got != tt.message {
			t.Errorf("POST %s %s error = %q, want %q", tt.path, tt.body, got, tt.message)
		}
	}
}

func TestReviewStrategies(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/review-strategies", "")
	got := decode[strategiesReply](t, rec)
	if got.Default != "standard" || len(got.Strategies) != 3 {
		t.Fatalf("unexpected strategies %+v", got)
	}
	if diff := cmp.Diff([]float64{0.5, 1, 2, 4}, got.Strategies[0].Intervals); diff != "" {
		t.Fatalf("unexpected aggressive intervals (-want +got):\n%s", diff)
	}
	if got.Strategies[2].TotalReviews != 5 || got.Strategies[2].CycleDays != 30 {
		t.Fatalf("unexpected standard strategy %+v", got.Strategies[2])
	}
}
