package review

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultStrategy is used when an item names no strategy or an unknown one.
const DefaultStrategy = "standard"

// Strategy is a named review schedule. Intervals are in days and may be
// fractional; the last interval repeats once the schedule is exhausted.
type Strategy struct {
	Name        string
	Description string
	Intervals   []float64
	CycleDays   int
}

// TotalReviews is the number of reviews that completes the schedule.
func (s Strategy) TotalReviews() int {
	return len(s.Intervals)
}

var strategies = []Strategy{
	{
		Name:        "aggressive",
		Description: "Short intensive study for chapters that must be learned quickly",
		Intervals:   []float64{0.5, 1, 2, 4},
		CycleDays:   7,
	},
	{
		Name:        "balanced",
		Description: "Regular study cycle for everyday learning",
		Intervals:   []float64{1, 3, 7, 14},
		CycleDays:   14,
	},
	{
		Name:        "standard",
		Description: "Classic Ebbinghaus curve with the best long-term retention",
		Intervals:   []float64{1, 3, 7, 15, 30},
		CycleDays:   30,
	},
}

// Strategies returns every built-in strategy in display order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategies))
	for i, s := range strategies {
		s.Intervals = append([]float64(nil), s.Intervals...)
		out[i] = s
	}
	return out
}

// Known reports whether name is a built-in strategy.
func Known(name string) bool {
	_, ok := find(name)
	return ok
}

// Lookup returns the named strategy, falling back to the default.
func Lookup(name string) Strategy {
	if s, ok := find(name); ok {
		return s
	}
	s, _ := find(DefaultStrategy)
	return s
}

func find(name string) (Strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range strategies {
		if s.Name == name {
			return s, true
		}
	}
	return Strategy{}, false
}

// NextReview returns base plus the interval for count completed reviews.
// Counts past the end of the schedule reuse the last interval.
func NextReview(count int, strategy string, base time.Time) time.Time {
	intervals := Lookup(strategy).Intervals
	idx := count
	if idx < 0 {
		idx = 0
	}
	if idx >= len(intervals) {
		idx = len(intervals) - 1
	}
	return base.Add(days(intervals[idx]))
}

func days(n float64) time.Duration {
	return time.Duration(n * float64(24*time.Hour))
}

// Progress summarizes how far an item is through its strategy's schedule.
type Progress struct {
	CurrentReviewCount   int     `json:"current_review_count"`
	TotalReviewsNeeded   int     `json:"total_reviews_needed"`
	CompletionPercentage float64 `json:"completion_percentage"`
	IsCompleted          bool    `json:"is_completed"`
	NextReviewCount      int     `json:"next_review_count"`
}

// Completion reports progress after count reviews.
func Completion(count int, strategy string) Progress {
	total := Lookup(strategy).TotalReviews()
	pct := math.Min(float64(count)/float64(total)*100, 100)
	return Progress{
		CurrentReviewCount:   count,
		TotalReviewsNeeded:   total,
		CompletionPercentage: math.Round(pct*10) / 10,
		IsCompleted:          count >= total,
		NextReviewCount:      count + 1,
	}
}

// IsDue reports whether an item scheduled at next should be reviewed at now.
// Items without a schedule are always due.
func IsDue(next *time.Time, now time.Time) bool {
	if next == nil {
		return true
	}
	return !next.After(now)
}

// Countdown is the time left before the next review.
type Countdown struct {
	Ready   bool   `json:"ready"`
	Days    int    `json:"days"`
	Hours   int    `json:"hours"`
	Message string `json:"message"`
}

// Until reports how long remains until next.
func Until(next *time.Time, now time.Time) Countdown {
	if next == nil {
		return Countdown{Ready: true, Message: "ready to review"}
	}
	diff := next.Sub(now)
	if diff <= 0 {
		return Countdown{Ready: true, Message: "you can review now"}
	}
	d := int(diff / (24 * time.Hour))
	h := int((diff % (24 * time.Hour)) / time.Hour)
	return Countdown{
		Days:    d,
		Hours:   h,
		Message: fmt.Sprintf("wait %d days %d hours", d, h),
	}
}
