package testsupport

import (
	"testing"

	"recitebot/internal/config"
	"recitebot/internal/review"
)

// MustOpenReviewStore opens the recite list database for cfg and registers
// cleanup.
func MustOpenReviewStore(t testing.TB, cfg *config.Config, opts ...review.Option) *review.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := review.Open(cfg.ReviewDBPath(), opts...)
	if err != nil {
		t.Fatalf("open review store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
