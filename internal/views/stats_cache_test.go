package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
)

type stubSource struct {
	stats models.ChannelStats
	err   error
	calls int
}

func (s *stubSource) ChannelStats(context.Context, string) (models.ChannelStats, error) {
	s.calls++
	if s.err != nil {
		return models.ChannelStats{}, s.err
	}
	return s.stats, nil
}

func TestCachingStats(t *testing.T) {
	base := &stubSource{stats: models.ChannelStats{TotalViews: 42, TotalVideos: 3}}
	cache := NewCachingStats(base, time.Minute)

	ctx := context.Background()

	stats, err := cache.ChannelStats(ctx, "channel-1")
	if err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if stats.TotalViews != 42 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if base.calls != 1 {
		t.Fatalf("expected base called once got %d", base.calls)
	}

	if _, err := cache.ChannelStats(ctx, "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected cached result got %d calls", base.calls)
	}

	// A different channel is a different cache key.
	if _, err := cache.ChannelStats(ctx, "channel-2"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected separate key to miss got %d calls", base.calls)
	}
}

func TestCachingStatsExpiry(t *testing.T) {
	base := &stubSource{stats: models.ChannelStats{TotalVideos: 1}}
	cache := NewCachingStats(base, time.Millisecond)

	if _, err := cache.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	time.Sleep(2 * time.Millisecond)

	if _, err := cache.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected cache miss after expiry got %d calls", base.calls)
	}
}

func TestCachingStatsInvalidate(t *testing.T) {
	base := &stubSource{}
	cache := NewCachingStats(base, time.Minute)

	if _, err := cache.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}

	cache.Invalidate("channel-1")

	if _, err := cache.ChannelStats(context.Background(), "channel-1"); err != nil {
		t.Fatalf("channel stats: %v", err)
	}
	if base.calls != 2 {
		t.Fatalf("expected invalidation to force a reload got %d calls", base.calls)
	}
}

func TestCachingStatsErrors(t *testing.T) {
	cache := NewCachingStats(nil, time.Minute)
	if _, err := cache.ChannelStats(context.Background(), "channel-1"); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable got %v", err)
	}

	base := &stubSource{err: errors.New("boom")}
	cache = NewCachingStats(base, time.Minute)
	if _, err := cache.ChannelStats(context.Background(), "channel-1"); err == nil {
		t.Fatal("expected source error to propagate")
	}
	if base.calls != 1 {
		t.Fatalf("expected failed lookup not to be cached, calls=%d", base.calls)
	}
}
