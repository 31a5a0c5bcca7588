package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tracker := NewTracker(setupTestRedis(t), DefaultThresholds(), zerolog.New(os.Stderr))
	tracker.SetThrottleDelay(0)
	return tracker
}

func budget(remaining, reset string) http.Header {
	h := http.Header{}
	h.Set(HeaderRemaining, remaining)
	h.Set(HeaderLimit, "60")
	h.Set(HeaderReset, reset)
	return h
}

func TestTracker_NoStateAllows(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state != nil {
		t.Errorf("expected nil state, got %+v", state)
	}

	allowed, err := tracker.Allow(ctx)
	if err != nil || !allowed {
		t.Errorf("Allow() = %v, %v; want true, nil", allowed, err)
	}
}

func TestTracker_UpdateAndGetState(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.UpdateFromHeaders(ctx, budget("42", "30")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state == nil || state.Remaining != 42 || state.Limit != 60 {
		t.Fatalf("state = %+v, want remaining 42 limit 60", state)
	}
	if d := state.TimeUntilReset(); d <= 0 || d > 31*time.Second {
		t.Errorf("TimeUntilReset() = %v, want ~30s", d)
	}
}

func TestTracker_AllowBlocksWhenCritical(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.UpdateFromHeaders(ctx, budget("1", "30")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	allowed, err := tracker.Allow(ctx)
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if allowed {
		t.Error("request should be blocked at critical budget")
	}

	if err := tracker.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if allowed, _ := tracker.Allow(ctx); !allowed {
		t.Error("request should be allowed after Reset")
	}
}

func TestTracker_AllowThrottleHonoursContext(t *testing.T) {
	tracker := newTestTracker(t)
	tracker.SetThrottleDelay(time.Minute)

	if err := tracker.UpdateFromHeaders(context.Background(), budget("10", "30")); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	allowed, err := tracker.Allow(ctx)
	if allowed || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Allow() = %v, %v; want false, deadline exceeded", allowed, err)
	}
}

func TestTracker_IgnoresResponsesWithoutBudget(t *testing.T) {
	tracker := newTestTracker(t)
	ctx := context.Background()

	if err := tracker.UpdateFromHeaders(ctx, http.Header{}); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}
	if state, _ := tracker.GetState(ctx); state != nil {
		t.Errorf("expected no state, got %+v", state)
	}
}
