package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	requestsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_rate_limit_remaining",
		Help: "Requests remaining in the current upstream rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_blocks_total",
		Help: "Total number of catalog requests blocked by the rate limit gate",
	})

	rateLimitThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_rate_limit_throttles_total",
		Help: "Total number of catalog requests delayed by the rate limit gate",
	})
)

// DefaultThrottleDelay is the pause applied in the warning band.
const DefaultThrottleDelay = 1 * time.Second

// Tracker keeps the shared budget in Redis and gates requests on it.
type Tracker struct {
	redis         *redis.Client
	logger        zerolog.Logger
	thresholds    Thresholds
	throttleDelay time.Duration
}

// NewTracker creates a Tracker.
func NewTracker(redisClient *redis.Client, thresholds Thresholds, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:         redisClient,
		logger:        logger,
		thresholds:    thresholds,
		throttleDelay: DefaultThrottleDelay,
	}
}

// SetThrottleDelay overrides the warning-band pause (tests use 0).
func (t *Tracker) SetThrottleDelay(d time.Duration) {
	t.throttleDelay = d
}

// GetState loads the shared state. When Redis holds nothing (no budget seen
// yet, or the last window expired) it returns nil, nil.
func (t *Tracker) GetState(ctx context.Context) (*State, error) {
	fields, err := t.redis.HGetAll(ctx, RedisKeyState).Result()
	if err != nil {
		return nil, fmt.Errorf("get rate limit state: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	remaining, err := strconv.Atoi(fields["remaining"])
	if err != nil {
		return nil, fmt.Errorf("parse remaining: %w", err)
	}
	limit, _ := strconv.Atoi(fields["limit"])
	resetUnix, err := strconv.ParseInt(fields["reset_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse reset_at: %w", err)
	}
	updatedUnix, _ := strconv.ParseInt(fields["last_update"], 10, 64)

	return &State{
		Remaining:  remaining,
		Limit:      limit,
		ResetAt:    time.Unix(resetUnix, 0),
		LastUpdate: time.Unix(updatedUnix, 0),
	}, nil
}

// UpdateFromHeaders records the budget carried by a catalog response.
func (t *Tracker) UpdateFromHeaders(ctx context.Context, headers http.Header) error {
	state, ok, err := StateFromHeaders(headers, time.Now())
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	pipe := t.redis.TxPipeline()
	pipe.HSet(ctx, RedisKeyState, map[string]any{
		"remaining":   state.Remaining,
		"limit":       state.Limit,
		"reset_at":    state.ResetAt.Unix(),
		"last_update": state.LastUpdate.Unix(),
	})
	pipe.ExpireAt(ctx, RedisKeyState, state.ResetAt)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store rate limit state in redis: %w", err)
	}

	requestsRemaining.Set(float64(state.Remaining))

	switch {
	case state.Blocked(t.thresholds):
		t.logger.Error().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Catalog rate limit CRITICAL - requests will be blocked")
	case state.Throttled(t.thresholds):
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Time("reset_at", state.ResetAt).
			Msg("Catalog rate limit WARNING - requests will be throttled")
	default:
		t.logger.Debug().
			Int("remaining", state.Remaining).
			Int("limit", state.Limit).
			Msg("Catalog rate limit state updated")
	}

	return nil
}

// Allow reports whether a request may go out now. In the warning band it
// waits throttleDelay first, returning early with ctx.Err() if cancelled.
func (t *Tracker) Allow(ctx context.Context) (bool, error) {
	state, err := t.GetState(ctx)
	if err != nil {
		return false, err
	}
	if state == nil {
		return true, nil
	}

	if state.Blocked(t.thresholds) {
		t.logger.Error().
			Int("remaining", state.Remaining).
			Dur("wait_duration", state.TimeUntilReset()).
			Msg("Catalog rate limit critical - blocking request")
		rateLimitBlocksTotal.Inc()
		return false, nil
	}

	if state.Throttled(t.thresholds) && t.throttleDelay > 0 {
		t.logger.Warn().
			Int("remaining", state.Remaining).
			Dur("delay", t.throttleDelay).
			Msg("Catalog rate limit warning - throttling request")
		rateLimitThrottlesTotal.Inc()

		timer := time.NewTimer(t.throttleDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	return true, nil
}

// Reset forgets the shared state.
func (t *Tracker) Reset(ctx context.Context) error {
	if err := t.redis.Del(ctx, RedisKeyState).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("reset rate limit state: %w", err)
	}
	return nil
}
