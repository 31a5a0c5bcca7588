// Package ratelimit gates catalog requests on the upstream's advertised
// request budget. It reads the X-RateLimit-* response headers, shares the
// resulting state through Redis so every process talking to the same
// catalog sees one budget, and blocks or slows requests as it runs low.
package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Response headers consulted by UpdateFromHeaders.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderReset     = "X-RateLimit-Reset"
)

// RedisKeyState is the hash holding the shared budget.
const RedisKeyState = "catalog:rate_limit:state"

// DefaultWindow is assumed when the upstream reports a remaining budget but
// no reset time.
const DefaultWindow = 60 * time.Second

// Thresholds decide when requests are blocked or throttled.
type Thresholds struct {
	// Critical blocks requests when fewer requests than this remain.
	Critical int

	// Warning throttles requests when fewer than this remain.
	Warning int
}

// DefaultThresholds returns conservative thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Critical: 5,
		Warning:  20,
	}
}

// Validate checks that 0 <= Critical < Warning.
func (t Thresholds) Validate() error {
	if t.Critical < 0 {
		return fmt.Errorf("critical threshold must be >= 0 (got %d)", t.Critical)
	}
	if t.Warning <= t.Critical {
		return fmt.Errorf("warning threshold (%d) must be greater than critical threshold (%d)", t.Warning, t.Critical)
	}
	return nil
}

// State is the last budget reported by the upstream.
type State struct {
	Remaining  int       `json:"remaining"`
	Limit      int       `json:"limit"`
	ResetAt    time.Time `json:"reset_at"`
	LastUpdate time.Time `json:"last_update"`
}

// IsStale reports whether the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// Blocked reports whether requests must stop until the window resets.
func (s *State) Blocked(t Thresholds) bool {
	return s.Remaining < t.Critical && s.TimeUntilReset() > 0
}

// Throttled reports whether requests should be slowed.
func (s *State) Throttled(t Thresholds) bool {
	return s.Remaining < t.Warning && !s.Blocked(t) && s.TimeUntilReset() > 0
}

// TimeUntilReset returns the time left in the window, or 0 once passed.
func (s *State) TimeUntilReset() time.Duration {
	d := time.Until(s.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}

// StateFromHeaders parses the rate limit headers. ok is false when the
// response carries no budget at all, which is normal for many endpoints.
func StateFromHeaders(h http.Header, now time.Time) (state *State, ok bool, err error) {
	remainStr := h.Get(HeaderRemaining)
	if remainStr == "" {
		return nil, false, nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s header: %w", HeaderRemaining, err)
	}

	state = &State{
		Remaining:  remain,
		ResetAt:    now.Add(DefaultWindow),
		LastUpdate: now,
	}

	if limitStr := h.Get(HeaderLimit); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, false, fmt.Errorf("parse %s header: %w", HeaderLimit, err)
		}
		state.Limit = limit
	}

	if resetStr := h.Get(HeaderReset); resetStr != "" {
		resetSeconds, err := strconv.Atoi(resetStr)
		if err != nil {
			return nil, false, fmt.Errorf("parse %s header: %w", HeaderReset, err)
		}
		state.ResetAt = now.Add(time.Duration(resetSeconds) * time.Second)
	}

	return state, true, nil
}
