package ratelimit

import (
	"net/http"
	"testing"
	"time"
)

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    *State
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    &State{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    &State{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_BlockedAndThrottled(t *testing.T) {
	th := DefaultThresholds()
	future := time.Now().Add(30 * time.Second)
	past := time.Now().Add(-30 * time.Second)

	tests := []struct {
		name          string
		remaining     int
		resetAt       time.Time
		wantBlocked   bool
		wantThrottled bool
	}{
		{name: "healthy", remaining: 100, resetAt: future},
		{name: "at warning threshold", remaining: th.Warning, resetAt: future},
		{name: "below warning", remaining: th.Warning - 1, resetAt: future, wantThrottled: true},
		{name: "at critical threshold", remaining: th.Critical, resetAt: future, wantThrottled: true},
		{name: "below critical", remaining: th.Critical - 1, resetAt: future, wantBlocked: true},
		{name: "exhausted but window passed", remaining: 0, resetAt: past},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &State{Remaining: tt.remaining, ResetAt: tt.resetAt}
			if got := s.Blocked(th); got != tt.wantBlocked {
				t.Errorf("Blocked() = %v, want %v", got, tt.wantBlocked)
			}
			if got := s.Throttled(th); got != tt.wantThrottled {
				t.Errorf("Throttled() = %v, want %v", got, tt.wantThrottled)
			}
		})
	}
}

func TestState_TimeUntilReset(t *testing.T) {
	s := &State{ResetAt: time.Now().Add(-time.Minute)}
	if got := s.TimeUntilReset(); got != 0 {
		t.Errorf("TimeUntilReset() = %v, want 0 for past reset", got)
	}

	s = &State{ResetAt: time.Now().Add(5 * time.Minute)}
	got := s.TimeUntilReset()
	if got < 4*time.Minute+59*time.Second || got > 5*time.Minute {
		t.Errorf("TimeUntilReset() = %v, want ~5m", got)
	}
}

func TestStateFromHeaders(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		headers     map[string]string
		wantOK      bool
		wantErr     bool
		wantRemain  int
		wantLimit   int
		wantResetAt time.Time
	}{
		{
			name:    "no headers",
			headers: map[string]string{},
		},
		{
			name: "full budget",
			headers: map[string]string{
				HeaderRemaining: "55",
				HeaderLimit:     "60",
				HeaderReset:     "30",
			},
			wantOK:      true,
			wantRemain:  55,
			wantLimit:   60,
			wantResetAt: now.Add(30 * time.Second),
		},
		{
			name:        "remaining only uses default window",
			headers:     map[string]string{HeaderRemaining: "10"},
			wantOK:      true,
			wantRemain:  10,
			wantResetAt: now.Add(DefaultWindow),
		},
		{
			name:    "invalid remaining",
			headers: map[string]string{HeaderRemaining: "many"},
			wantErr: true,
		},
		{
			name:    "invalid reset",
			headers: map[string]string{HeaderRemaining: "10", HeaderReset: "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}

			state, ok, err := StateFromHeaders(h, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("StateFromHeaders() error = %v, wantErr %v", err, tt.wantErr)
			}
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if state.Remaining != tt.wantRemain {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemain)
			}
			if state.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", state.Limit, tt.wantLimit)
			}
			if !state.ResetAt.Equal(tt.wantResetAt) {
				t.Errorf("ResetAt = %v, want %v", state.ResetAt, tt.wantResetAt)
			}
		})
	}
}

func TestThresholds_Validate(t *testing.T) {
	if err := DefaultThresholds().Validate(); err != nil {
		t.Errorf("default thresholds invalid: %v", err)
	}
	if err := (Thresholds{Critical: 10, Warning: 10}).Validate(); err == nil {
		t.Error("expected error when warning == critical")
	}
	if err := (Thresholds{Critical: -1, Warning: 10}).Validate(); err == nil {
		t.Error("expected error for negative critical")
	}
}
