package selection

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/Sternrassler/catalog-selector/pkg/pagination"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	selectorRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "selector_runs_total",
		Help: "Select-first-N runs by stop reason",
	}, []string{"reason"})

	selectorPagesFetched = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "selector_pages_fetched",
		Help:    "Pages fetched per select-first-N run",
		Buckets: []float64{0, 1, 2, 3, 5, 10, 20, 50},
	})

	selectorIDsAddedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "selector_ids_added_total",
		Help: "Record ids added to the selection by select-first-N",
	})
)

// StopReason tells why a select-first-N run ended.
type StopReason string

const (
	// StopNoop: the selection already held at least the target.
	StopNoop StopReason = "noop"

	// StopTargetReached: enough new ids were found.
	StopTargetReached StopReason = "target_reached"

	// StopExhausted: the upstream reported no further pages.
	StopExhausted StopReason = "exhausted"

	// StopPageCap: the walker hit its MaxPages cap.
	StopPageCap StopReason = "page_cap"

	// StopFetchFailed: a page fetch failed or the context ended.
	// Ids gathered before the failure are still applied.
	StopFetchFailed StopReason = "fetch_failed"
)

// Result summarizes one run. Err is informational only; a run never fails
// as a whole.
type Result struct {
	RunID        string        `json:"run_id,omitempty"`
	Target       int           `json:"target"`
	Added        int           `json:"added"`
	PagesFetched int           `json:"pages_fetched"`
	Reason       StopReason    `json:"reason"`
	Duration     time.Duration `json:"-"`
	DurationMS   int64         `json:"duration_ms"`
	Err          error         `json:"-"`
}

// Selector grows the selection to a target size by walking remote pages.
type Selector struct {
	store  *Store
	walker *pagination.Walker
	logger zerolog.Logger

	mu      sync.Mutex
	running atomic.Bool
}

// NewSelector creates a Selector writing into store.
func NewSelector(store *Store, fetcher pagination.PageFetcher, cfg pagination.Config) *Selector {
	return &Selector{
		store:  store,
		walker: pagination.NewWalker(fetcher, cfg),
		logger: logging.NewLogger("selector"),
	}
}

// Running reports whether a run is in flight.
func (s *Selector) Running() bool {
	return s.running.Load()
}

// TrySelectFirstN runs SelectFirstN unless another run is in flight, in
// which case it returns false without doing anything.
func (s *Selector) TrySelectFirstN(ctx context.Context, target int) (Result, bool) {
	if !s.mu.TryLock() {
		return Result{Target: target}, false
	}
	defer s.mu.Unlock()
	return s.run(ctx, target), true
}

// SelectFirstN grows the selection until it holds target ids, taking
// unselected records in page order starting from page 1. A target at or
// below the current count leaves the selection alone. Runs are
// serialized; a second caller waits for the first to finish.
func (s *Selector) SelectFirstN(ctx context.Context, target int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, target)
}

func (s *Selector) run(ctx context.Context, target int) Result {
	start := time.Now()
	result := Result{Target: target}

	current := s.store.Count()
	if target <= current {
		result.Reason = StopNoop
		selectorRunsTotal.WithLabelValues(string(result.Reason)).Inc()
		s.logger.Debug().
			Int("target", target).
			Int("selected", current).
			Msg("Selection already at target")
		return result
	}

	s.running.Store(true)
	defer s.running.Store(false)

	result.RunID = ulid.Make().String()
	logger := s.logger.With().Str("run_id", result.RunID).Int("target", target).Logger()
	logger.Info().Int("selected", current).Msg("Select-first-N started")

	remaining := target - current
	seen := make(map[int64]struct{}, remaining)
	working := make([]int64, 0, remaining)

	stats, err := s.walker.Walk(ctx, func(page *catalog.Page) bool {
		for _, r := range page.Records {
			if _, dup := seen[r.ID]; dup || s.store.Contains(r.ID) {
				continue
			}
			seen[r.ID] = struct{}{}
			working = append(working, r.ID)
			remaining--
			if remaining == 0 {
				return false
			}
		}
		return true
	})

	result.PagesFetched = stats.PagesFetched
	switch {
	case err != nil:
		result.Reason = StopFetchFailed
		result.Err = err
	case remaining == 0:
		result.Reason = StopTargetReached
	case stats.Capped:
		result.Reason = StopPageCap
	default:
		result.Reason = StopExhausted
	}

	result.Added = s.store.AddAll(working)
	result.Duration = time.Since(start)
	result.DurationMS = result.Duration.Milliseconds()

	selectorRunsTotal.WithLabelValues(string(result.Reason)).Inc()
	selectorPagesFetched.Observe(float64(result.PagesFetched))
	selectorIDsAddedTotal.Add(float64(result.Added))

	event := logger.Info()
	if err != nil {
		event = logger.Warn().Err(err)
	}
	event.
		Str("reason", string(result.Reason)).
		Int("added", result.Added).
		Int("pages", result.PagesFetched).
		Dur("duration", result.Duration).
		Msg("Select-first-N finished")

	return result
}
