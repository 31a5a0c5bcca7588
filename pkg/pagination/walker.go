package pagination

import (
	"context"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/rs/zerolog/log"
)

// Config holds walker configuration.
type Config struct {
	// MaxPages caps a walk; 0 means no cap.
	MaxPages int

	// PageTimeout bounds each page fetch; 0 leaves only the caller's context.
	PageTimeout time.Duration
}

// DefaultConfig returns an uncapped walk with a per-page timeout.
func DefaultConfig() Config {
	return Config{
		MaxPages:    0,
		PageTimeout: 15 * time.Second,
	}
}

// PageFetcher fetches a single 1-based page.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageNumber int) (*catalog.Page, error)
}

// VisitFunc receives each page in order and returns false to stop.
type VisitFunc func(page *catalog.Page) bool

// WalkStats describes how a walk ended.
type WalkStats struct {
	PagesFetched int
	LastPage     int
	Duration     time.Duration

	// Stopped is set when the visitor asked to stop.
	Stopped bool

	// Exhausted is set when the last page reported no successor.
	Exhausted bool

	// Capped is set when MaxPages ended the walk.
	Capped bool
}

// Walker walks pages sequentially from page 1.
type Walker struct {
	fetcher PageFetcher
	config  Config
}

// NewWalker creates a Walker.
func NewWalker(fetcher PageFetcher, config Config) *Walker {
	if config.MaxPages < 0 {
		config.MaxPages = 0
	}
	return &Walker{
		fetcher: fetcher,
		config:  config,
	}
}

// Walk fetches pages 1, 2, ... until the visitor stops, the data runs out,
// MaxPages is reached or a fetch fails. On failure the stats cover every
// page visited before it and the fetch error is returned unchanged.
func (w *Walker) Walk(ctx context.Context, visit VisitFunc) (WalkStats, error) {
	start := time.Now()
	var stats WalkStats

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}

		if w.config.MaxPages > 0 && n > w.config.MaxPages {
			stats.Capped = true
			stats.Duration = time.Since(start)
			log.Warn().
				Int("max_pages", w.config.MaxPages).
				Msg("Page walk reached its page cap")
			return stats, nil
		}

		page, err := w.fetch(ctx, n)
		if err != nil {
			stats.Duration = time.Since(start)
			log.Debug().
				Err(err).
				Int("page", n).
				Int("pages_fetched", stats.PagesFetched).
				Msg("Page walk stopped by fetch failure")
			return stats, err
		}

		stats.PagesFetched++
		stats.LastPage = n

		if !visit(page) {
			stats.Stopped = true
			break
		}

		if !page.HasNext() {
			stats.Exhausted = true
			break
		}
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

func (w *Walker) fetch(ctx context.Context, n int) (*catalog.Page, error) {
	if w.config.PageTimeout <= 0 {
		return w.fetcher.FetchPage(ctx, n)
	}
	pageCtx, cancel := context.WithTimeout(ctx, w.config.PageTimeout)
	defer cancel()
	return w.fetcher.FetchPage(pageCtx, n)
}
