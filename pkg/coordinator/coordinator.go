// Package coordinator tracks the page on screen, loads it through the
// catalog client and derives the visible selection for presentation.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Sternrassler/catalog-selector/pkg/catalog"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/Sternrassler/catalog-selector/pkg/pagination"
	"github.com/Sternrassler/catalog-selector/pkg/selection"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var pageLoadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "coordinator_page_loads_total",
	Help: "Page loads by result (success, failure, stale)",
}, []string{"result"})

// DefaultPageSize maps presentation offsets to page numbers. It is not
// sent upstream.
const DefaultPageSize = 12

var (
	// ErrSuperseded is returned by GoToPage when a newer navigation started
	// before this one completed; its result was dropped.
	ErrSuperseded = errors.New("page load superseded by a newer request")

	// ErrNoPage is returned by Toggle while no page is shown, either before
	// the first load or after a failed one.
	ErrNoPage = errors.New("no page loaded")
)

// NotOnPageError rejects a toggle naming ids the current page does not hold.
type NotOnPageError struct {
	Page int
	IDs  []int64
}

func (e *NotOnPageError) Error() string {
	return fmt.Sprintf("ids %v are not on page %d", e.IDs, e.Page)
}

// Config holds coordinator configuration.
type Config struct {
	// PageSize used to translate offsets; DefaultPageSize when <= 0.
	PageSize int
}

// View is a snapshot for rendering.
type View struct {
	PageNumber    int              `json:"page"`
	Offset        int              `json:"offset"`
	PageSize      int              `json:"page_size"`
	Records       []catalog.Record `json:"records"`
	Visible       []catalog.Record `json:"visible"`
	Loading       bool             `json:"loading"`
	TotalRecords  int              `json:"total_records"`
	TotalPages    int              `json:"total_pages"`
	SelectedCount int              `json:"selected_count"`
	Err           error            `json:"-"`
	Error         string           `json:"error,omitempty"`
}

// IsSelected reports whether id is in the visible selection.
func (v View) IsSelected(id int64) bool {
	return slices.ContainsFunc(v.Visible, func(r catalog.Record) bool { return r.ID == id })
}

// Coordinator owns the current page. Safe for concurrent use.
type Coordinator struct {
	fetcher  pagination.PageFetcher
	store    *selection.Store
	pageSize int
	logger   zerolog.Logger

	mu           sync.Mutex
	page         *catalog.Page
	pageNumber   int
	totalRecords int
	loading      bool
	seq          uint64
	err          error
}

// New creates a Coordinator. No page is loaded until GoToPage.
func New(fetcher pagination.PageFetcher, store *selection.Store, cfg Config) *Coordinator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	return &Coordinator{
		fetcher:    fetcher,
		store:      store,
		pageSize:   cfg.PageSize,
		pageNumber: 1,
		logger:     logging.NewLogger("coordinator"),
	}
}

// PageSize returns the offset page size.
func (c *Coordinator) PageSize() int {
	return c.pageSize
}

// GoToOffset loads the page containing the zero-based record offset.
func (c *Coordinator) GoToOffset(ctx context.Context, offset int) error {
	return c.GoToPage(ctx, pagination.PageNumberForOffset(offset, c.pageSize))
}

// GoToPage loads page n. Loading is reported from the call until the
// newest outstanding load completes. On failure the page is emptied and
// the error kept for View; it is also returned. A load overtaken by a
// newer GoToPage changes nothing and returns ErrSuperseded.
func (c *Coordinator) GoToPage(ctx context.Context, n int) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.pageNumber = n
	c.mu.Unlock()

	page, err := c.fetcher.FetchPage(ctx, n)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		pageLoadsTotal.WithLabelValues("stale").Inc()
		c.logger.Debug().
			Int("page", n).
			Msg("Dropping stale page load")
		return ErrSuperseded
	}

	c.loading = false

	if err != nil {
		pageLoadsTotal.WithLabelValues("failure").Inc()
		c.page = nil
		c.err = err
		c.logger.Error().
			Err(err).
			Int("page", n).
			Msg("Page load failed")
		return err
	}

	pageLoadsTotal.WithLabelValues("success").Inc()
	c.page = page
	c.totalRecords = page.TotalRecords
	c.err = nil
	c.logger.Debug().
		Int("page", n).
		Int("records", page.Len()).
		Int("total_records", page.TotalRecords).
		Msg("Page loaded")
	return nil
}

// Reload fetches the current page again.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	n := c.pageNumber
	c.mu.Unlock()
	return c.GoToPage(ctx, n)
}

// Toggle applies the checked ids reported for the current page. Ids on
// other pages keep their state. Every checked id must be on the page;
// otherwise the selection is left untouched and a *NotOnPageError is
// returned. With no page shown it returns ErrNoPage.
func (c *Coordinator) Toggle(checked []int64) error {
	c.mu.Lock()
	page, n := c.page, c.pageNumber
	c.mu.Unlock()

	if page == nil {
		return ErrNoPage
	}

	present := page.IDs()
	var missing []int64
	for _, id := range checked {
		if !slices.Contains(present, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		c.logger.Debug().
			Int("page", n).
			Ints64("ids", missing).
			Msg("Rejected toggle for ids not on page")
		return &NotOnPageError{Page: n, IDs: missing}
	}

	c.store.Toggle(checked, present)
	return nil
}

// ToggleRecord flips one record of the current page. It reports false
// when id is not on the page.
func (c *Coordinator) ToggleRecord(id int64) bool {
	c.mu.Lock()
	page := c.page
	c.mu.Unlock()

	present := page.IDs()
	if !slices.Contains(present, id) {
		return false
	}

	checked := make([]int64, 0, len(present))
	for _, r := range c.store.VisibleSelection(page) {
		if r.ID != id {
			checked = append(checked, r.ID)
		}
	}
	if !c.store.Contains(id) {
		checked = append(checked, id)
	}

	c.store.Toggle(checked, present)
	return true
}

// View returns the current state with the visible selection recomputed.
func (c *Coordinator) View() View {
	c.mu.Lock()
	page := c.page
	v := View{
		PageNumber:   c.pageNumber,
		Offset:       pagination.OffsetForPage(c.pageNumber, c.pageSize),
		PageSize:     c.pageSize,
		Loading:      c.loading,
		TotalRecords: c.totalRecords,
		TotalPages:   pagination.PageCount(c.totalRecords, c.pageSize),
		Err:          c.err,
	}
	c.mu.Unlock()

	v.Records = []catalog.Record{}
	if page != nil {
		v.Records = append(v.Records, page.Records...)
	}
	v.Visible = c.store.VisibleSelection(page)
	v.SelectedCount = c.store.Count()
	if v.Err != nil {
		v.Error = v.Err.Error()
	}
	return v
}
