// Package testutil provides testing utilities for the catalog client and
// the components built on it.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse overrides the answer for one page.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockCatalog is an httptest server serving a fixed id sequence in pages.
type MockCatalog struct {
	server *httptest.Server

	mu           sync.RWMutex
	ids          []int64
	pageSize     int
	omitTotal    bool
	omitPages    bool
	etags        bool
	overrides    map[int]MockResponse
	requests     map[int]int
	requestOrder []int
	conditional  int
	lastHeader   http.Header
}

// NewMockCatalog serves ids in pages of pageSize.
func NewMockCatalog(ids []int64, pageSize int) *MockCatalog {
	m := &MockCatalog{
		ids:       ids,
		pageSize:  pageSize,
		overrides: make(map[int]MockResponse),
		requests:  make(map[int]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// SequentialIDs returns 1..n.
func SequentialIDs(n int) []int64 {
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids
}

// URL returns the collection endpoint URL.
func (m *MockCatalog) URL() string {
	return m.server.URL + "/api/v1/artworks"
}

// Close shuts down the server.
func (m *MockCatalog) Close() {
	m.server.Close()
}

// SetResponse overrides the response for a page.
func (m *MockCatalog) SetResponse(page int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[page] = resp
}

// FailPage makes a page answer with status.
func (m *MockCatalog) FailPage(page, status int) {
	m.SetResponse(page, MockResponse{
		StatusCode: status,
		Body:       `{"status":` + strconv.Itoa(status) + `,"error":"mock failure"}`,
	})
}

// OmitTotals drops pagination.total and/or pagination.total_pages.
func (m *MockCatalog) OmitTotals(total, totalPages bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.omitTotal = total
	m.omitPages = totalPages
}

// EnableETags makes responses carry an ETag and honour If-None-Match.
func (m *MockCatalog) EnableETags() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.etags = true
}

// RequestCount returns the number of requests for a page.
func (m *MockCatalog) RequestCount(page int) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[page]
}

// TotalRequests returns the number of requests served.
func (m *MockCatalog) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requestOrder)
}

// RequestOrder returns the requested page numbers in arrival order.
func (m *MockCatalog) RequestOrder() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.requestOrder...)
}

// ConditionalCount returns the number of requests carrying If-None-Match.
func (m *MockCatalog) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditional
}

// LastHeader returns the headers of the most recent request.
func (m *MockCatalog) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// TotalPages returns the page count for the configured ids.
func (m *MockCatalog) TotalPages() int {
	if m.pageSize <= 0 {
		return 0
	}
	return (len(m.ids) + m.pageSize - 1) / m.pageSize
}

func (m *MockCatalog) handle(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	m.mu.Lock()
	m.requests[page]++
	m.requestOrder = append(m.requestOrder, page)
	m.lastHeader = r.Header.Clone()
	if r.Header.Get("If-None-Match") != "" {
		m.conditional++
	}
	override, hasOverride := m.overrides[page]
	etags := m.etags
	m.mu.Unlock()

	if hasOverride {
		if override.Delay > 0 {
			time.Sleep(override.Delay)
		}
		for k, v := range override.Headers {
			w.Header().Set(k, v)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(override.StatusCode)
		if override.Body != "" {
			w.Write([]byte(override.Body))
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if etags {
		etag := fmt.Sprintf(`"page-%d"`, page)
		w.Header().Set("ETag", etag)
		w.Header().Set("Expires", time.Now().Add(5*time.Minute).UTC().Format(http.TimeFormat))
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(m.pagePayload(page))
}

func (m *MockCatalog) pagePayload(page int) map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data := []map[string]any{}
	start := (page - 1) * m.pageSize
	for i := start; i < start+m.pageSize && i < len(m.ids); i++ {
		id := m.ids[i]
		data = append(data, map[string]any{
			"id":              id,
			"title":           fmt.Sprintf("Artwork %d", id),
			"date_start":      1800 + int(id%200),
			"date_end":        1801 + int(id%200),
			"artist_display":  fmt.Sprintf("Artist %d", id%7),
			"place_of_origin": "Chicago",
			"inscriptions":    nil,
		})
	}

	pagination := map[string]any{
		"limit":        m.pageSize,
		"current_page": page,
	}
	if !m.omitTotal {
		pagination["total"] = len(m.ids)
	}
	if !m.omitPages {
		pagination["total_pages"] = m.TotalPages()
	}

	return map[string]any{
		"pagination": pagination,
		"data":       data,
	}
}
