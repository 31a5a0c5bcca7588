// Package server exposes a browsing session over HTTP: navigation, the
// visible selection, toggles and select-first-N.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/catalog-selector/pkg/coordinator"
	"github.com/Sternrassler/catalog-selector/pkg/logging"
	"github.com/Sternrassler/catalog-selector/pkg/metrics"
	"github.com/Sternrassler/catalog-selector/pkg/selection"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultRequestTimeout bounds page navigation requests.
const DefaultRequestTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	// Redis is pinged by /ready when set.
	Redis *redis.Client

	// RequestTimeout bounds navigation; select-first-N uses the request
	// context only.
	RequestTimeout time.Duration
}

// Server serves one selection session.
type Server struct {
	coord    *coordinator.Coordinator
	store    *selection.Store
	selector *selection.Selector
	opts     Options
	logger   zerolog.Logger
	mux      *http.ServeMux
}

// New creates a Server.
func New(coord *coordinator.Coordinator, store *selection.Store, selector *selection.Selector, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}

	s := &Server{
		coord:    coord,
		store:    store,
		selector: selector,
		opts:     opts,
		logger:   logging.NewLogger("server"),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /health", healthHandler)
	s.mux.HandleFunc("GET /ready", s.readyHandler)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /api/view", s.viewHandler)
	s.mux.HandleFunc("GET /api/page", s.pageHandler)
	s.mux.HandleFunc("GET /api/selection", s.selectionHandler)
	s.mux.HandleFunc("POST /api/selection", s.toggleHandler)
	s.mux.HandleFunc("DELETE /api/selection", s.clearHandler)
	s.mux.HandleFunc("POST /api/select-first", s.selectFirstHandler)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting catalog selector API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down catalog selector API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	if s.opts.Redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.opts.Redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "READY")
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.View())
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	var err error
	switch {
	case q.Has("offset"):
		offset, convErr := strconv.Atoi(q.Get("offset"))
		if convErr != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		err = s.coord.GoToOffset(ctx, offset)
	case q.Has("page"):
		page, convErr := strconv.Atoi(q.Get("page"))
		if convErr != nil || page < 1 {
			writeError(w, http.StatusBadRequest, "page must be a positive integer")
			return
		}
		err = s.coord.GoToPage(ctx, page)
	default:
		writeError(w, http.StatusBadRequest, "offset or page is required")
		return
	}

	status := http.StatusOK
	if err != nil && !errors.Is(err, coordinator.ErrSuperseded) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, s.coord.View())
}

type selectionResponse struct {
	IDs   []int64 `json:"ids"`
	Count int     `json:"count"`
}

func (s *Server) selectionHandler(w http.ResponseWriter, r *http.Request) {
	ids := s.store.IDs()
	writeJSON(w, http.StatusOK, selectionResponse{IDs: ids, Count: len(ids)})
}

type toggleRequest struct {
	Checked []int64 `json:"checked"`
}

func (s *Server) toggleHandler(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.coord.Toggle(req.Checked); err != nil {
		var notOnPage *coordinator.NotOnPageError
		switch {
		case errors.Is(err, coordinator.ErrNoPage):
			writeError(w, http.StatusConflict, err.Error())
		case errors.As(err, &notOnPage):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s.coord.View())
}

func (s *Server) clearHandler(w http.ResponseWriter, r *http.Request) {
	s.store.Clear()
	s.logger.Info().Msg("Selection cleared")
	writeJSON(w, http.StatusOK, s.coord.View())
}

type selectFirstRequest struct {
	Count *int `json:"count"`
}

type selectFirstResponse struct {
	Result selection.Result `json:"result"`
	Error  string           `json:"error,omitempty"`
	View   coordinator.View `json:"view"`
}

func (s *Server) selectFirstHandler(w http.ResponseWriter, r *http.Request) {
	var req selectFirstRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Count == nil {
		writeError(w, http.StatusBadRequest, "count is required")
		return
	}
	if *req.Count < 0 {
		writeError(w, http.StatusBadRequest, "count must not be negative")
		return
	}

	result, ok := s.selector.TrySelectFirstN(r.Context(), *req.Count)
	if !ok {
		writeError(w, http.StatusConflict, "a select-first run is already in progress")
		return
	}

	resp := selectFirstResponse{Result: result, View: s.coord.View()}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
