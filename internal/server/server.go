// Package server exposes the usage-history chart over HTTP for embedding in
// dashboards and wikis.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/breeze-rmm/breeze-console/internal/api"
	"github.com/breeze-rmm/breeze-console/internal/logger"
	"github.com/breeze-rmm/breeze-console/internal/models"
	"github.com/breeze-rmm/breeze-console/internal/usage"
)

const (
	defaultDays     = 30
	maxDays         = 365
	shutdownTimeout = 5 * time.Second
)

// HistorySource fetches normalized usage history.
type HistorySource interface {
	UsageHistory(ctx context.Context, days int) (*models.UsageHistory, error)
}

// HistoryFunc adapts a plain function to HistorySource.
type HistoryFunc func(ctx context.Context, days int) (*models.UsageHistory, error)

// UsageHistory calls f.
func (f HistoryFunc) UsageHistory(ctx context.Context, days int) (*models.UsageHistory, error) {
	return f(ctx, days)
}

// Server serves /usage.svg, /usage.json and /healthz.
type Server struct {
	source HistorySource
	router *mux.Router
	title  string
}

// Option configures a Server.
type Option func(*Server)

// WithTitle sets the chart title. "%d" in the title is replaced by the day count.
func WithTitle(title string) Option {
	return func(s *Server) {
		s.title = title
	}
}

// New creates a server reading history from source.
func New(source HistorySource, opts ...Option) *Server {
	s := &Server{
		source: source,
		router: mux.NewRouter(),
		title:  "Storage usage, last %d days",
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(corsMiddleware, logMiddleware)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/usage.svg", s.handleSVG).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/usage.json", s.handleJSON).Methods(http.MethodGet, http.MethodOptions)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Chart server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("chart server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown chart server: %w", err)
	}
	return nil
}

// parseDays reads ?days=N. A missing value means 30.
func parseDays(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxDays {
		return 0, fmt.Errorf("days must be an integer between 1 and %d", maxDays)
	}
	return days, nil
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) (*models.UsageHistory, bool) {
	days, err := parseDays(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, false
	}

	h, err := s.source.UsageHistory(r.Context(), days)
	if err != nil {
		logger.Warn("Usage history request failed", "days", days, "error", err)
		writeError(w, statusFor(err), err)
		return nil, false
	}
	if h.Days == 0 {
		h.Days = days
	}
	return h, true
}

func statusFor(err error) int {
	var httpErr *api.HTTPError
	switch {
	case errors.Is(err, api.ErrNoProfile):
		return http.StatusServiceUnavailable
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	h, ok := s.history(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	opts := usage.SVGOptions{Title: s.chartTitle(h.Days)}
	if err := usage.RenderSVG(w, h.Points, opts); err != nil {
		logger.Error("Failed to write chart", "error", err)
	}
}

func (s *Server) chartTitle(days int) string {
	if strings.Contains(s.title, "%d") {
		return fmt.Sprintf(s.title, days)
	}
	return s.title
}

// usageResponse is the body of /usage.json.
type usageResponse struct {
	Points    []models.UsagePoint `json:"points"`
	Providers []string            `json:"providers"`
	Report    usage.Report        `json:"report"`
	Days      int                 `json:"days"`
	FromCache bool                `json:"fromCache"`
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	h, ok := s.history(w, r)
	if !ok {
		return
	}

	resp := usageResponse{
		Days:      h.Days,
		Points:    h.Points,
		Providers: []string{},
		FromCache: h.FromCache,
		Report:    usage.Report{DroppedPoints: h.DroppedPoints, DroppedSamples: h.DroppedSamples},
	}
	if resp.Points == nil {
		resp.Points = []models.UsagePoint{}
	}
	if series, ok := usage.Aggregate(h.Points); ok {
		resp.Providers = series.Providers
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
