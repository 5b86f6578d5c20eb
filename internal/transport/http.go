package transport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/lenish/personal-hub/internal/collectors/healthpush"
	"github.com/lenish/personal-hub/internal/domain/item"
	"github.com/lenish/personal-hub/internal/domain/syncstate"
)

// ItemService reads stored items.
type ItemService interface {
	List(ctx context.Context, opts item.ListOptions) ([]*item.Item, error)
}

// SyncService reads per-source sync state.
type SyncService interface {
	List(ctx context.Context) ([]syncstate.State, error)
}

// MetricSink accepts pushed health metrics.
type MetricSink interface {
	ProcessMetrics(ctx context.Context, metrics []healthpush.Metric) (int, error)
}

// TriggerFunc starts a collection pass for a source, returning false when no
// collector is registered under that name. The pass runs asynchronously;
// callers poll /api/status for the outcome.
type TriggerFunc func(source string) bool

// Server wires HTTP handlers over the domain services.
type Server struct {
	items   ItemService
	syncs   SyncService
	metrics MetricSink
	trigger TriggerFunc
	logger  *slog.Logger
}

// Config carries the router's dependencies.
type Config struct {
	Items       ItemService
	Syncs       SyncService
	Metrics     MetricSink
	Trigger     TriggerFunc
	APIKey      string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter creates the HTTP router with auth and CORS middleware.
func NewRouter(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &Server{
		items:   cfg.Items,
		syncs:   cfg.Syncs,
		metrics: cfg.Metrics,
		trigger: cfg.Trigger,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-API-Key"},
		AllowCredentials: true,
	}))
	r.Use(APIKeyMiddleware(cfg.APIKey))

	r.Get("/", srv.handleRoot)
	r.Get("/health", srv.handleHealth)
	r.Get("/api/status", srv.handleStatus)
	r.Get("/api/items", srv.handleListItems)
	r.Post("/api/health/webhook", srv.handleWebhook)
	r.Post("/api/sync/{source}", srv.handleTriggerSync)

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "Personal Data Hub",
		"version": "0.1.0",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	states, err := s.syncs.List(r.Context())
	if err != nil {
		s.logger.Error("failed to list sync states", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if states == nil {
		states = []syncstate.State{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": states})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	opts := item.ListOptions{
		Source:   r.URL.Query().Get("source"),
		Category: r.URL.Query().Get("category"),
		ItemType: r.URL.Query().Get("type"),
		Limit:    queryInt(r, "limit", 100),
		Offset:   queryInt(r, "offset", 0),
	}

	items, err := s.items.List(r.Context(), opts)
	if err != nil {
		s.logger.Error("failed to list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if items == nil {
		items = []*item.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

type webhookPayload struct {
	Metrics []healthpush.Metric `json:"metrics"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	count, err := s.metrics.ProcessMetrics(r.Context(), payload.Metrics)
	if err != nil {
		s.logger.Error("webhook processing failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "processing failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"processed": count})
}

func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	source := chi.URLParam(r, "source")
	if s.trigger == nil || !s.trigger(source) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown source"})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"source": source, "status": "triggered"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return fallback
	}
	return val
}
