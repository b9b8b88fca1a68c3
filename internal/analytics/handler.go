package analytics

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/HerbHall/tourstream/internal/server"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 500
)

// SummaryResponse is the response for GET /api/v1/analytics/summary.
type SummaryResponse struct {
	Total  int     `json:"total"`
	Events []Count `json:"events"`
}

// EventsResponse is the response for GET /api/v1/analytics/events.
type EventsResponse struct {
	Count  int     `json:"count"`
	Events []Entry `json:"events"`
}

// Handler serves read access to the analytics journal.
type Handler struct {
	journal *Journal
	logger  *zap.Logger
}

// NewHandler creates a journal API handler.
func NewHandler(journal *Journal, logger *zap.Logger) *Handler {
	return &Handler{journal: journal, logger: logger}
}

// RegisterRoutes implements server.RouteRegistrar.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/analytics/summary", h.handleSummary)
	mux.HandleFunc("GET /api/v1/analytics/events", h.handleEvents)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	counts, err := h.journal.Summary(r.Context())
	if err != nil {
		h.logger.Error("failed to summarize analytics", zap.Error(err))
		server.InternalError(w, "failed to read analytics journal", r.URL.Path)
		return
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Total: total, Events: counts})
}

// handleEvents lists recent events; ?name= narrows to one event name and
// ?limit= caps the count (default 50, max 500).
func (h *Handler) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRecentLimit {
			server.BadRequest(w, "limit must be an integer between 1 and 500", r.URL.Path)
			return
		}
		limit = n
	}

	entries, err := h.journal.Recent(r.Context(), r.URL.Query().Get("name"), limit)
	if err != nil {
		h.logger.Error("failed to list analytics events", zap.Error(err))
		server.InternalError(w, "failed to read analytics journal", r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, EventsResponse{Count: len(entries), Events: entries})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
