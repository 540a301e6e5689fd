package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultWindowDays   = 7
	defaultTopLimit     = 10
	defaultLowThreshold = 10
	maxWindowDays       = 365
)

// Store abstracts the repository for handler tests.
type Store interface {
	TopProducts(ctx context.Context, days, limit int) ([]TopProduct, error)
	LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error)
	DailySummaries(ctx context.Context, days int) ([]DailySummary, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// queryInt reads a positive bounded integer query parameter, falling back to
// its default when absent. A second return of false means the value was
// present but unusable.
func queryInt(r *http.Request, name string, def, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > max {
		return 0, false
	}
	return n, true
}

func (h *Handler) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", defaultWindowDays, maxWindowDays)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 365")
		return
	}

	top, err := h.store.TopProducts(r.Context(), days, defaultTopLimit)
	if err != nil {
		h.logger.Error("failed to build top products report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, top)
}

func (h *Handler) HandleLowStock(w http.ResponseWriter, r *http.Request) {
	threshold, ok := queryInt(r, "threshold", defaultLowThreshold, 1_000_000)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "threshold must be a positive integer")
		return
	}

	low, err := h.store.LowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("failed to build low stock report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, low)
}

func (h *Handler) HandleDailySummary(w http.ResponseWriter, r *http.Request) {
	days, ok := queryInt(r, "days", defaultWindowDays, maxWindowDays)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "days must be an integer between 1 and 365")
		return
	}

	summaries, err := h.store.DailySummaries(r.Context(), days)
	if err != nil {
		h.logger.Error("failed to build daily summary report", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
