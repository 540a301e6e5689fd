package promotions

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/producemart/wholesale-api/internal/domain"
)

// Store abstracts the repository for handler tests.
type Store interface {
	List(ctx context.Context, f Filter) ([]domain.Promotion, error)
	GetByID(ctx context.Context, id string) (*domain.Promotion, error)
	Create(ctx context.Context, p *domain.Promotion) error
	SetActive(ctx context.Context, id string, active bool) (*domain.Promotion, error)
}

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func validType(t string) bool {
	switch t {
	case domain.PromotionDaily, domain.PromotionWeekly, domain.PromotionMonthly:
		return true
	}
	return false
}

// HandleList supports ?type= and ?activeOnly=true filters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	f := Filter{
		Type:       r.URL.Query().Get("type"),
		ActiveOnly: r.URL.Query().Get("activeOnly") == "true",
	}
	if f.Type != "" && !validType(f.Type) {
		h.writeError(w, http.StatusBadRequest, "type must be one of DAILY, WEEKLY, MONTHLY")
		return
	}

	promos, err := h.store.List(r.Context(), f)
	if err != nil {
		h.logger.Error("failed to list promotions", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, promos)
}

type createRequest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Type            string          `json:"type"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validType(req.Type) {
		h.writeError(w, http.StatusBadRequest, "type must be one of DAILY, WEEKLY, MONTHLY")
		return
	}
	if req.DiscountPercent.IsNegative() || req.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		h.writeError(w, http.StatusBadRequest, "discountPercent must be between 0 and 100")
		return
	}
	for _, d := range []string{req.StartDate, req.EndDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			h.writeError(w, http.StatusBadRequest, "dates must be formatted YYYY-MM-DD")
			return
		}
	}

	promo := &domain.Promotion{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		DiscountPercent: req.DiscountPercent,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		IsActive:        true,
	}
	if err := h.store.Create(r.Context(), promo); err != nil {
		h.logger.Error("failed to create promotion", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("promotion created", "promotion_id", promo.ID, "type", promo.Type)
	h.writeJSON(w, http.StatusCreated, promo)
}

func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	promo, err := h.store.SetActive(r.Context(), r.PathValue("id"), active)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			h.writeError(w, http.StatusNotFound, notFound.Error())
			return
		}
		h.logger.Error("failed to update promotion", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, promo)
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
