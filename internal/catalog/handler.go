package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/producemart/wholesale-api/internal/cache"
	"github.com/producemart/wholesale-api/internal/cutoff"
	"github.com/producemart/wholesale-api/internal/domain"
)

// ProductStore abstracts the repository for handler tests.
type ProductStore interface {
	ListActive(ctx context.Context) ([]domain.Product, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, id string, u ProductUpdate) (*domain.Product, error)
	Deactivate(ctx context.Context, id string) error
}

// PromotionLister is the slice of the promotions store the daily catalog
// needs.
type PromotionLister interface {
	ListActiveByType(ctx context.Context, promoType string) ([]domain.Promotion, error)
}

type Handler struct {
	repo   ProductStore
	promos PromotionLister
	policy cutoff.Policy
	cache  *cache.Cache
	logger *slog.Logger

	now func() time.Time
}

func NewHandler(repo ProductStore, promos PromotionLister, policy cutoff.Policy,
	c *cache.Cache, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, promos: promos, policy: policy, cache: c, logger: logger, now: time.Now}
}

// HandleList returns the buyer-facing catalog: active products only, served
// from cache when fresh.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var cached []domain.Product
	if h.cache.GetActiveCatalog(r.Context(), &cached) {
		h.writeJSON(w, http.StatusOK, cached)
		return
	}

	products, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cache.SetActiveCatalog(r.Context(), products)
	h.writeJSON(w, http.StatusOK, products)
}

// HandleListAll is the admin view and includes deactivated products.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	product, err := h.repo.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, product)
}

type productRequest struct {
	Name     string          `json:"name"`
	Grade    string          `json:"grade"`
	Origin   string          `json:"origin"`
	Unit     string          `json:"unit"`
	ImageURL string          `json:"imageUrl"`
	Price    decimal.Decimal `json:"price"`
	StockQty int             `json:"stockQty"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Unit == "" {
		h.writeError(w, http.StatusBadRequest, "name and unit are required")
		return
	}
	if req.Price.IsNegative() || req.StockQty < 0 {
		h.writeError(w, http.StatusBadRequest, "price and stockQty must not be negative")
		return
	}

	product := &domain.Product{
		Name:     req.Name,
		Grade:    req.Grade,
		Origin:   req.Origin,
		Unit:     req.Unit,
		ImageURL: req.ImageURL,
		Price:    req.Price,
		StockQty: req.StockQty,
	}
	if err := h.repo.Create(r.Context(), product); err != nil {
		h.logger.Error("failed to create product", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.cache.InvalidateActiveCatalog(r.Context())
	h.logger.Info("product created", "product_id", product.ID, "name", product.Name)
	h.writeJSON(w, http.StatusCreated, product)
}

type productPatchRequest struct {
	Name     *string          `json:"name"`
	Grade    *string          `json:"grade"`
	Origin   *string          `json:"origin"`
	Unit     *string          `json:"unit"`
	ImageURL *string          `json:"imageUrl"`
	Price    *decimal.Decimal `json:"price"`
	StockQty *int             `json:"stockQty"`
	IsActive *bool            `json:"isActive"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req productPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		h.writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.StockQty != nil && *req.StockQty < 0 {
		h.writeError(w, http.StatusBadRequest, "stockQty must not be negative")
		return
	}

	product, err := h.repo.Update(r.Context(), r.PathValue("id"), ProductUpdate{
		Name:     req.Name,
		Grade:    req.Grade,
		Origin:   req.Origin,
		Unit:     req.Unit,
		ImageURL: req.ImageURL,
		Price:    req.Price,
		StockQty: req.StockQty,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.writeRepoError(w, err)
		return
	}

	h.cache.InvalidateActiveCatalog(r.Context())
	h.writeJSON(w, http.StatusOK, product)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Deactivate(r.Context(), r.PathValue("id")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.cache.InvalidateActiveCatalog(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type dailyCatalogResponse struct {
	Date       string             `json:"date"`
	Cutoff     string             `json:"cutoff"`
	Products   []domain.Product   `json:"products"`
	Promotions []domain.Promotion `json:"promotions"`
}

// HandleDaily composes the storefront's morning view: today's date, the
// order cutoff, the active catalog and the running daily promotions.
func (h *Handler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListActive(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	promos := []domain.Promotion{}
	if h.promos != nil {
		promos, err = h.promos.ListActiveByType(r.Context(), domain.PromotionDaily)
		if err != nil {
			h.logger.Error("failed to list promotions", "error", err)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
	}

	h.writeJSON(w, http.StatusOK, dailyCatalogResponse{
		Date:       h.now().Format("2006-01-02"),
		Cutoff:     h.policy.Window(),
		Products:   products,
		Promotions: promos,
	})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	var notFound *domain.NotFoundError
	if errors.As(err, &notFound) {
		h.writeError(w, http.StatusNotFound, notFound.Error())
		return
	}
	h.logger.Error("unexpected error", "error", err)
	h.writeError(w, http.StatusInternalServerError, "internal server error")
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
