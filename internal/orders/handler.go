package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/producemart/wholesale-api/internal/auth"
	"github.com/producemart/wholesale-api/internal/cache"
	"github.com/producemart/wholesale-api/internal/cutoff"
	"github.com/producemart/wholesale-api/internal/domain"
	"github.com/producemart/wholesale-api/internal/messaging"
	"github.com/producemart/wholesale-api/internal/telemetry"
)

// Bounded waits: with the connection pool saturated, BeginTx and row-lock
// acquisition block until the context expires, and the deadline surfaces as
// a retryable 503 instead of hanging the request.
const (
	writeTimeout = 5 * time.Second
	readTimeout  = 3 * time.Second
)

// OrderStore is the persistence surface the handler needs.
type OrderStore interface {
	Create(ctx context.Context, in CreateOrderInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, to domain.Status) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)
}

type Handler struct {
	store           OrderStore
	policy          cutoff.Policy
	createdProducer *messaging.Producer
	statusProducer  *messaging.Producer
	cache           *cache.Cache
	metrics         *telemetry.OrderMetrics
	logger          *slog.Logger

	// now is swappable so cutoff behaviour is testable at exact boundaries.
	now func() time.Time
}

func NewHandler(store OrderStore, policy cutoff.Policy, createdProducer, statusProducer *messaging.Producer,
	c *cache.Cache, metrics *telemetry.OrderMetrics, logger *slog.Logger) *Handler {
	return &Handler{
		store:           store,
		policy:          policy,
		createdProducer: createdProducer,
		statusProducer:  statusProducer,
		cache:           c,
		metrics:         metrics,
		logger:          logger,
		now:             time.Now,
	}
}

type createItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	DeliveryDate string              `json:"deliveryDate"`
	Items        []createItemRequest `json:"items"`
}

// HandleCreate admits a new order for the authenticated buyer.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in, err := h.validateCreate(p.ID, req)
	if err != nil {
		h.rejected(r.Context())
		h.writeDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	order, err := h.store.Create(ctx, *in)
	if err != nil {
		h.rejected(r.Context())
		h.writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.OrdersCreated.Add(r.Context(), 1)
	}
	h.logger.Info("order created",
		"order_id", order.ID,
		"buyer_id", order.BuyerID,
		"total_amount", order.TotalAmount,
		"delivery_date", order.DeliveryDate,
	)

	h.publishCreated(r.Context(), p.Email, order)
	h.cache.SetOrderView(r.Context(), order.ID, order)

	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) validateCreate(buyerID string, req createOrderRequest) (*CreateOrderInput, error) {
	if req.DeliveryDate == "" {
		return nil, &domain.ValidationError{Field: "deliveryDate", Message: "deliveryDate is required"}
	}
	if len(req.Items) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "at least one item is required"}
	}

	if err := h.policy.Evaluate(h.now(), req.DeliveryDate); err != nil {
		return nil, err
	}

	in := CreateOrderInput{BuyerID: buyerID, DeliveryDate: req.DeliveryDate, Items: make([]LineInput, 0, len(req.Items))}
	for _, item := range req.Items {
		if uuid.Validate(item.ProductID) != nil {
			return nil, &domain.ValidationError{Field: "productId", Message: "productId must be a valid uuid"}
		}
		if item.Quantity <= 0 {
			return nil, &domain.ValidationError{Field: "quantity", Message: "quantity must be a positive integer"}
		}
		in.Items = append(in.Items, LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return &in, nil
}

// HandleGet returns one order. Buyers only see their own; admins see any.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	id := r.PathValue("id")

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	var cached domain.Order
	if h.cache.GetOrderView(ctx, id, &cached) {
		if !p.IsAdmin() && cached.BuyerID != p.ID {
			h.writeError(w, http.StatusNotFound, (&domain.NotFoundError{Entity: "order", ID: id}).Error())
			return
		}
		h.writeJSON(w, http.StatusOK, cached)
		return
	}

	order, err := h.store.GetByID(ctx, id)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	if !p.IsAdmin() && order.BuyerID != p.ID {
		// Hide other buyers' orders rather than confirming they exist.
		h.writeError(w, http.StatusNotFound, (&domain.NotFoundError{Entity: "order", ID: id}).Error())
		return
	}

	h.cache.SetOrderView(ctx, order.ID, order)
	h.writeJSON(w, http.StatusOK, order)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// HandleUpdateStatus applies one lifecycle transition to an order.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	defer cancel()

	order, err := h.store.UpdateStatus(ctx, id, to)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StatusUpdates.Add(r.Context(), 1)
	}
	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)

	h.publishStatusChanged(ctx, order)
	h.cache.SetOrderView(ctx, order.ID, order)

	h.writeJSON(w, http.StatusOK, order)
}

// HandleListAll returns every order. Admin only; enforced by routing.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	orders, err := h.store.List(ctx)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

// HandleListMine returns the authenticated buyer's orders.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
	defer cancel()

	orders, err := h.store.ListByBuyer(ctx, p.ID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) publishCreated(ctx context.Context, buyerEmail string, order *domain.Order) {
	if h.createdProducer == nil {
		return
	}
	event := domain.OrderCreatedEvent{
		OrderID:      order.ID,
		BuyerID:      order.BuyerID,
		BuyerEmail:   buyerEmail,
		DeliveryDate: order.DeliveryDate,
		TotalAmount:  order.TotalAmount,
		Items:        order.Items,
		Timestamp:    h.now().UTC(),
	}
	if err := h.createdProducer.Publish(ctx, order.ID, event); err != nil {
		// The order is already committed; a lost event must not fail the request.
		h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
	}
}

func (h *Handler) publishStatusChanged(ctx context.Context, order *domain.Order) {
	if h.statusProducer == nil {
		return
	}
	event := domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		BuyerID:   order.BuyerID,
		Status:    order.Status,
		Timestamp: h.now().UTC(),
	}
	if err := h.statusProducer.Publish(ctx, order.ID, event); err != nil {
		h.logger.Error("failed to publish status changed event", "error", err, "order_id", order.ID)
	}
}

func (h *Handler) rejected(ctx context.Context) {
	if h.metrics != nil {
		h.metrics.OrdersRejected.Add(ctx, 1)
	}
}

// writeDomainError maps domain error types onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		cutoffErr  *domain.CutoffError
		stock      *domain.InsufficientStockError
		notFound   *domain.NotFoundError
		transition *domain.TransitionError
	)
	switch {
	case errors.As(err, &validation):
		h.writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &cutoffErr):
		h.writeError(w, http.StatusBadRequest, cutoffErr.Message)
	case errors.As(err, &stock):
		h.writeError(w, http.StatusBadRequest, stock.Error())
	case errors.As(err, &notFound):
		if notFound.Entity == "product" {
			// An unknown product in a submission is a bad request, not a 404.
			h.writeError(w, http.StatusBadRequest, notFound.Error())
			return
		}
		h.writeError(w, http.StatusNotFound, notFound.Error())
	case errors.As(err, &transition):
		h.writeError(w, http.StatusConflict, transition.Error())
	case errors.Is(err, domain.ErrUnavailable):
		h.writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable, please retry")
	default:
		h.logger.Error("unexpected error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
