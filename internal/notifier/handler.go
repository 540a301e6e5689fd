package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/producemart/wholesale-api/internal/domain"
)

// Handler turns order events into buyer notifications.
type Handler struct {
	sender Sender
	logger *slog.Logger
}

func NewHandler(sender Sender, logger *slog.Logger) *Handler {
	return &Handler{sender: sender, logger: logger}
}

// HandleOrderCreated sends the order confirmation.
func (h *Handler) HandleOrderCreated(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "buyer_id", event.BuyerID)

	subject := "Order received: " + event.OrderID
	body := fmt.Sprintf("We received your order of %d items for delivery on %s. Total: %s.",
		len(event.Items), event.DeliveryDate, event.TotalAmount.StringFixed(2))

	if err := h.sender.Send(ctx, event.BuyerEmail, subject, body); err != nil {
		h.logger.Error("failed to send confirmation", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation: %w", err)
	}

	return nil
}

// HandleStatusChanged notifies the buyer about fulfillment progress.
// RECEIVED is skipped; the confirmation already covers it.
func (h *Handler) HandleStatusChanged(ctx context.Context, payload []byte) error {
	var event domain.OrderStatusChangedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal status changed event: %w", err)
	}

	h.logger.Info("processing status changed event", "order_id", event.OrderID, "status", event.Status)

	var subject, body string
	switch event.Status {
	case domain.StatusPicking:
		subject = "Order in preparation: " + event.OrderID
		body = fmt.Sprintf("Your order %s is being picked and packed.", event.OrderID)
	case domain.StatusDelivered:
		subject = "Order delivered: " + event.OrderID
		body = fmt.Sprintf("Your order %s has been delivered.", event.OrderID)
	case domain.StatusCancelled:
		subject = "Order cancelled: " + event.OrderID
		body = fmt.Sprintf("Your order %s has been cancelled.", event.OrderID)
	default:
		return nil
	}

	if err := h.sender.Send(ctx, buyerAddress(event.BuyerID), subject, body); err != nil {
		h.logger.Error("failed to send status notification", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send status notification: %w", err)
	}

	return nil
}

// buyerAddress resolves the recipient for status events, which carry only
// the buyer id. The worker has no user store; the sender side resolves real
// addresses when a provider is wired in.
func buyerAddress(buyerID string) string {
	return buyerID + "@buyers.internal"
}
